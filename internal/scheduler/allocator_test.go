package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datesheet/go-datesheet/pkg/model"
)

func TestAllocateRoomsWholeCourses(t *testing.T) {
	g := testGraph(t, []*model.Course{
		testCourse("MATH", manyStudents("m", 30)...),
		testCourse("PHYS", manyStudents("p", 25)...),
	}, nil)
	cat := testCatalog(t,
		[]*model.TimeSlot{testSlot("S1", 0, 0)},
		[]*model.Room{testRoom("R1", 40), testRoom("R2", 30)}, nil)

	a := model.NewScheduleAssignment()
	a.Slots["MATH"] = "S1"
	a.Slots["PHYS"] = "S1"

	plan, err := AllocateRooms(a, g, cat)
	require.NoError(t, err)

	assert.Equal(t, []model.SeatBlock{{Room: "R1", Seats: 30}}, plan.CourseBlocks("S1", "MATH"))
	assert.Equal(t, []model.SeatBlock{{Room: "R2", Seats: 25}}, plan.CourseBlocks("S1", "PHYS"))
}

// A 50-student course with two 30-seat rooms ends up split 30/20.
func TestAllocateRoomsSplitsOversizedCourse(t *testing.T) {
	g := testGraph(t, []*model.Course{
		testCourse("MATH", manyStudents("m", 50)...),
	}, nil)
	cat := testCatalog(t,
		[]*model.TimeSlot{testSlot("S1", 0, 0)},
		[]*model.Room{testRoom("R1", 30), testRoom("R2", 30)}, nil)

	a := model.NewScheduleAssignment()
	a.Slots["MATH"] = "S1"

	plan, err := AllocateRooms(a, g, cat)
	require.NoError(t, err)
	assert.Equal(t, []model.SeatBlock{
		{Room: "R1", Seats: 30},
		{Room: "R2", Seats: 20},
	}, plan.CourseBlocks("S1", "MATH"))
}

func TestAllocateRoomsCapacityError(t *testing.T) {
	g := testGraph(t, []*model.Course{
		testCourse("MATH", manyStudents("m", 70)...),
	}, nil)
	cat := testCatalog(t,
		[]*model.TimeSlot{testSlot("S1", 0, 0)},
		[]*model.Room{testRoom("R1", 30), testRoom("R2", 30)}, nil)

	a := model.NewScheduleAssignment()
	a.Slots["MATH"] = "S1"

	_, err := AllocateRooms(a, g, cat)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, model.SlotID("S1"), capErr.Slot)
	assert.Equal(t, 10, capErr.Shortfall)
}

// Every slot sees the full room inventory again.
func TestAllocateRoomsResetsPerSlot(t *testing.T) {
	g := testGraph(t, []*model.Course{
		testCourse("MATH", manyStudents("m", 30)...),
		testCourse("PHYS", manyStudents("p", 30)...),
	}, nil)
	cat := testCatalog(t,
		[]*model.TimeSlot{testSlot("S1", 0, 0), testSlot("S2", 1, 0)},
		[]*model.Room{testRoom("R1", 30)}, nil)

	a := model.NewScheduleAssignment()
	a.Slots["MATH"] = "S1"
	a.Slots["PHYS"] = "S2"

	plan, err := AllocateRooms(a, g, cat)
	require.NoError(t, err)
	assert.Equal(t, []model.SeatBlock{{Room: "R1", Seats: 30}}, plan.CourseBlocks("S1", "MATH"))
	assert.Equal(t, []model.SeatBlock{{Room: "R1", Seats: 30}}, plan.CourseBlocks("S2", "PHYS"))
}

func TestAllocateRoomsEndToEnd(t *testing.T) {
	g := testGraph(t, []*model.Course{
		testCourse("CHEM", manyStudents("c", 12)...),
		testCourse("MATH", manyStudents("m", 35)...),
		testCourse("PHYS", manyStudents("p", 20)...),
	}, nil)
	cat := testCatalog(t,
		[]*model.TimeSlot{testSlot("S1", 0, 0), testSlot("S2", 1, 0)},
		[]*model.Room{testRoom("R1", 40), testRoom("R2", 30)}, nil)

	s := New(cat, nil)
	a, err := s.Schedule(context.Background(), g, nil, Options{MinBreakSlots: 1})
	require.NoError(t, err)

	plan, err := AllocateRooms(a, g, cat)
	require.NoError(t, err)

	valid, msg := Validate(g, cat, a, plan, 1)
	assert.True(t, valid, msg)
}

func TestAllocateRoomsNilInputPanics(t *testing.T) {
	cat := testCatalog(t,
		[]*model.TimeSlot{testSlot("S1", 0, 0)},
		[]*model.Room{testRoom("R1", 10)}, nil)
	g := testGraph(t, []*model.Course{testCourse("MATH")}, nil)
	assert.Panics(t, func() { _, _ = AllocateRooms(nil, g, cat) })
}
