package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datesheet/go-datesheet/pkg/model"
)

func TestNewCatalogRejectsEmptySnapshot(t *testing.T) {
	slots := []*model.TimeSlot{testSlot("S1", 0, 0)}
	rooms := []*model.Room{testRoom("R1", 10)}

	_, err := NewCatalog(nil, rooms, nil)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrEmptyCatalog.Code, serr.Code)

	_, err = NewCatalog(slots, nil, nil)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrEmptyCatalog.Code, serr.Code)
}

func TestNewCatalogRejectsDuplicateSlot(t *testing.T) {
	_, err := NewCatalog(
		[]*model.TimeSlot{testSlot("S1", 0, 0), testSlot("S1", 1, 0)},
		[]*model.Room{testRoom("R1", 10)}, nil)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrInvalidCatalog.Code, serr.Code)
}

func TestNewCatalogRejectsInvalidRoom(t *testing.T) {
	_, err := NewCatalog(
		[]*model.TimeSlot{testSlot("S1", 0, 0)},
		[]*model.Room{testRoom("R1", 0)}, nil)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrInvalidCatalog.Code, serr.Code)
}

func TestCatalogOrderings(t *testing.T) {
	cat := testCatalog(t,
		[]*model.TimeSlot{
			testSlot("S3", 0, 1),
			testSlot("S1", 1, 0),
			testSlot("S2", 0, 0),
		},
		[]*model.Room{
			testRoom("R2", 30),
			testRoom("R1", 30),
			testRoom("R3", 50),
		}, nil)

	var byID []model.SlotID
	for _, s := range cat.SlotsByID() {
		byID = append(byID, s.ID)
	}
	assert.Equal(t, []model.SlotID{"S1", "S2", "S3"}, byID)

	var chrono []model.SlotID
	for _, s := range cat.SlotsOrderedByTime() {
		chrono = append(chrono, s.ID)
	}
	assert.Equal(t, []model.SlotID{"S2", "S3", "S1"}, chrono)

	var rooms []model.RoomID
	for _, r := range cat.RoomsByDescendingCapacity() {
		rooms = append(rooms, r.ID)
	}
	assert.Equal(t, []model.RoomID{"R3", "R1", "R2"}, rooms)
	assert.Equal(t, 110, cat.TotalSeats())

	i, ok := cat.SlotIndex("S2")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = cat.SlotIndex("S9")
	assert.False(t, ok)
}

func TestCatalogTeacherAvailability(t *testing.T) {
	cat := testCatalog(t,
		[]*model.TimeSlot{testSlot("S1", 0, 0), testSlot("S2", 1, 0)},
		[]*model.Room{testRoom("R1", 10)},
		[]*model.Teacher{{ID: "T1", Unavailable: []model.SlotID{"S1"}}})

	assert.False(t, cat.IsTeacherAvailable("T1", "S1"))
	assert.True(t, cat.IsTeacherAvailable("T1", "S2"))
	assert.True(t, cat.IsTeacherAvailable("T9", "S1"), "unknown teachers are unconstrained")
}

func TestCatalogFixedSlotLookup(t *testing.T) {
	fixed := testSlot("S2", 1, 0)
	fixed.Fixed = true
	cat := testCatalog(t,
		[]*model.TimeSlot{testSlot("S1", 0, 0), fixed},
		[]*model.Room{testRoom("R1", 10)}, nil)

	assert.False(t, cat.IsSlotFixed("S1"))
	assert.True(t, cat.IsSlotFixed("S2"))
	assert.False(t, cat.IsSlotFixed("S9"))
}
