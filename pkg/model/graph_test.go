package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictGraphEdges(t *testing.T) {
	g := NewConflictGraph([]CourseID{"A", "B", "C"})
	require.Equal(t, 3, g.Len())

	g.AddEdge(0, 1)
	g.AddEdge(0, 1) // duplicate is a no-op
	g.AddEdge(1, 1) // self loop is a no-op

	assert.True(t, g.Adjacent(0, 1))
	assert.True(t, g.Adjacent(1, 0))
	assert.False(t, g.Adjacent(0, 2))
	assert.Equal(t, []int32{1}, g.Neighbors(0))
	assert.Equal(t, 1, g.Degree(1))
	assert.Equal(t, 0, g.Degree(2))
}

func TestConflictGraphVertexLookup(t *testing.T) {
	g := NewConflictGraph([]CourseID{"A", "B"})
	v, ok := g.Vertex("B")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = g.Vertex("Z")
	assert.False(t, ok)
}

func TestConflictGraphComponents(t *testing.T) {
	g := NewConflictGraph([]CourseID{"A", "B", "C", "D", "E"})
	g.AddEdge(0, 3)
	g.AddEdge(1, 2)

	comps := g.Components()
	require.Len(t, comps, 3)
	assert.Equal(t, []int32{0, 3}, comps[0])
	assert.Equal(t, []int32{1, 2}, comps[1])
	assert.Equal(t, []int32{4}, comps[2])
}

func TestConflictGraphLargeBitset(t *testing.T) {
	// Force more than one 64-bit word per adjacency row.
	ids := make([]CourseID, 70)
	for i := range ids {
		ids[i] = CourseID(string(rune('A'+i/26)) + string(rune('A'+i%26)))
	}
	g := NewConflictGraph(ids)
	g.AddEdge(0, 69)
	assert.True(t, g.Adjacent(69, 0))
	assert.False(t, g.Adjacent(68, 0))
}

func TestTimeSlotDistance(t *testing.T) {
	a := &TimeSlot{ID: "S1", Day: 0, Period: 1}
	b := &TimeSlot{ID: "S2", Day: 0, Period: 3}
	c := &TimeSlot{ID: "S3", Day: 1, Period: 1}

	assert.True(t, a.SameDay(b))
	assert.False(t, a.SameDay(c))
	assert.Equal(t, 2, a.Distance(b))
	assert.Equal(t, 2, b.Distance(a))
	assert.Equal(t, 0, a.Distance(a))
}

func TestScheduleAssignmentClone(t *testing.T) {
	a := NewScheduleAssignment()
	a.Slots["A"] = "S1"

	b := a.Clone()
	b.Slots["A"] = "S2"
	b.Slots["B"] = "S1"

	assert.Equal(t, SlotID("S1"), a.Slots["A"])
	assert.Len(t, a.Slots, 1)
	assert.Equal(t, []CourseID{"A", "B"}, b.Courses())
}

func TestRoomPlanBlocks(t *testing.T) {
	p := NewRoomPlan()
	p.Add("S1", "A", SeatBlock{Room: "R1", Seats: 30})
	p.Add("S1", "A", SeatBlock{Room: "R2", Seats: 20})

	assert.Equal(t, []SeatBlock{
		{Room: "R1", Seats: 30},
		{Room: "R2", Seats: 20},
	}, p.CourseBlocks("S1", "A"))
	assert.Nil(t, p.CourseBlocks("S2", "A"))
	assert.Nil(t, p.CourseBlocks("S1", "B"))
}

func TestRoomParseFeatures(t *testing.T) {
	r := &Room{ID: "R1", Capacity: 10, FeaturesSTR: "accessible| projector |"}
	r.ParseFeatures()
	assert.Equal(t, []string{"accessible", "projector"}, r.Features)

	r.FeaturesSTR = ""
	r.ParseFeatures()
	assert.Empty(t, r.Features)
}

func TestDeltaKindString(t *testing.T) {
	assert.Equal(t, "course-added", DeltaCourseAdded.String())
	assert.Equal(t, "room-capacity-changed", DeltaRoomCapacityChanged.String())
	assert.Equal(t, "unknown", DeltaKind(99).String())
}
