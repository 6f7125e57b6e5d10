package model

import "sort"

// ScheduleAssignment maps each placed course to its exam slot. Room
// partitioning is deferred to the RoomPlan.
type ScheduleAssignment struct {
	Slots map[CourseID]SlotID
}

// NewScheduleAssignment creates an empty assignment.
func NewScheduleAssignment() *ScheduleAssignment {
	return &ScheduleAssignment{Slots: make(map[CourseID]SlotID)}
}

// Clone returns an independent copy.
func (a *ScheduleAssignment) Clone() *ScheduleAssignment {
	c := &ScheduleAssignment{Slots: make(map[CourseID]SlotID, len(a.Slots))}
	for k, v := range a.Slots {
		c.Slots[k] = v
	}
	return c
}

// Courses returns the assigned course ids in ascending order.
func (a *ScheduleAssignment) Courses() []CourseID {
	ids := make([]CourseID, 0, len(a.Slots))
	for id := range a.Slots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SeatBlock is a seat reservation of one course inside one room.
type SeatBlock struct {
	Room  RoomID
	Seats int
}

// RoomPlan partitions rooms among the courses of each slot. A course
// split across rooms carries several blocks, ordered by descending
// room capacity.
type RoomPlan struct {
	Blocks map[SlotID]map[CourseID][]SeatBlock
}

// NewRoomPlan creates an empty plan.
func NewRoomPlan() *RoomPlan {
	return &RoomPlan{Blocks: make(map[SlotID]map[CourseID][]SeatBlock)}
}

// Add appends a seat block for a course in a slot.
func (p *RoomPlan) Add(slot SlotID, course CourseID, block SeatBlock) {
	if p.Blocks[slot] == nil {
		p.Blocks[slot] = make(map[CourseID][]SeatBlock)
	}
	p.Blocks[slot][course] = append(p.Blocks[slot][course], block)
}

// CourseBlocks returns the seat blocks of one course, nil if unseated.
func (p *RoomPlan) CourseBlocks(slot SlotID, course CourseID) []SeatBlock {
	if p.Blocks[slot] == nil {
		return nil
	}
	return p.Blocks[slot][course]
}

// DatesheetCSVRow is the export shape of one placed course.
type DatesheetCSVRow struct {
	CourseID CourseID `csv:"course_id"`
	SlotID   SlotID   `csv:"slot_id"`
	Day      int      `csv:"day"`
	Period   int      `csv:"period"`
	Rooms    string   `csv:"rooms"`
	Students int      `csv:"students"`
}
