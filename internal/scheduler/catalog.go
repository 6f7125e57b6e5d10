package scheduler

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/datesheet/go-datesheet/pkg/model"
)

var validate = validator.New()

// Catalog holds the slots, rooms and teacher availability of one
// scheduling run as read-only lookup structures.
type Catalog struct {
	slotsByID []*model.TimeSlot // ascending slot id: the value order
	chrono    []*model.TimeSlot // ascending (day, period, id)
	rooms     []*model.Room     // descending capacity, tie ascending id
	slotIdx   map[model.SlotID]int
	teachers  map[model.TeacherID]map[model.SlotID]bool
	total     int
}

// NewCatalog validates the snapshot and builds the lookup structures.
// Scheduling is impossible by construction without at least one slot
// and one room.
func NewCatalog(slots []*model.TimeSlot, rooms []*model.Room, teachers []*model.Teacher) (*Catalog, error) {
	if len(slots) == 0 {
		return nil, Clone(ErrEmptyCatalog, "catalog has no time slots")
	}
	if len(rooms) == 0 {
		return nil, Clone(ErrEmptyCatalog, "catalog has no rooms")
	}
	c := &Catalog{
		slotsByID: make([]*model.TimeSlot, len(slots)),
		chrono:    make([]*model.TimeSlot, len(slots)),
		rooms:     make([]*model.Room, len(rooms)),
		slotIdx:   make(map[model.SlotID]int, len(slots)),
		teachers:  make(map[model.TeacherID]map[model.SlotID]bool, len(teachers)),
	}
	for i, s := range slots {
		if err := validate.Struct(s); err != nil {
			return nil, Wrap(err, ErrInvalidCatalog.Code, fmt.Sprintf("invalid time slot %s", s.ID))
		}
		c.slotsByID[i] = s
		c.chrono[i] = s
	}
	sort.Slice(c.slotsByID, func(i, j int) bool { return c.slotsByID[i].ID < c.slotsByID[j].ID })
	sort.Slice(c.chrono, func(i, j int) bool {
		a, b := c.chrono[i], c.chrono[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		return a.ID < b.ID
	})
	for i, s := range c.slotsByID {
		if _, dup := c.slotIdx[s.ID]; dup {
			return nil, Clone(ErrInvalidCatalog, fmt.Sprintf("duplicate slot id %s", s.ID))
		}
		c.slotIdx[s.ID] = i
	}
	for i, r := range rooms {
		if err := validate.Struct(r); err != nil {
			return nil, Wrap(err, ErrInvalidCatalog.Code, fmt.Sprintf("invalid room %s", r.ID))
		}
		c.rooms[i] = r
		c.total += r.Capacity
	}
	sort.Slice(c.rooms, func(i, j int) bool {
		if c.rooms[i].Capacity != c.rooms[j].Capacity {
			return c.rooms[i].Capacity > c.rooms[j].Capacity
		}
		return c.rooms[i].ID < c.rooms[j].ID
	})
	for _, t := range teachers {
		busy := make(map[model.SlotID]bool, len(t.Unavailable))
		for _, s := range t.Unavailable {
			busy[s] = true
		}
		c.teachers[t.ID] = busy
	}
	return c, nil
}

// SlotCount returns the number of slots in the catalog.
func (c *Catalog) SlotCount() int { return len(c.slotsByID) }

// SlotsByID returns slots in ascending id order, the candidate value
// order of the search. Callers must not mutate the returned slice.
func (c *Catalog) SlotsByID() []*model.TimeSlot { return c.slotsByID }

// SlotsOrderedByTime returns slots in chronological (day, period) order.
func (c *Catalog) SlotsOrderedByTime() []*model.TimeSlot { return c.chrono }

// SlotByID resolves a slot id.
func (c *Catalog) SlotByID(id model.SlotID) (*model.TimeSlot, bool) {
	i, ok := c.slotIdx[id]
	if !ok {
		return nil, false
	}
	return c.slotsByID[i], true
}

// SlotIndex resolves a slot id to its position in SlotsByID order.
func (c *Catalog) SlotIndex(id model.SlotID) (int, bool) {
	i, ok := c.slotIdx[id]
	return i, ok
}

// IsSlotFixed reports whether the slot is administratively reserved.
func (c *Catalog) IsSlotFixed(id model.SlotID) bool {
	s, ok := c.SlotByID(id)
	return ok && s.Fixed
}

// RoomsByDescendingCapacity returns rooms largest-first. Callers must
// not mutate the returned slice.
func (c *Catalog) RoomsByDescendingCapacity() []*model.Room { return c.rooms }

// TotalSeats is the aggregate capacity of all rooms, available in every
// slot.
func (c *Catalog) TotalSeats() int { return c.total }

// IsTeacherAvailable reports whether the teacher can invigilate in the
// slot. Unknown teachers are treated as always available.
func (c *Catalog) IsTeacherAvailable(t model.TeacherID, slot model.SlotID) bool {
	busy, ok := c.teachers[t]
	if !ok {
		return true
	}
	return !busy[slot]
}
