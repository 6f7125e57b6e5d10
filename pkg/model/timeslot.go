package model

// SlotID identifies an atomic schedulable exam period.
type SlotID string

// TimeSlot is one exam period on one day. Day and Period give the slot
// an ordered position for break-distance computation. Fixed marks an
// administratively reserved slot that cannot host unpinned courses.
type TimeSlot struct {
	ID     SlotID `csv:"slot_id" validate:"required"`
	Day    int    `csv:"day" validate:"min=0"`
	Period int    `csv:"period" validate:"min=0"`
	Fixed  bool   `csv:"fixed"`
}

// SameDay reports whether two slots fall on the same day. Slots on
// different days never conflict on break distance.
func (t *TimeSlot) SameDay(other *TimeSlot) bool {
	return t.Day == other.Day
}

// Distance is the absolute period distance between two same-day slots.
func (t *TimeSlot) Distance(other *TimeSlot) int {
	d := t.Period - other.Period
	if d < 0 {
		d = -d
	}
	return d
}
