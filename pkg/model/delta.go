package model

// DeltaKind tags one category of input change fed to the repair engine.
type DeltaKind int

const (
	DeltaCourseAdded DeltaKind = iota
	DeltaCourseRemoved
	DeltaEnrollmentChanged
	DeltaSlotAdded
	DeltaSlotRemoved
	DeltaRoomCapacityChanged
)

func (k DeltaKind) String() string {
	switch k {
	case DeltaCourseAdded:
		return "course-added"
	case DeltaCourseRemoved:
		return "course-removed"
	case DeltaEnrollmentChanged:
		return "enrollment-changed"
	case DeltaSlotAdded:
		return "slot-added"
	case DeltaSlotRemoved:
		return "slot-removed"
	case DeltaRoomCapacityChanged:
		return "room-capacity-changed"
	}
	return "unknown"
}

// Delta describes a single input change relative to a prior assignment.
// The conflict graph and catalog handed to the repair engine must
// already reflect the change; the delta only directs the repair.
type Delta struct {
	Kind   DeltaKind
	Course CourseID
	Slot   SlotID
	Room   RoomID
	// Capacity deltas carry both values so the engine can tell a
	// shrink (needs repair) from a grow (prior plan stays feasible).
	OldCapacity int
	NewCapacity int
}
