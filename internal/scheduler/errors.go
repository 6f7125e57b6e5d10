package scheduler

import (
	"fmt"
	"strings"

	"github.com/datesheet/go-datesheet/pkg/model"
)

// Error is a typed, recoverable scheduling failure. Every outcome in
// the taxonomy is reported through one of these; the core never crashes
// on malformed-but-well-typed input.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// newError creates a new Error instance.
func newError(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Predefined errors for the structurally-detectable failures.
var (
	ErrInvalidCourse     = newError("INVALID_COURSE", "course data is malformed or duplicated")
	ErrInvalidEnrollment = newError("INVALID_ENROLLMENT", "enrollment data references unknown records")
	ErrInvalidCatalog    = newError("INVALID_CATALOG", "catalog data is malformed")
	ErrEmptyCatalog      = newError("EMPTY_CATALOG", "catalog has no slots or no rooms")
	ErrInsufficientSlots = newError("INSUFFICIENT_SLOTS", "conflict clique exceeds available slots")
)

// CapacityError reports that one slot's courses cannot be seated.
type CapacityError struct {
	Slot      model.SlotID
	Shortfall int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("slot %s is short %d seats", e.Slot, e.Shortfall)
}

// InfeasibleError wraps a search report. It is a normal outcome, not a
// crash: callers inspect the report for diagnostics, or retry with a
// larger budget when Partial is set. Err, when set, carries the typed
// error that classified the failure (e.g. ErrInsufficientSlots).
type InfeasibleError struct {
	Report *InfeasibleReport
	Err    *Error
}

func (e *InfeasibleError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Report != nil && e.Report.Partial {
		return "search budget exhausted before completion"
	}
	return "no assignment satisfies all constraints"
}

func (e *InfeasibleError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// Constraint names the rule that rejected a candidate slot.
type Constraint int

const (
	ConstraintNeighborConflict Constraint = iota
	ConstraintTeacherUnavailable
	ConstraintBreakDistance
	ConstraintSeatShortage
	ConstraintFixedSlot
	ConstraintPinnedElsewhere
)

func (c Constraint) String() string {
	switch c {
	case ConstraintNeighborConflict:
		return "neighbor-conflict"
	case ConstraintTeacherUnavailable:
		return "teacher-unavailable"
	case ConstraintBreakDistance:
		return "break-distance"
	case ConstraintSeatShortage:
		return "seat-shortage"
	case ConstraintFixedSlot:
		return "fixed-slot"
	case ConstraintPinnedElsewhere:
		return "pinned-elsewhere"
	}
	return "unknown"
}

// BlockReason records why one candidate slot was rejected for a course.
type BlockReason struct {
	Slot        model.SlotID
	Constraint  Constraint
	Conflicting model.CourseID // set for neighbor and break rejections
	Teacher     model.TeacherID
}

// BlockedCourse pairs an unplaceable course with the constraints that
// rejected every remaining candidate slot.
type BlockedCourse struct {
	Course  model.CourseID
	Reasons []BlockReason
}

// InfeasibleReport carries the partial assignment reached and the
// per-course blocking diagnostics. Partial marks budget exhaustion as
// opposed to true, exhaustive infeasibility.
type InfeasibleReport struct {
	Partial  bool
	Assigned *model.ScheduleAssignment
	Blocked  []BlockedCourse
	Steps    int64
}

// Summary renders the report in a human-readable check format.
func (r *InfeasibleReport) Summary() string {
	var b strings.Builder
	if r.Partial {
		b.WriteString("[FAIL]: Search budget exhausted.\n")
	} else {
		b.WriteString("[FAIL]: Search space exhausted.\n")
	}
	fmt.Fprintf(&b, "- Placed %d courses in %d steps\n", len(r.Assigned.Slots), r.Steps)
	for _, bc := range r.Blocked {
		fmt.Fprintf(&b, "- Could not place %s:\n", bc.Course)
		for _, reason := range bc.Reasons {
			if reason.Slot != "" {
				fmt.Fprintf(&b, "    slot %s rejected: %s", reason.Slot, reason.Constraint)
			} else {
				fmt.Fprintf(&b, "    rejected: %s", reason.Constraint)
			}
			if reason.Conflicting != "" {
				fmt.Fprintf(&b, " with %s", reason.Conflicting)
			}
			if reason.Teacher != "" {
				fmt.Fprintf(&b, " (%s)", reason.Teacher)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// BlockedBy reports whether the diagnostics name the given pair as
// mutually blocking.
func (r *InfeasibleReport) BlockedBy(course, blocker model.CourseID) bool {
	for _, bc := range r.Blocked {
		if bc.Course != course {
			continue
		}
		for _, reason := range bc.Reasons {
			if reason.Conflicting == blocker {
				return true
			}
		}
	}
	return false
}
