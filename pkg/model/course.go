package model

// CourseID identifies a course offering within one scheduling session.
type CourseID string

// StudentID identifies an enrolled student.
type StudentID string

// TeacherID identifies a teacher linked to a course.
type TeacherID string

// Course is one examinable course in the input snapshot.
type Course struct {
	ID CourseID `csv:"course_id" validate:"required"`
	// Duration is the exam length in periods, carried for hall
	// booking. Placement treats every exam as occupying one slot.
	Duration int         `csv:"duration" validate:"min=1"`
	Students []StudentID `csv:"-"`
	Teachers []TeacherID `csv:"-"`
	// Pinned fixes the course to a slot before search begins. Empty
	// means unpinned.
	Pinned SlotID `csv:"-"`
}

// CourseCSV is the on-disk shape of a course row. Teachers is a
// pipe-separated list; the loader splits it into Course.Teachers.
type CourseCSV struct {
	ID          string `csv:"course_id"`
	Duration    int    `csv:"duration"`
	TeachersSTR string `csv:"teachers"`
}

// Enrollment links one student to one course. One row per pair.
type Enrollment struct {
	Student StudentID `csv:"student_id" validate:"required"`
	Course  CourseID  `csv:"course_id" validate:"required"`
}

// Pinned is an administrative override fixing a course to a slot.
type Pinned struct {
	Course CourseID `csv:"course_id"`
	Slot   SlotID   `csv:"slot_id"`
}
