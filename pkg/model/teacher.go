package model

// TeacherCSV is one row of the teacher unavailability file. A teacher
// with several unavailable slots spans several rows; the loader merges
// them into one Teacher.
type TeacherCSV struct {
	Teacher string `csv:"teacher_id"`
	Slot    string `csv:"unavailable_slot"`
}

// Teacher holds the merged unavailability window for one teacher.
type Teacher struct {
	ID          TeacherID `csv:"-"`
	Unavailable []SlotID  `csv:"-"`
}
