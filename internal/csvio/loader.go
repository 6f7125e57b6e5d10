package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/datesheet/go-datesheet/pkg/model"
)

func setReaderDelim(delim rune) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		return r
	})
}

func openAndParse(path string, delim rune, out interface{}) error {
	setReaderDelim(delim)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s, please make sure the file exists: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("failed to parse %s, please check the data integrity and format: %w", path, err)
	}
	return nil
}

// LoadCourses reads and parses the given csv file for course data.
// The teachers column is a pipe-separated list.
func LoadCourses(path string, delim rune) ([]*model.Course, error) {
	rows := []*model.CourseCSV{}
	if err := openAndParse(path, delim, &rows); err != nil {
		return nil, err
	}
	courses := make([]*model.Course, 0, len(rows))
	for _, row := range rows {
		c := &model.Course{
			ID:       model.CourseID(strings.TrimSpace(row.ID)),
			Duration: row.Duration,
		}
		for _, t := range strings.Split(row.TeachersSTR, "|") {
			t = strings.TrimSpace(t)
			if t != "" {
				c.Teachers = append(c.Teachers, model.TeacherID(t))
			}
		}
		courses = append(courses, c)
	}
	return courses, nil
}

// LoadEnrollments reads student-course pairs, one per row.
func LoadEnrollments(path string, delim rune) ([]*model.Enrollment, error) {
	rows := []*model.Enrollment{}
	if err := openAndParse(path, delim, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadRooms reads and parses the given csv file for room data.
func LoadRooms(path string, delim rune) ([]*model.Room, error) {
	rooms := []*model.Room{}
	if err := openAndParse(path, delim, &rooms); err != nil {
		return nil, err
	}
	for _, r := range rooms {
		r.ParseFeatures()
	}
	return rooms, nil
}

// LoadSlots reads and parses the given csv file for time slot data.
func LoadSlots(path string, delim rune) ([]*model.TimeSlot, error) {
	slots := []*model.TimeSlot{}
	if err := openAndParse(path, delim, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// LoadTeachers reads teacher unavailability rows and merges multi-line
// entries into one record per teacher.
func LoadTeachers(path string, delim rune) ([]*model.Teacher, error) {
	rows := []*model.TeacherCSV{}
	if err := openAndParse(path, delim, &rows); err != nil {
		return nil, err
	}
	merged := map[model.TeacherID]*model.Teacher{}
	var order []model.TeacherID
	for _, row := range rows {
		id := model.TeacherID(strings.TrimSpace(row.Teacher))
		if id == "" {
			continue
		}
		t, ok := merged[id]
		if !ok {
			t = &model.Teacher{ID: id}
			merged[id] = t
			order = append(order, id)
		}
		slot := model.SlotID(strings.TrimSpace(row.Slot))
		if slot == "" {
			continue
		}
		seen := false
		for _, s := range t.Unavailable {
			if s == slot {
				seen = true
				break
			}
		}
		if !seen {
			t.Unavailable = append(t.Unavailable, slot)
		}
	}
	teachers := make([]*model.Teacher, 0, len(order))
	for _, id := range order {
		teachers = append(teachers, merged[id])
	}
	return teachers, nil
}

// LoadPins reads administrative pin rows and applies them onto the
// matching courses. A pin naming an unknown course is a data error.
func LoadPins(path string, delim rune, courses []*model.Course) ([]*model.Pinned, error) {
	pins := []*model.Pinned{}
	if err := openAndParse(path, delim, &pins); err != nil {
		return nil, err
	}
	byID := make(map[model.CourseID]*model.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	for _, p := range pins {
		c, ok := byID[p.Course]
		if !ok {
			return nil, fmt.Errorf("pin references unknown course %s in %s", p.Course, path)
		}
		c.Pinned = p.Slot
	}
	return pins, nil
}
