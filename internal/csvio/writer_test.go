package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/datesheet/go-datesheet/internal/scheduler"
	"github.com/datesheet/go-datesheet/pkg/model"
)

func exportFixture(t *testing.T) (*model.ScheduleAssignment, *model.RoomPlan, *model.ConflictGraph, *scheduler.Catalog) {
	t.Helper()
	graph, err := scheduler.BuildConflictGraph([]*model.Course{
		{ID: "MATH101", Duration: 1, Students: []model.StudentID{"s1", "s2"}},
		{ID: "PHYS101", Duration: 1, Students: []model.StudentID{"s1"}},
	}, nil)
	require.NoError(t, err)

	catalog, err := scheduler.NewCatalog(
		[]*model.TimeSlot{
			{ID: "S1", Day: 0, Period: 0},
			{ID: "S2", Day: 1, Period: 0},
		},
		[]*model.Room{{ID: "R1", Capacity: 10}}, nil)
	require.NoError(t, err)

	assignment := model.NewScheduleAssignment()
	assignment.Slots["MATH101"] = "S1"
	assignment.Slots["PHYS101"] = "S2"

	plan := model.NewRoomPlan()
	plan.Add("S1", "MATH101", model.SeatBlock{Room: "R1", Seats: 2})
	plan.Add("S2", "PHYS101", model.SeatBlock{Room: "R1", Seats: 1})

	return assignment, plan, graph, catalog
}

func TestExportDatesheetString(t *testing.T) {
	assignment, plan, graph, catalog := exportFixture(t)

	out, err := ExportDatesheetString(assignment, plan, graph, catalog)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "course_id,slot_id,day,period,rooms,students", lines[0])
	assert.Equal(t, "MATH101,S1,0,0,R1:2,2", lines[1])
	assert.Equal(t, "PHYS101,S2,1,0,R1:1,1", lines[2])
}

func TestExportDatesheetRowsChronological(t *testing.T) {
	assignment, plan, graph, catalog := exportFixture(t)
	// Swap days so ascending course id no longer matches time order.
	assignment.Slots["MATH101"] = "S2"
	assignment.Slots["PHYS101"] = "S1"
	plan = model.NewRoomPlan()
	plan.Add("S2", "MATH101", model.SeatBlock{Room: "R1", Seats: 2})
	plan.Add("S1", "PHYS101", model.SeatBlock{Room: "R1", Seats: 1})

	out, err := ExportDatesheetString(assignment, plan, graph, catalog)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "PHYS101,S1,0"))
	assert.True(t, strings.HasPrefix(lines[2], "MATH101,S2,1"))
}

func TestExportDatesheetFile(t *testing.T) {
	assignment, plan, graph, catalog := exportFixture(t)
	path := filepath.Join(t.TempDir(), "datesheet.csv")

	got, err := ExportDatesheet(assignment, plan, graph, catalog, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "MATH101,S1,0,0,R1:2,2")
}

func TestExportDatesheetXLSX(t *testing.T) {
	assignment, plan, graph, catalog := exportFixture(t)
	path := filepath.Join(t.TempDir(), "datesheet.xlsx")

	require.NoError(t, ExportDatesheetXLSX(assignment, plan, graph, catalog, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("Datesheet", cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Course", get("A1"))
	assert.Equal(t, "Students", get("F1"))
	assert.Equal(t, "MATH101", get("A2"))
	assert.Equal(t, "R1:2", get("E2"))
	assert.Equal(t, "PHYS101", get("A3"))
	assert.Equal(t, "1", get("C3"))
}
