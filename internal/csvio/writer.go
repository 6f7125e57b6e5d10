package csvio

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/datesheet/go-datesheet/internal/scheduler"
	"github.com/datesheet/go-datesheet/pkg/model"
)

// ExportDatesheet formats the assignment and room plan into
// DatesheetCSVRow structs and writes them to the CSV file specified by
// the given path.
func ExportDatesheet(assignment *model.ScheduleAssignment, plan *model.RoomPlan, graph *model.ConflictGraph, catalog *scheduler.Catalog, path string) (string, error) {
	rows := formatDatesheet(assignment, plan, graph, catalog)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()
	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// ExportDatesheetString renders the datesheet as a CSV string.
func ExportDatesheetString(assignment *model.ScheduleAssignment, plan *model.RoomPlan, graph *model.ConflictGraph, catalog *scheduler.Catalog) (string, error) {
	rows := formatDatesheet(assignment, plan, graph, catalog)
	return gocsv.MarshalString(&rows)
}

// PrintDatesheet prints the datesheet grouped by day.
func PrintDatesheet(assignment *model.ScheduleAssignment, plan *model.RoomPlan, graph *model.ConflictGraph, catalog *scheduler.Catalog) {
	rows := formatDatesheet(assignment, plan, graph, catalog)
	lastDay := -1
	for _, r := range rows {
		if r.Day != lastDay {
			lastDay = r.Day
			fmt.Printf("\n%s Day %d %s\n", strings.Repeat("-", 13), r.Day, strings.Repeat("-", 13))
		}
		fmt.Printf("%-12s period %-2d  %-10s %s\n", r.CourseID, r.Period, r.SlotID, r.Rooms)
	}
	fmt.Printf("Printed rows: %d\n", len(rows))
}

func formatDatesheet(assignment *model.ScheduleAssignment, plan *model.RoomPlan, graph *model.ConflictGraph, catalog *scheduler.Catalog) []*model.DatesheetCSVRow {
	var rows []*model.DatesheetCSVRow
	for _, id := range assignment.Courses() {
		sid := assignment.Slots[id]
		slot, ok := catalog.SlotByID(sid)
		if !ok {
			continue
		}
		row := &model.DatesheetCSVRow{
			CourseID: id,
			SlotID:   sid,
			Day:      slot.Day,
			Period:   slot.Period,
		}
		if v, ok := graph.Vertex(id); ok {
			row.Students = graph.Seats[v]
		}
		if plan != nil {
			var parts []string
			for _, b := range plan.CourseBlocks(sid, id) {
				parts = append(parts, fmt.Sprintf("%s:%d", b.Room, b.Seats))
			}
			row.Rooms = strings.Join(parts, "|")
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b *model.DatesheetCSVRow) int {
		if a.Day != b.Day {
			return a.Day - b.Day
		}
		if a.Period != b.Period {
			return a.Period - b.Period
		}
		return strings.Compare(string(a.CourseID), string(b.CourseID))
	})
	return rows
}
