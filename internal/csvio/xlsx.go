package csvio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/datesheet/go-datesheet/internal/scheduler"
	"github.com/datesheet/go-datesheet/pkg/model"
)

// ExportDatesheetXLSX writes the datesheet as an Excel workbook: one
// row per placed course, ordered chronologically, with room and seat
// annotations.
func ExportDatesheetXLSX(assignment *model.ScheduleAssignment, plan *model.RoomPlan, graph *model.ConflictGraph, catalog *scheduler.Catalog, path string) error {
	rows := formatDatesheet(assignment, plan, graph, catalog)

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Datesheet"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []string{"Course", "Slot", "Day", "Period", "Rooms", "Students"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for i, row := range rows {
		values := []interface{}{
			string(row.CourseID), string(row.SlotID), row.Day, row.Period, row.Rooms, row.Students,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
