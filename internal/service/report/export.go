package report

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var monthlyHeaders = []string{
	"Employee", "Late", "Early Check-out", "Missed Check-out", "Absent",
	"On Leave", "On Time", "Checked Out", "Unclassified", "Total",
}

// ExportMonthly implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthly(ctx context.Context, year int, month time.Month) ([]byte, error) {
	monthly, err := s.MonthlyReport(ctx, year, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attendance"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	period := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	f.SetCellValue(sheetName, "A1", "MONTHLY ATTENDANCE REPORT")
	f.MergeCell(sheetName, "A1", "J1")
	f.SetCellStyle(sheetName, "A1", "J1", headerStyle)
	f.SetRowHeight(sheetName, 1, 25)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Period: %s", period))

	for i, h := range monthlyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 5
	for _, e := range monthly.Employees {
		values := []interface{}{
			e.EmployeeName, e.Late, e.EarlyCheckOut, e.MissedCheckOut, e.Absent,
			e.OnLeave, e.OnTime, e.CheckedOut, e.Unclassified, e.Total,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "J", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
