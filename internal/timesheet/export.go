package timesheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yukikurage/timesheet-admin-api/internal/constants"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
)

const exportSheet = "Timesheets"

var exportHeader = []string{"Employee", "Project", "Week", "Year", "Total Hours", "Status", "Approved By", "Approved Date"}

// ExportFilename is the attachment name for a month, e.g. timesheets-2024-03.csv
func ExportFilename(month Month, ext string) string {
	return fmt.Sprintf("timesheets-%s.%s", month.String(), ext)
}

// exportRecord renders one row in column order
func exportRecord(t models.Timesheet) []string {
	approver := ""
	if t.Approver != nil {
		approver = t.Approver.DisplayName()
	}
	approvedDate := ""
	if t.ApprovedAt != nil {
		approvedDate = t.ApprovedAt.Format(constants.DateLayout)
	}

	return []string{
		t.User.DisplayName(),
		t.Project.Name,
		strconv.Itoa(t.Week),
		strconv.Itoa(t.Year),
		strconv.FormatFloat(TotalHours(t), 'f', -1, 64),
		string(t.Status),
		approver,
		approvedDate,
	}
}

// ExportCSV renders a header line plus one line per row.
// Fields are joined as-is: values containing commas or quotes are not escaped.
func ExportCSV(rows []models.Timesheet) []byte {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(exportHeader, ","))
	for _, t := range rows {
		lines = append(lines, strings.Join(exportRecord(t), ","))
	}
	return []byte(strings.Join(lines, "\n"))
}

// ExportXLSX writes the same columns as ExportCSV into a single worksheet
func ExportXLSX(rows []models.Timesheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeXLSXRow(f, 1, toCells(exportHeader)); err != nil {
		return nil, err
	}

	for i, t := range rows {
		record := exportRecord(t)
		cells := toCells(record)
		// Keep numeric columns numeric in the workbook
		cells[2] = t.Week
		cells[3] = t.Year
		cells[4] = TotalHours(t)
		if err := writeXLSXRow(f, i+2, cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSXRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
