// Package timesheet holds the in-memory derivations behind the approvals
// board: totals, month ranges, partitioning, filtering, sorting and export.
package timesheet

import "github.com/yukikurage/timesheet-admin-api/internal/models"

// TotalHours sums the five weekday columns. Weekend hours never count.
func TotalHours(t models.Timesheet) float64 {
	return t.MondayHours + t.TuesdayHours + t.WednesdayHours + t.ThursdayHours + t.FridayHours
}

// WeekKey composes year and ISO week into a single orderable key (2024-W09 -> 202409).
func WeekKey(t models.Timesheet) int {
	return t.Year*100 + t.Week
}
