package timesheet

import (
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/timesheet-admin-api/internal/models"
)

type SortField string

const (
	SortByEmployee    SortField = "employee"
	SortByProject     SortField = "project"
	SortByWeek        SortField = "week"
	SortByTotalHours  SortField = "total_hours"
	SortBySubmittedAt SortField = "submitted_at"
	SortByApprovedAt  SortField = "approved_at"
	SortByStatus      SortField = "status"
	SortByYear        SortField = "year"
	SortByID          SortField = "id"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to ascending
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// SortState is the single active sort column
type SortState struct {
	Field     SortField
	Direction Direction
}

// Select activates field. Selecting the active field again flips the direction.
func (s SortState) Select(field SortField) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Asc}
}

// Sort orders a copy of rows by the active field. Equal keys keep their relative order.
func (s SortState) Sort(rows []models.Timesheet) []models.Timesheet {
	out := make([]models.Timesheet, len(rows))
	copy(out, rows)
	if s.Field == "" {
		return out
	}

	less := keyLess(s.Field)
	sort.SliceStable(out, func(i, j int) bool {
		if s.Direction == Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func keyLess(field SortField) func(a, b models.Timesheet) bool {
	switch field {
	case SortByEmployee:
		return func(a, b models.Timesheet) bool { return a.User.DisplayName() < b.User.DisplayName() }
	case SortByProject:
		return func(a, b models.Timesheet) bool { return a.Project.Name < b.Project.Name }
	case SortByWeek:
		return func(a, b models.Timesheet) bool { return WeekKey(a) < WeekKey(b) }
	case SortByTotalHours:
		return func(a, b models.Timesheet) bool { return TotalHours(a) < TotalHours(b) }
	case SortBySubmittedAt:
		return func(a, b models.Timesheet) bool { return a.SubmittedAt.Before(b.SubmittedAt) }
	case SortByApprovedAt:
		return func(a, b models.Timesheet) bool { return timeOrZero(a.ApprovedAt).Before(timeOrZero(b.ApprovedAt)) }
	case SortByStatus:
		return func(a, b models.Timesheet) bool { return a.Status < b.Status }
	case SortByYear:
		return func(a, b models.Timesheet) bool { return a.Year < b.Year }
	default:
		return func(a, b models.Timesheet) bool { return a.ID < b.ID }
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
