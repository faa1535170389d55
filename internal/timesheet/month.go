package timesheet

import (
	"fmt"
	"time"

	"github.com/yukikurage/timesheet-admin-api/internal/constants"
)

// Month is a calendar month in a fixed location
type Month struct {
	Year  int
	Month time.Month
	Loc   *time.Location
}

// MonthOf returns the month containing t, in t's location
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month(), Loc: t.Location()}
}

// ParseMonth parses a yyyy-MM string in loc
func ParseMonth(s string, loc *time.Location) (Month, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(constants.MonthLayout, s, loc)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected yyyy-MM", s)
	}
	return MonthOf(t), nil
}

func (m Month) location() *time.Location {
	if m.Loc == nil {
		return time.UTC
	}
	return m.Loc
}

// Start is the first instant of the month
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, m.location())
}

// End is the first instant of the following month (exclusive bound)
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the month
func (m Month) Contains(t time.Time) bool {
	return !t.Before(m.Start()) && t.Before(m.End())
}

func (m Month) Prev() Month {
	return MonthOf(m.Start().AddDate(0, -1, 0))
}

func (m Month) Next() Month {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// CanAdvance is false once the month reaches or passes the month of now
func (m Month) CanAdvance(now time.Time) bool {
	current := MonthOf(now.In(m.location()))
	return m.Start().Before(current.Start())
}

func (m Month) String() string {
	return m.Start().Format(constants.MonthLayout)
}
