package timesheet

import "github.com/yukikurage/timesheet-admin-api/internal/models"

// Filter restricts the approved bucket by owner and project.
// Ids within a field are OR'ed, fields are AND'ed, an empty field matches everything.
type Filter struct {
	UserIDs    []uint64
	ProjectIDs []uint64
}

func (f Filter) IsEmpty() bool {
	return len(f.UserIDs) == 0 && len(f.ProjectIDs) == 0
}

func (f Filter) Match(t models.Timesheet) bool {
	return containsID(f.UserIDs, t.UserID) && containsID(f.ProjectIDs, t.ProjectID)
}

// Apply returns the matching rows in their original order
func (f Filter) Apply(rows []models.Timesheet) []models.Timesheet {
	if f.IsEmpty() {
		return rows
	}
	out := make([]models.Timesheet, 0, len(rows))
	for _, t := range rows {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func containsID(ids []uint64, id uint64) bool {
	if len(ids) == 0 {
		return true
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SelectIDs returns the rows whose id is in ids, in row order
func SelectIDs(rows []models.Timesheet, ids []uint64) []models.Timesheet {
	wanted := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]models.Timesheet, 0, len(ids))
	for _, t := range rows {
		if _, ok := wanted[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}
