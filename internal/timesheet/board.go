package timesheet

import "github.com/yukikurage/timesheet-admin-api/internal/models"

// Board is the approvals view of one month. Rejected timesheets are in neither bucket.
type Board struct {
	Pending  []models.Timesheet
	Approved []models.Timesheet
}

// Partition splits rows by status, keeping their order
func Partition(rows []models.Timesheet) Board {
	board := Board{
		Pending:  make([]models.Timesheet, 0),
		Approved: make([]models.Timesheet, 0),
	}
	for _, t := range rows {
		switch t.Status {
		case models.TimesheetStatusPending:
			board.Pending = append(board.Pending, t)
		case models.TimesheetStatusApproved:
			board.Approved = append(board.Approved, t)
		}
	}
	return board
}

// FindPending returns the pending timesheet with the given id
func (b *Board) FindPending(id uint64) (models.Timesheet, bool) {
	for _, t := range b.Pending {
		if t.ID == id {
			return t, true
		}
	}
	return models.Timesheet{}, false
}

// MarkApproved moves t out of pending and onto the head of approved
func (b *Board) MarkApproved(t models.Timesheet) {
	b.Pending = removeByID(b.Pending, t.ID)
	b.Approved = append([]models.Timesheet{t}, b.Approved...)
}

// MarkRejected drops the timesheet from pending
func (b *Board) MarkRejected(id uint64) {
	b.Pending = removeByID(b.Pending, id)
}

func removeByID(rows []models.Timesheet, id uint64) []models.Timesheet {
	out := make([]models.Timesheet, 0, len(rows))
	for _, t := range rows {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
