package dto

import (
	"time"

	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/timesheet"
	"github.com/yukikurage/timesheet-admin-api/internal/utils"
)

// TimesheetDTO represents a timesheet in API responses
type TimesheetDTO struct {
	ID              uint64                 `json:"id"`
	UserID          uint64                 `json:"user_id"`
	ProjectID       uint64                 `json:"project_id"`
	Year            int                    `json:"year"`
	Week            int                    `json:"week"`
	WeekKey         int                    `json:"week_key"`
	MondayHours     float64                `json:"monday_hours"`
	TuesdayHours    float64                `json:"tuesday_hours"`
	WednesdayHours  float64                `json:"wednesday_hours"`
	ThursdayHours   float64                `json:"thursday_hours"`
	FridayHours     float64                `json:"friday_hours"`
	SaturdayHours   float64                `json:"saturday_hours"`
	SundayHours     float64                `json:"sunday_hours"`
	TotalHours      float64                `json:"total_hours"`
	Status          models.TimesheetStatus `json:"status"`
	SubmittedAt     time.Time              `json:"submitted_at"`
	ApprovedAt      *time.Time             `json:"approved_at"`
	RejectionReason *string                `json:"rejection_reason"`
	User            *UserDTO               `json:"user,omitempty"`
	Project         *ProjectDTO            `json:"project,omitempty"`
	Approver        *UserDTO               `json:"approver,omitempty"`
}

// BoardDTO is one month of the approvals view
type BoardDTO struct {
	Month      string         `json:"month"`
	PrevMonth  string         `json:"prev_month"`
	NextMonth  *string        `json:"next_month"`
	CanAdvance bool           `json:"can_advance"`
	Pending    []TimesheetDTO `json:"pending"`
	Approved   []TimesheetDTO `json:"approved"`
}

// BulkApproveResponse is the board after a bulk approval with per-row failures
type BulkApproveResponse struct {
	Board  BoardDTO          `json:"board"`
	Errors map[string]string `json:"errors"`
}

// TimesheetHistoryResponse represents a paginated list of a user's timesheets
type TimesheetHistoryResponse struct {
	Timesheets []TimesheetDTO           `json:"timesheets"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTimesheetDTO converts a Timesheet model to TimesheetDTO. Relations are
// included when they were preloaded.
func ToTimesheetDTO(t models.Timesheet) TimesheetDTO {
	dto := TimesheetDTO{
		ID:              t.ID,
		UserID:          t.UserID,
		ProjectID:       t.ProjectID,
		Year:            t.Year,
		Week:            t.Week,
		WeekKey:         timesheet.WeekKey(t),
		MondayHours:     t.MondayHours,
		TuesdayHours:    t.TuesdayHours,
		WednesdayHours:  t.WednesdayHours,
		ThursdayHours:   t.ThursdayHours,
		FridayHours:     t.FridayHours,
		SaturdayHours:   t.SaturdayHours,
		SundayHours:     t.SundayHours,
		TotalHours:      timesheet.TotalHours(t),
		Status:          t.Status,
		SubmittedAt:     t.SubmittedAt,
		ApprovedAt:      t.ApprovedAt,
		RejectionReason: t.RejectionReason,
	}
	if t.User.ID != 0 {
		user := ToUserDTO(t.User)
		dto.User = &user
	}
	if t.Project.ID != 0 {
		project := ToProjectDTO(t.Project)
		dto.Project = &project
	}
	if t.Approver != nil {
		approver := ToUserDTO(*t.Approver)
		dto.Approver = &approver
	}
	return dto
}

// ToTimesheetDTOs converts a slice of timesheets, never returning nil
func ToTimesheetDTOs(rows []models.Timesheet) []TimesheetDTO {
	out := make([]TimesheetDTO, len(rows))
	for i, t := range rows {
		out[i] = ToTimesheetDTO(t)
	}
	return out
}

// ToBoardDTO converts a board for month. approved is the filtered and sorted bucket.
func ToBoardDTO(month timesheet.Month, now time.Time, pending, approved []models.Timesheet) BoardDTO {
	dto := BoardDTO{
		Month:      month.String(),
		PrevMonth:  month.Prev().String(),
		CanAdvance: month.CanAdvance(now),
		Pending:    ToTimesheetDTOs(pending),
		Approved:   ToTimesheetDTOs(approved),
	}
	if dto.CanAdvance {
		next := month.Next().String()
		dto.NextMonth = &next
	}
	return dto
}
