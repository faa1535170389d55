package models

import (
	"time"

	"gorm.io/gorm"
)

type TimesheetStatus string

const (
	TimesheetStatusPending  TimesheetStatus = "pending"
	TimesheetStatusApproved TimesheetStatus = "approved"
	TimesheetStatusRejected TimesheetStatus = "rejected"
)

// CanTransitionTo reports whether moving from s to next is a legal status change.
// Only pending timesheets can be decided; decisions are final.
func (s TimesheetStatus) CanTransitionTo(next TimesheetStatus) bool {
	if s != TimesheetStatusPending {
		return false
	}
	return next == TimesheetStatusApproved || next == TimesheetStatusRejected
}

type Timesheet struct {
	ID              uint64          `gorm:"primarykey" json:"id"`
	UserID          uint64          `gorm:"not null;index" json:"user_id"`
	ProjectID       uint64          `gorm:"not null;index" json:"project_id"`
	Year            int             `gorm:"not null" json:"year"`
	Week            int             `gorm:"not null" json:"week"`
	MondayHours     float64         `gorm:"not null;default:0" json:"monday_hours"`
	TuesdayHours    float64         `gorm:"not null;default:0" json:"tuesday_hours"`
	WednesdayHours  float64         `gorm:"not null;default:0" json:"wednesday_hours"`
	ThursdayHours   float64         `gorm:"not null;default:0" json:"thursday_hours"`
	FridayHours     float64         `gorm:"not null;default:0" json:"friday_hours"`
	SaturdayHours   float64         `gorm:"not null;default:0" json:"saturday_hours"`
	SundayHours     float64         `gorm:"not null;default:0" json:"sunday_hours"`
	Status          TimesheetStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	SubmittedAt     time.Time       `gorm:"not null;index" json:"submitted_at"`
	ApprovedBy      *uint64         `json:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	RejectionReason *string         `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	User     User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project  Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Approver *User   `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}
