package models

import "time"

// ProjectAssignment links a user to a project they may log hours against
type ProjectAssignment struct {
	ProjectID  uint64    `gorm:"primarykey" json:"project_id"`
	UserID     uint64    `gorm:"primarykey" json:"user_id"`
	AssignedAt time.Time `json:"assigned_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}

func (ProjectAssignment) TableName() string {
	return "project_users"
}
