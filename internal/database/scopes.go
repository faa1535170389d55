package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/timesheet-admin-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// SubmittedBetween restricts timesheets to submitted_at in [from, to)
func SubmittedBetween(from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("timesheets.submitted_at >= ? AND timesheets.submitted_at < ?", from, to)
	}
}
