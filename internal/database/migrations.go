package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the approvals and history queries rely on.
// Only used on postgres, where pg_indexes lets us skip existing ones.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Month board: range on submitted_at, optionally narrowed by owner
		{"timesheets", "idx_timesheets_submitted_user", "submitted_at, user_id"},
		// Per-user history ordered by submission
		{"timesheets", "idx_timesheets_user_submitted", "user_id, submitted_at DESC"},
		{"timesheets", "idx_timesheets_status_submitted", "status, submitted_at"},

		// Team lookups
		{"users", "idx_users_role_manager", "role, manager_id"},

		{"project_users", "idx_project_users_user_id", "user_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
