package repository

import (
	"context"

	"github.com/yukikurage/timesheet-admin-api/internal/database"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/utils"
	"gorm.io/gorm"
)

// GormTimesheetRepository is a GORM implementation of TimesheetRepository
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository creates a new TimesheetRepository
func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

// Create creates a new timesheet
func (r *GormTimesheetRepository) Create(ctx context.Context, timesheet *models.Timesheet) error {
	return r.db.WithContext(ctx).Omit("User", "Project", "Approver").Create(timesheet).Error
}

// FindByID finds a timesheet by ID with optional preloading
func (r *GormTimesheetRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Timesheet, error) {
	var timesheet models.Timesheet
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&timesheet, id).Error; err != nil {
		return nil, err
	}

	return &timesheet, nil
}

// List retrieves timesheets matching the filter, newest submission first
func (r *GormTimesheetRepository) List(ctx context.Context, filter TimesheetFilter) ([]models.Timesheet, error) {
	if filter.OwnerIDs != nil && len(filter.OwnerIDs) == 0 {
		return []models.Timesheet{}, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Timesheet{})

	if filter.SubmittedFrom != nil && filter.SubmittedTo != nil {
		query = query.Scopes(database.SubmittedBetween(*filter.SubmittedFrom, *filter.SubmittedTo))
	} else if filter.SubmittedFrom != nil {
		query = query.Where("timesheets.submitted_at >= ?", *filter.SubmittedFrom)
	} else if filter.SubmittedTo != nil {
		query = query.Where("timesheets.submitted_at < ?", *filter.SubmittedTo)
	}
	if filter.OwnerIDs != nil {
		query = query.Where("timesheets.user_id IN ?", filter.OwnerIDs)
	}
	if filter.Status != nil {
		query = query.Where("timesheets.status = ?", *filter.Status)
	}

	var timesheets []models.Timesheet
	if err := query.
		Preload("User").
		Preload("Project").
		Preload("Approver").
		Order("timesheets.submitted_at DESC").
		Order("timesheets.id DESC").
		Find(&timesheets).Error; err != nil {
		return nil, err
	}

	return timesheets, nil
}

// ListByUser retrieves one page of a user's timesheets, newest submission first
func (r *GormTimesheetRepository) ListByUser(ctx context.Context, userID uint64, page utils.PaginationParams) ([]models.Timesheet, int64, error) {
	byUser := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Timesheet{}).Where("timesheets.user_id = ?", userID)
	}

	var total int64
	if err := byUser().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var timesheets []models.Timesheet
	if err := byUser().
		Preload("Project").
		Preload("Approver").
		Order("timesheets.submitted_at DESC").
		Order("timesheets.id DESC").
		Scopes(database.Paginate(page)).
		Find(&timesheets).Error; err != nil {
		return nil, 0, err
	}

	return timesheets, total, nil
}

// Decide applies a decision to a pending timesheet and reports the rows changed
func (r *GormTimesheetRepository) Decide(ctx context.Context, id uint64, decision Decision) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Timesheet{}).
		Where("id = ? AND status = ?", id, models.TimesheetStatusPending).
		Updates(map[string]interface{}{
			"status":           decision.Status,
			"approved_by":      decision.ApprovedBy,
			"approved_at":      decision.ApprovedAt,
			"rejection_reason": decision.RejectionReason,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
