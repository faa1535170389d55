package repository

import (
	"context"
	"time"

	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Assign links a user to a project; assigning twice is a no-op
func (r *GormProjectRepository) Assign(ctx context.Context, projectID, userID uint64) error {
	assignment := models.ProjectAssignment{
		ProjectID:  projectID,
		UserID:     userID,
		AssignedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignment).Error
}

// ListAssignments retrieves every project-user link with its project preloaded
func (r *GormProjectRepository) ListAssignments(ctx context.Context) ([]models.ProjectAssignment, error) {
	var assignments []models.ProjectAssignment
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Order("project_users.assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListByUser retrieves the projects a user is assigned to
func (r *GormProjectRepository) ListByUser(ctx context.Context, userID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Joins("JOIN project_users ON project_users.project_id = projects.id").
		Where("project_users.user_id = ?", userID).
		Order("projects.name ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
