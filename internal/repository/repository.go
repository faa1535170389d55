package repository

import (
	"context"
	"time"

	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/utils"
)

// TimesheetRepository defines the interface for timesheet data access
type TimesheetRepository interface {
	// Create creates a new timesheet
	Create(ctx context.Context, timesheet *models.Timesheet) error

	// FindByID finds a timesheet by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Timesheet, error)

	// List retrieves timesheets matching the filter, newest submission first,
	// with owner, project and approver preloaded
	List(ctx context.Context, filter TimesheetFilter) ([]models.Timesheet, error)

	// ListByUser retrieves one page of a user's timesheets, newest submission first
	ListByUser(ctx context.Context, userID uint64, page utils.PaginationParams) ([]models.Timesheet, int64, error)

	// Decide applies a decision to a pending timesheet. It returns the number
	// of rows changed: zero means the timesheet is missing or no longer pending.
	Decide(ctx context.Context, id uint64, decision Decision) (int64, error)
}

// TimesheetFilter holds filtering options for listing timesheets
type TimesheetFilter struct {
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time
	// OwnerIDs restricts the owners when non-nil. An empty non-nil slice matches nothing.
	OwnerIDs []uint64
	Status   *models.TimesheetStatus
}

// Decision holds the fields written when a timesheet is approved or rejected
type Decision struct {
	Status          models.TimesheetStatus
	ApprovedBy      uint64
	ApprovedAt      time.Time
	RejectionReason *string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// Update saves every column of an existing user
	Update(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// List retrieves every user ordered by username
	List(ctx context.Context) ([]models.User, error)

	// ListByManager retrieves the users reporting to a manager
	ListByManager(ctx context.Context, managerID uint64) ([]models.User, error)

	// TeamMemberIDs returns the ids of the users reporting to a manager
	TeamMemberIDs(ctx context.Context, managerID uint64) ([]uint64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// Assign links a user to a project; assigning twice is a no-op
	Assign(ctx context.Context, projectID, userID uint64) error

	// ListAssignments retrieves every project-user link with its project preloaded
	ListAssignments(ctx context.Context) ([]models.ProjectAssignment, error)

	// ListByUser retrieves the projects a user is assigned to
	ListByUser(ctx context.Context, userID uint64) ([]models.Project, error)
}
