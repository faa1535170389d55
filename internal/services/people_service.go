package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/timesheet-admin-api/internal/constants"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/repository"
	"github.com/yukikurage/timesheet-admin-api/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password too short")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidManager   = errors.New("manager must be an existing user with the manager role")
	ErrSelfManager      = errors.New("a user cannot be their own manager")
	ErrManagerCycle     = errors.New("manager assignment would create a reporting cycle")
	ErrManagerHasTeam   = errors.New("user still manages a team and must keep the manager role")
	ErrNotManager       = errors.New("user is not a manager")
	ErrFailedToSaveUser = errors.New("failed to save user")
)

// EnrichedUser is a user joined with its manager, projects and team
type EnrichedUser struct {
	User     models.User
	Manager  *models.User
	Projects []models.Project
	Team     []models.User
}

// Directory is the people listing split by role. Admins are not listed.
type Directory struct {
	Managers  []EnrichedUser
	Employees []EnrichedUser
}

// UserInput holds the editable fields of a user
type UserInput struct {
	Username  string
	Password  string
	FullName  *string
	Email     *string
	Role      models.Role
	ManagerID *uint64
}

// PeopleService handles user administration
type PeopleService struct {
	userRepo      repository.UserRepository
	projectRepo   repository.ProjectRepository
	timesheetRepo repository.TimesheetRepository
}

// NewPeopleService creates a new PeopleService
func NewPeopleService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, timesheetRepo repository.TimesheetRepository) *PeopleService {
	return &PeopleService{
		userRepo:      userRepo,
		projectRepo:   projectRepo,
		timesheetRepo: timesheetRepo,
	}
}

// Directory loads every user and project assignment concurrently and joins them,
// keeping the users that match query
func (s *PeopleService) Directory(ctx context.Context, query string) (*Directory, error) {
	var (
		users       []models.User
		assignments []models.ProjectAssignment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.userRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("%w: users: %v", ErrFetchFailed, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = s.projectRepo.ListAssignments(gctx)
		if err != nil {
			return fmt.Errorf("%w: project assignments: %v", ErrFetchFailed, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dir := BuildDirectory(users, assignments)
	return dir.Search(query), nil
}

// BuildDirectory joins users with their assignments, managers and teams
func BuildDirectory(users []models.User, assignments []models.ProjectAssignment) *Directory {
	byID := make(map[uint64]models.User, len(users))
	teams := make(map[uint64][]models.User)
	for _, u := range users {
		byID[u.ID] = u
		if u.ManagerID != nil {
			teams[*u.ManagerID] = append(teams[*u.ManagerID], u)
		}
	}

	projects := make(map[uint64][]models.Project)
	for _, a := range assignments {
		projects[a.UserID] = append(projects[a.UserID], a.Project)
	}

	dir := &Directory{
		Managers:  make([]EnrichedUser, 0),
		Employees: make([]EnrichedUser, 0),
	}
	for _, u := range users {
		enriched := EnrichedUser{
			User:     u,
			Projects: nonNilProjects(projects[u.ID]),
			Team:     nonNilUsers(teams[u.ID]),
		}
		if u.ManagerID != nil {
			if m, ok := byID[*u.ManagerID]; ok {
				manager := m
				enriched.Manager = &manager
			}
		}

		switch u.Role {
		case models.RoleManager:
			dir.Managers = append(dir.Managers, enriched)
		case models.RoleUser:
			dir.Employees = append(dir.Employees, enriched)
		}
	}
	return dir
}

// Search keeps the users whose username, full name or email contains query,
// ignoring case. A blank query keeps everyone.
func (d *Directory) Search(query string) *Directory {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return d
	}
	return &Directory{
		Managers:  searchUsers(d.Managers, q),
		Employees: searchUsers(d.Employees, q),
	}
}

func searchUsers(users []EnrichedUser, q string) []EnrichedUser {
	out := make([]EnrichedUser, 0, len(users))
	for _, e := range users {
		if matchesUser(e.User, q) {
			out = append(out, e)
		}
	}
	return out
}

func matchesUser(u models.User, q string) bool {
	if strings.Contains(strings.ToLower(u.Username), q) {
		return true
	}
	if u.FullName != nil && strings.Contains(strings.ToLower(*u.FullName), q) {
		return true
	}
	return u.Email != nil && strings.Contains(strings.ToLower(*u.Email), q)
}

// CreateUser validates input and stores a new user
func (s *PeopleService) CreateUser(ctx context.Context, input UserInput) (*EnrichedUser, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.ensureUsernameFree(ctx, username, 0); err != nil {
		return nil, err
	}

	manager, err := s.resolveManager(ctx, 0, input.ManagerID)
	if err != nil {
		return nil, err
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		FullName:     normalizeOptional(input.FullName),
		Email:        normalizeOptional(input.Email),
		PasswordHash: hashed,
		Role:         role,
		ManagerID:    input.ManagerID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToSaveUser, err)
	}

	return &EnrichedUser{
		User:     *user,
		Manager:  manager,
		Projects: []models.Project{},
		Team:     []models.User{},
	}, nil
}

// UpdateUser replaces the editable fields of a user. A blank password keeps
// the stored credential.
func (s *PeopleService) UpdateUser(ctx context.Context, id uint64, input UserInput) (*EnrichedUser, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if input.Password != "" && len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = user.Role
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if username != user.Username {
		if err := s.ensureUsernameFree(ctx, username, user.ID); err != nil {
			return nil, err
		}
	}

	team, err := s.userRepo.ListByManager(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: team: %v", ErrFetchFailed, err)
	}
	if role != models.RoleManager && len(team) > 0 {
		return nil, ErrManagerHasTeam
	}

	manager, err := s.resolveManager(ctx, user.ID, input.ManagerID)
	if err != nil {
		return nil, err
	}

	if input.Password != "" {
		hashed, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	user.Username = username
	user.FullName = normalizeOptional(input.FullName)
	user.Email = normalizeOptional(input.Email)
	user.Role = role
	user.ManagerID = input.ManagerID
	user.Manager = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToSaveUser, err)
	}

	projects, err := s.projectRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: projects: %v", ErrFetchFailed, err)
	}

	return &EnrichedUser{
		User:     *user,
		Manager:  manager,
		Projects: nonNilProjects(projects),
		Team:     nonNilUsers(team),
	}, nil
}

// Team returns a manager and its direct reports
func (s *PeopleService) Team(ctx context.Context, managerID uint64) (*models.User, []models.User, error) {
	manager, err := s.findUser(ctx, managerID)
	if err != nil {
		return nil, nil, err
	}
	if !manager.IsManager() {
		return nil, nil, ErrNotManager
	}

	team, err := s.userRepo.ListByManager(ctx, manager.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: team: %v", ErrFetchFailed, err)
	}
	return manager, nonNilUsers(team), nil
}

// Projects returns the projects a user is assigned to
func (s *PeopleService) Projects(ctx context.Context, userID uint64) ([]models.Project, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: projects: %v", ErrFetchFailed, err)
	}
	return nonNilProjects(projects), nil
}

// TimesheetHistory returns one page of a user's timesheets, newest first
func (s *PeopleService) TimesheetHistory(ctx context.Context, userID uint64, page utils.PaginationParams) ([]models.Timesheet, int64, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, 0, err
	}

	rows, total, err := s.timesheetRepo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: timesheets: %v", ErrFetchFailed, err)
	}
	if rows == nil {
		rows = []models.Timesheet{}
	}
	return rows, total, nil
}

func (s *PeopleService) findUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: user: %v", ErrFetchFailed, err)
	}
	return user, nil
}

func (s *PeopleService) ensureUsernameFree(ctx context.Context, username string, selfID uint64) error {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		if existing.ID != selfID {
			return ErrUsernameTaken
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

// resolveManager checks managerID for user selfID (0 for a new user) and
// returns the manager record. The chain above the manager must not reach selfID.
func (s *PeopleService) resolveManager(ctx context.Context, selfID uint64, managerID *uint64) (*models.User, error) {
	if managerID == nil {
		return nil, nil
	}
	if selfID != 0 && *managerID == selfID {
		return nil, ErrSelfManager
	}

	manager, err := s.userRepo.FindByID(ctx, *managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidManager
		}
		return nil, fmt.Errorf("failed to find manager: %w", err)
	}
	if !manager.IsManager() {
		return nil, ErrInvalidManager
	}

	if selfID != 0 {
		seen := map[uint64]struct{}{manager.ID: {}}
		next := manager.ManagerID
		for next != nil {
			if *next == selfID {
				return nil, ErrManagerCycle
			}
			if _, ok := seen[*next]; ok {
				break
			}
			seen[*next] = struct{}{}

			above, err := s.userRepo.FindByID(ctx, *next)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					break
				}
				return nil, fmt.Errorf("failed to walk manager chain: %w", err)
			}
			next = above.ManagerID
		}
	}

	return manager, nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonNilProjects(p []models.Project) []models.Project {
	if p == nil {
		return []models.Project{}
	}
	return p
}

func nonNilUsers(u []models.User) []models.User {
	if u == nil {
		return []models.User{}
	}
	return u
}
