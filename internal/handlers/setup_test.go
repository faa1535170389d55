package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timesheet-admin-api/internal/constants"
	"github.com/yukikurage/timesheet-admin-api/internal/database"
	"github.com/yukikurage/timesheet-admin-api/internal/middleware"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/repository"
	"github.com/yukikurage/timesheet-admin-api/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "supersecret"

type testEnv struct {
	db            *gorm.DB
	router        *gin.Engine
	tokens        *services.TokenService
	userRepo      repository.UserRepository
	projectRepo   repository.ProjectRepository
	timesheetRepo repository.TimesheetRepository
	approvals     *ApprovalHandler
}

// setupTestEnv builds the full router on an in-memory database. now is the
// clock seen by the approval handler and service.
func setupTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))
	database.SetDB(db)

	env := &testEnv{
		db:            db,
		tokens:        services.NewTokenService("test-secret", time.Hour),
		userRepo:      repository.NewUserRepository(db),
		projectRepo:   repository.NewProjectRepository(db),
		timesheetRepo: repository.NewTimesheetRepository(db),
	}

	clock := func() time.Time { return now }
	approvalService := services.NewApprovalService(env.timesheetRepo, env.userRepo, nil)
	approvalService.SetClock(clock)
	env.approvals = NewApprovalHandler(approvalService, time.UTC)
	env.approvals.now = clock

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, Routes{
		Auth:      NewAuthHandler(services.NewAuthService(env.userRepo), env.tokens),
		Approvals: env.approvals,
		People:    NewPeopleHandler(services.NewPeopleService(env.userRepo, env.projectRepo, env.timesheetRepo)),
		Tokens:    env.tokens,
		Users:     env.userRepo,
	})
	env.router = r

	return env
}

func (e *testEnv) createUser(t *testing.T, username string, role models.Role, managerID *uint64) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
		ManagerID:    managerID,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return user
}

func (e *testEnv) createProject(t *testing.T, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, AllocatedHours: 120}
	require.NoError(t, e.projectRepo.Create(context.Background(), project))
	return project
}

// createTimesheet stores a 36 hour week (8+8+8+8+4, weekend ignored)
func (e *testEnv) createTimesheet(t *testing.T, userID, projectID uint64, status models.TimesheetStatus, submittedAt time.Time) *models.Timesheet {
	t.Helper()
	ts := &models.Timesheet{
		UserID:         userID,
		ProjectID:      projectID,
		Year:           2024,
		Week:           11,
		MondayHours:    8,
		TuesdayHours:   8,
		WednesdayHours: 8,
		ThursdayHours:  8,
		FridayHours:    4,
		SaturdayHours:  5,
		Status:         status,
		SubmittedAt:    submittedAt,
	}
	if status != models.TimesheetStatusPending {
		approvedAt := submittedAt.Add(24 * time.Hour)
		ts.ApprovedAt = &approvedAt
	}
	require.NoError(t, e.timesheetRepo.Create(context.Background(), ts))
	return ts
}

// do sends a request authenticated as user (nil for anonymous)
func (e *testEnv) do(t *testing.T, method, url string, body interface{}, user *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, _, err := e.tokens.Issue(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
