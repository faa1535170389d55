package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/timesheet-admin-api/internal/dto"
	apierrors "github.com/yukikurage/timesheet-admin-api/internal/errors"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
)

// ApprovalHandlerTestSuite defines the test suite for ApprovalHandler
type ApprovalHandlerTestSuite struct {
	suite.Suite
	env *testEnv

	admin        *models.User
	manager      *models.User
	otherManager *models.User
	alice        *models.User
	zed          *models.User
	website      *models.Project
	mobile       *models.Project
}

// SetupTest runs before each test with the clock in April 2024
func (suite *ApprovalHandlerTestSuite) SetupTest() {
	t := suite.T()
	suite.env = setupTestEnv(t, time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC))

	suite.admin = suite.env.createUser(t, "admin", models.RoleAdmin, nil)
	suite.manager = suite.env.createUser(t, "msmith", models.RoleManager, nil)
	suite.otherManager = suite.env.createUser(t, "other", models.RoleManager, nil)
	suite.alice = suite.env.createUser(t, "alice", models.RoleUser, &suite.manager.ID)
	suite.zed = suite.env.createUser(t, "zed", models.RoleUser, &suite.otherManager.ID)
	suite.website = suite.env.createProject(t, "Website Redesign")
	suite.mobile = suite.env.createProject(t, "Mobile App")
}

func march(day int) time.Time {
	return time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC)
}

func (suite *ApprovalHandlerTestSuite) TestGetBoard_ManagerSeesOnlyTeam() {
	t := suite.T()
	mine := suite.env.createTimesheet(t, suite.alice.ID, suite.website.ID, models.TimesheetStatusPending, march(15))
	suite.env.createTimesheet(t, suite.zed.ID, suite.website.ID, models.TimesheetStatusPending, march(15))

	w := suite.env.do(t, http.MethodGet, "/api/approvals?month=2024-03", nil, suite.manager)
	suite.Require().Equal(http.StatusOK, w.Code)

	var board dto.BoardDTO
	decode(t, w, &board)
	suite.Equal("2024-03", board.Month)
	suite.Equal("2024-02", board.PrevMonth)
	suite.True(board.CanAdvance)
	suite.Require().NotNil(board.NextMonth)
	suite.Equal("2024-04", *board.NextMonth)

	suite.Require().Len(board.Pending, 1)
	suite.Equal(mine.ID, board.Pending[0].ID)
	suite.Equal("Website Redesign", board.Pending[0].Project.Name)
	suite.InDelta(36.0, board.Pending[0].TotalHours, 0.001)
	suite.Equal(202411, board.Pending[0].WeekKey)
	suite.Empty(board.Approved)
}

func (suite *ApprovalHandlerTestSuite) TestGetBoard_CurrentMonthCannotAdvance() {
	w := suite.env.do(suite.T(), http.MethodGet, "/api/approvals", nil, suite.admin)
	suite.Require().Equal(http.StatusOK, w.Code)

	var board dto.BoardDTO
	decode(suite.T(), w, &board)
	suite.Equal("2024-04", board.Month)
	suite.False(board.CanAdvance)
	suite.Nil(board.NextMonth)
}

func (suite *ApprovalHandlerTestSuite) TestGetBoard_FiltersAndSortsApproved() {
	t := suite.T()
	a := suite.env.createTimesheet(t, suite.alice.ID, suite.website.ID, models.TimesheetStatusApproved, march(4))
	b := suite.env.createTimesheet(t, suite.alice.ID, suite.mobile.ID, models.TimesheetStatusApproved, march(11))
	z := suite.env.createTimesheet(t, suite.zed.ID, suite.website.ID, models.TimesheetStatusApproved, march(18))
	suite.env.createTimesheet(t, suite.zed.ID, suite.website.ID, models.TimesheetStatusRejected, march(19))

	w := suite.env.do(t, http.MethodGet, "/api/approvals?month=2024-03&sort=project&dir=asc", nil, suite.admin)
	suite.Require().Equal(http.StatusOK, w.Code)
	var board dto.BoardDTO
	decode(t, w, &board)
	suite.Require().Len(board.Approved, 3)
	suite.Equal(b.ID, board.Approved[0].ID)
	// Ties keep the fetch order, newest submission first
	suite.Equal(z.ID, board.Approved[1].ID)
	suite.Equal(a.ID, board.Approved[2].ID)

	url := fmt.Sprintf("/api/approvals?month=2024-03&user_ids=%d&project_ids=%d", suite.alice.ID, suite.website.ID)
	w = suite.env.do(t, http.MethodGet, url, nil, suite.admin)
	suite.Require().Equal(http.StatusOK, w.Code)
	decode(t, w, &board)
	suite.Require().Len(board.Approved, 1)
	suite.Equal(a.ID, board.Approved[0].ID)
}

func (suite *ApprovalHandlerTestSuite) TestGetBoard_Access() {
	t := suite.T()

	w := suite.env.do(t, http.MethodGet, "/api/approvals", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.env.do(t, http.MethodGet, "/api/approvals", nil, suite.alice)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.env.do(t, http.MethodGet, "/api/approvals?month=March", nil, suite.admin)
	suite.Equal(http.StatusBadRequest, w.Code)
	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	suite.Equal(apierrors.ErrCodeInvalidMonth, apiErr.Code)
}

func (suite *ApprovalHandlerTestSuite) TestApprove() {
	t := suite.T()
	ts := suite.env.createTimesheet(t, suite.alice.ID, suite.website.ID, models.TimesheetStatusPending, march(15))

	url := fmt.Sprintf("/api/approvals/%d/approve", ts.ID)
	w := suite.env.do(t, http.MethodPost, url, nil, suite.manager)
	suite.Require().Equal(http.StatusOK, w.Code)

	var updated dto.TimesheetDTO
	decode(t, w, &updated)
	suite.Equal(models.TimesheetStatusApproved, updated.Status)
	suite.Require().NotNil(updated.Approver)
	suite.Equal("msmith", updated.Approver.Username)

	w = suite.env.do(t, http.MethodPost, url, nil, suite.manager)
	suite.Require().Equal(http.StatusConflict, w.Code)
	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	suite.Equal(apierrors.ErrCodeInvalidTransition, apiErr.Code)
	suite.Equal(map[string]interface{}{"id": float64(ts.ID)}, apiErr.Details)
}

func (suite *ApprovalHandlerTestSuite) TestApprove_OtherTeamForbidden() {
	t := suite.T()
	ts := suite.env.createTimesheet(t, suite.zed.ID, suite.website.ID, models.TimesheetStatusPending, march(15))

	w := suite.env.do(t, http.MethodPost, fmt.Sprintf("/api/approvals/%d/approve", ts.ID), nil, suite.manager)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.env.do(t, http.MethodPost, "/api/approvals/abc/approve", nil, suite.manager)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ApprovalHandlerTestSuite) TestReject_BlankReasonIssuesNoUpdate() {
	t := suite.T()
	ts := suite.env.createTimesheet(t, suite.alice.ID, suite.website.ID, models.TimesheetStatusPending, march(15))
	url := fmt.Sprintf("/api/approvals/%d/reject", ts.ID)

	w := suite.env.do(t, http.MethodPost, url, map[string]string{"reason": "   "}, suite.manager)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	suite.Equal(apierrors.ErrCodeReasonRequired, apiErr.Code)

	stored, err := suite.env.timesheetRepo.FindByID(context.Background(), ts.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TimesheetStatusPending, stored.Status)
	suite.Nil(stored.ApprovedBy)

	w = suite.env.do(t, http.MethodPost, url, map[string]string{"reason": "Hours look wrong"}, suite.manager)
	suite.Require().Equal(http.StatusOK, w.Code)
	var updated dto.TimesheetDTO
	decode(t, w, &updated)
	suite.Equal(models.TimesheetStatusRejected, updated.Status)
	suite.Require().NotNil(updated.RejectionReason)
	suite.Equal("Hours look wrong", *updated.RejectionReason)
}

func (suite *ApprovalHandlerTestSuite) TestBulkApprove() {
	t := suite.T()
	first := suite.env.createTimesheet(t, suite.alice.ID, suite.website.ID, models.TimesheetStatusPending, march(4))
	second := suite.env.createTimesheet(t, suite.alice.ID, suite.mobile.ID, models.TimesheetStatusPending, march(11))
	theirs := suite.env.createTimesheet(t, suite.zed.ID, suite.website.ID, models.TimesheetStatusPending, march(12))

	body := map[string]interface{}{"month": "2024-03", "ids": []uint64{first.ID, theirs.ID}}
	w := suite.env.do(t, http.MethodPost, "/api/approvals/bulk-approve", body, suite.manager)
	suite.Require().Equal(http.StatusOK, w.Code)

	var resp dto.BulkApproveResponse
	decode(t, w, &resp)
	suite.Len(resp.Errors, 1)
	suite.Contains(resp.Errors, fmt.Sprint(theirs.ID))
	suite.Require().Len(resp.Board.Pending, 1)
	suite.Equal(second.ID, resp.Board.Pending[0].ID)
	suite.Require().Len(resp.Board.Approved, 1)
	suite.Equal(first.ID, resp.Board.Approved[0].ID)

	w = suite.env.do(t, http.MethodPost, "/api/approvals/bulk-approve", map[string]interface{}{"month": "2024-03"}, suite.manager)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ApprovalHandlerTestSuite) TestExport() {
	t := suite.T()
	a := suite.env.createTimesheet(t, suite.alice.ID, suite.website.ID, models.TimesheetStatusApproved, march(4))
	suite.env.createTimesheet(t, suite.alice.ID, suite.mobile.ID, models.TimesheetStatusApproved, march(11))

	w := suite.env.do(t, http.MethodGet, "/api/approvals/export?month=2024-03", nil, suite.manager)
	suite.Equal(http.StatusNoContent, w.Code)
	suite.Empty(w.Body.Bytes())

	w = suite.env.do(t, http.MethodGet, "/api/approvals/export?month=2024-03&all=true", nil, suite.manager)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(`attachment; filename="timesheets-2024-03.csv"`, w.Header().Get("Content-Disposition"))
	lines := strings.Split(w.Body.String(), "\n")
	suite.Len(lines, 3)
	suite.Equal("Employee,Project,Week,Year,Total Hours,Status,Approved By,Approved Date", lines[0])

	url := fmt.Sprintf("/api/approvals/export?month=2024-03&ids=%d&format=xlsx", a.ID)
	w = suite.env.do(t, http.MethodGet, url, nil, suite.manager)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(contentTypeXLSX, w.Header().Get("Content-Type"))
	suite.Equal(`attachment; filename="timesheets-2024-03.xlsx"`, w.Header().Get("Content-Disposition"))
	suite.NotEmpty(w.Body.Bytes())

	w = suite.env.do(t, http.MethodGet, "/api/approvals/export?month=2024-03&all=true&format=pdf", nil, suite.manager)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestApprovalHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalHandlerTestSuite))
}
