package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-admin-api/internal/common"
	"github.com/yukikurage/timesheet-admin-api/internal/dto"
	apierrors "github.com/yukikurage/timesheet-admin-api/internal/errors"
	"github.com/yukikurage/timesheet-admin-api/internal/middleware"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/services"
	"github.com/yukikurage/timesheet-admin-api/internal/timesheet"
	"github.com/yukikurage/timesheet-admin-api/internal/utils"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ApprovalHandler struct {
	approvalService *services.ApprovalService
	loc             *time.Location
	now             func() time.Time
}

func NewApprovalHandler(approvalService *services.ApprovalService, loc *time.Location) *ApprovalHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ApprovalHandler{
		approvalService: approvalService,
		loc:             loc,
		now:             time.Now,
	}
}

// boardView is the month, filter and sort requested for the approved bucket
type boardView struct {
	month  timesheet.Month
	filter timesheet.Filter
	sort   timesheet.SortState
}

func (h *ApprovalHandler) parseMonth(raw string) (timesheet.Month, error) {
	if strings.TrimSpace(raw) == "" {
		return timesheet.MonthOf(h.now().In(h.loc)), nil
	}
	return timesheet.ParseMonth(raw, h.loc)
}

func (h *ApprovalHandler) parseView(c *gin.Context) (boardView, bool) {
	month, err := h.parseMonth(c.Query("month"))
	if err != nil {
		apierrors.RespondWithError(c, http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeInvalidMonth, err.Error()))
		return boardView{}, false
	}

	userIDs, err := utils.ParseIDList(c.Query("user_ids"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user_ids: "+err.Error())
		return boardView{}, false
	}
	projectIDs, err := utils.ParseIDList(c.Query("project_ids"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project_ids: "+err.Error())
		return boardView{}, false
	}

	return boardView{
		month:  month,
		filter: timesheet.Filter{UserIDs: userIDs, ProjectIDs: projectIDs},
		sort: timesheet.SortState{
			Field:     timesheet.SortField(c.Query("sort")),
			Direction: timesheet.ParseDirection(c.Query("dir")),
		},
	}, true
}

func (v boardView) approvedRows(board timesheet.Board) []models.Timesheet {
	return v.sort.Sort(v.filter.Apply(board.Approved))
}

func actorOrAbort(c *gin.Context) (*models.User, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return actor, true
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// GetBoard returns the pending and approved timesheets of a month
func (h *ApprovalHandler) GetBoard(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	view, ok := h.parseView(c)
	if !ok {
		return
	}

	board, err := h.approvalService.LoadBoard(c.Request.Context(), actor, view.month)
	if err != nil {
		respondApprovalError(c, err, 0)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(view.month, h.now(), board.Pending, view.approvedRows(board)))
}

// Approve approves one pending timesheet
func (h *ApprovalHandler) Approve(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	updated, err := h.approvalService.Approve(c.Request.Context(), actor, id)
	if err != nil {
		respondApprovalError(c, err, id)
		return
	}

	log.Printf("[%s] timesheet %d approved by user %d", middleware.GetRequestID(c), id, actor.ID)
	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*updated))
}

// Reject rejects one pending timesheet with a reason
func (h *ApprovalHandler) Reject(c *gin.Context) {
	type RejectRequest struct {
		Reason string `json:"reason"`
	}

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, common.FormatBindingError(err))
		return
	}

	updated, err := h.approvalService.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		respondApprovalError(c, err, id)
		return
	}

	log.Printf("[%s] timesheet %d rejected by user %d", middleware.GetRequestID(c), id, actor.ID)
	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*updated))
}

// BulkApprove approves several pending timesheets of a month
func (h *ApprovalHandler) BulkApprove(c *gin.Context) {
	type BulkApproveRequest struct {
		Month string   `json:"month"`
		IDs   []uint64 `json:"ids" binding:"required,min=1"`
	}

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, common.FormatBindingError(err))
		return
	}

	month, err := h.parseMonth(req.Month)
	if err != nil {
		apierrors.RespondWithError(c, http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeInvalidMonth, err.Error()))
		return
	}

	result, err := h.approvalService.BulkApprove(c.Request.Context(), actor, month, req.IDs)
	if err != nil {
		respondApprovalError(c, err, 0)
		return
	}

	rowErrors := make(map[string]string, len(result.Errors))
	for id, rowErr := range result.Errors {
		rowErrors[strconv.FormatUint(id, 10)] = rowErr.Error()
	}
	log.Printf("[%s] bulk approval by user %d: %d requested, %d failed", middleware.GetRequestID(c), actor.ID, len(req.IDs), len(rowErrors))

	c.JSON(http.StatusOK, dto.BulkApproveResponse{
		Board:  dto.ToBoardDTO(month, h.now(), result.Board.Pending, result.Board.Approved),
		Errors: rowErrors,
	})
}

// Export downloads the selected approved timesheets as CSV or XLSX.
// An empty selection produces 204 and no file.
func (h *ApprovalHandler) Export(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	view, ok := h.parseView(c)
	if !ok {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		apierrors.RespondWithError(c, http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeUnsupportedType, "format must be csv or xlsx"))
		return
	}

	ids, err := utils.ParseIDList(c.Query("ids"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid ids: "+err.Error())
		return
	}
	all := c.Query("all") == "true"

	board, err := h.approvalService.LoadBoard(c.Request.Context(), actor, view.month)
	if err != nil {
		respondApprovalError(c, err, 0)
		return
	}

	rows := view.approvedRows(board)
	if !all {
		rows = timesheet.SelectIDs(rows, ids)
	}
	if len(rows) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		body        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		body, err = timesheet.ExportXLSX(rows)
		if err != nil {
			log.Printf("[%s] xlsx export failed: %v", middleware.GetRequestID(c), err)
			apierrors.InternalError(c, "Failed to build export")
			return
		}
		contentType = contentTypeXLSX
	default:
		body = timesheet.ExportCSV(rows)
		contentType = contentTypeCSV
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", timesheet.ExportFilename(view.month, format)))
	c.Data(http.StatusOK, contentType, body)
}

func respondApprovalError(c *gin.Context, err error, id uint64) {
	switch {
	case errors.Is(err, services.ErrIdentityRequired):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrApprovalsForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrFetchFailed):
		log.Printf("[%s] approvals fetch failed: %v", middleware.GetRequestID(c), err)
		apierrors.FetchFailed(c, "Failed to load timesheets")
	case errors.Is(err, services.ErrTimesheetNotFound):
		apierrors.RowError(c, http.StatusNotFound, apierrors.ErrCodeNotFound, err.Error(), id)
	case errors.Is(err, services.ErrNotTeamTimesheet):
		apierrors.RowError(c, http.StatusForbidden, apierrors.ErrCodeNotTeamMember, err.Error(), id)
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.RowError(c, http.StatusConflict, apierrors.ErrCodeInvalidTransition, err.Error(), id)
	case errors.Is(err, services.ErrTimesheetBusy):
		apierrors.RowError(c, http.StatusConflict, apierrors.ErrCodeBusy, err.Error(), id)
	case errors.Is(err, services.ErrRejectionReasonRequired),
		errors.Is(err, services.ErrRejectionReasonTooLong):
		apierrors.RowError(c, http.StatusBadRequest, apierrors.ErrCodeReasonRequired, err.Error(), id)
	default:
		log.Printf("[%s] timesheet action failed: %v", middleware.GetRequestID(c), err)
		if id != 0 {
			apierrors.RowError(c, http.StatusInternalServerError, apierrors.ErrCodeActionFailed, "Action failed", id)
			return
		}
		apierrors.InternalError(c, "")
	}
}
