package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-admin-api/internal/common"
	"github.com/yukikurage/timesheet-admin-api/internal/constants"
	"github.com/yukikurage/timesheet-admin-api/internal/dto"
	apierrors "github.com/yukikurage/timesheet-admin-api/internal/errors"
	"github.com/yukikurage/timesheet-admin-api/internal/middleware"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/services"
	"github.com/yukikurage/timesheet-admin-api/internal/utils"
)

type PeopleHandler struct {
	peopleService *services.PeopleService
}

func NewPeopleHandler(peopleService *services.PeopleService) *PeopleHandler {
	return &PeopleHandler{
		peopleService: peopleService,
	}
}

type createUserRequest struct {
	Username  string      `json:"username" binding:"required,max=100"`
	Password  string      `json:"password" binding:"required"`
	FullName  *string     `json:"full_name" binding:"omitempty,max=200"`
	Email     *string     `json:"email" binding:"omitempty,email"`
	Role      models.Role `json:"role" binding:"omitempty,oneof=user manager admin"`
	ManagerID *uint64     `json:"manager_id"`
}

type updateUserRequest struct {
	Username  string      `json:"username" binding:"required,max=100"`
	Password  string      `json:"password"`
	FullName  *string     `json:"full_name" binding:"omitempty,max=200"`
	Email     *string     `json:"email" binding:"omitempty,email"`
	Role      models.Role `json:"role" binding:"omitempty,oneof=user manager admin"`
	ManagerID *uint64     `json:"manager_id"`
}

// ListPeople returns managers and employees, optionally filtered by q
func (h *PeopleHandler) ListPeople(c *gin.Context) {
	dir, err := h.peopleService.Directory(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondPeopleError(c, err, 0)
		return
	}

	c.JSON(http.StatusOK, dto.ToDirectoryDTO(dir))
}

// CreateUser adds a user
func (h *PeopleHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, common.FormatBindingError(err))
		return
	}

	created, err := h.peopleService.CreateUser(c.Request.Context(), services.UserInput{
		Username:  req.Username,
		Password:  req.Password,
		FullName:  req.FullName,
		Email:     req.Email,
		Role:      req.Role,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		respondPeopleError(c, err, 0)
		return
	}

	log.Printf("[%s] user %d (%s) created", middleware.GetRequestID(c), created.User.ID, created.User.Username)
	c.JSON(http.StatusCreated, dto.ToEnrichedUserDTO(*created))
}

// UpdateUser replaces a user's editable fields
func (h *PeopleHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, common.FormatBindingError(err))
		return
	}

	updated, err := h.peopleService.UpdateUser(c.Request.Context(), id, services.UserInput{
		Username:  req.Username,
		Password:  req.Password,
		FullName:  req.FullName,
		Email:     req.Email,
		Role:      req.Role,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		respondPeopleError(c, err, id)
		return
	}

	c.JSON(http.StatusOK, dto.ToEnrichedUserDTO(*updated))
}

// GetTeam returns a manager's direct reports
func (h *PeopleHandler) GetTeam(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	manager, team, err := h.peopleService.Team(c.Request.Context(), id)
	if err != nil {
		respondPeopleError(c, err, id)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*manager, team))
}

// GetProjects returns the projects a user is assigned to
func (h *PeopleHandler) GetProjects(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	projects, err := h.peopleService.Projects(c.Request.Context(), id)
	if err != nil {
		respondPeopleError(c, err, id)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
	})
}

// GetTimesheets returns a page of a user's timesheets, newest first
func (h *PeopleHandler) GetTimesheets(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	rows, total, err := h.peopleService.TimesheetHistory(c.Request.Context(), id, params)
	if err != nil {
		respondPeopleError(c, err, id)
		return
	}

	c.JSON(http.StatusOK, dto.TimesheetHistoryResponse{
		Timesheets: dto.ToTimesheetDTOs(rows),
		Pagination: params.Response(total),
	})
}

func respondPeopleError(c *gin.Context, err error, id uint64) {
	switch {
	case errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidManager),
		errors.Is(err, services.ErrSelfManager),
		errors.Is(err, services.ErrManagerCycle):
		apierrors.RespondWithError(c, http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeInvalidManager, err.Error()))
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.RespondWithError(c, http.StatusConflict, apierrors.NewAPIError(apierrors.ErrCodeAlreadyExists, err.Error()))
	case errors.Is(err, services.ErrManagerHasTeam):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.RowError(c, http.StatusNotFound, apierrors.ErrCodeNotFound, err.Error(), id)
	case errors.Is(err, services.ErrNotManager):
		apierrors.RowError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidInput, err.Error(), id)
	case errors.Is(err, services.ErrFetchFailed):
		log.Printf("[%s] people fetch failed: %v", middleware.GetRequestID(c), err)
		apierrors.FetchFailed(c, "Failed to load people")
	default:
		log.Printf("[%s] people action failed: %v", middleware.GetRequestID(c), err)
		apierrors.InternalError(c, "")
	}
}
