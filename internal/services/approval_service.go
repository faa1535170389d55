package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/timesheet-admin-api/internal/constants"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/notify"
	"github.com/yukikurage/timesheet-admin-api/internal/repository"
	"github.com/yukikurage/timesheet-admin-api/internal/timesheet"
	"github.com/yukikurage/timesheet-admin-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrApprovalsForbidden      = errors.New("only managers and admins can review timesheets")
	ErrTimesheetNotFound       = errors.New("timesheet not found")
	ErrTimesheetBusy           = errors.New("timesheet is already being processed")
	ErrInvalidTransition       = errors.New("only pending timesheets can be approved or rejected")
	ErrNotTeamTimesheet        = errors.New("timesheet does not belong to your team")
	ErrNotOnBoard              = errors.New("timesheet is not pending in the selected month")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	ErrRejectionReasonTooLong  = errors.New("rejection reason is too long")
)

// ApprovalService handles the timesheet review workflow
type ApprovalService struct {
	timesheetRepo repository.TimesheetRepository
	userRepo      repository.UserRepository
	notifier      notify.Notifier
	now           func() time.Time

	mu         sync.Mutex
	processing map[uint64]struct{}
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(timesheetRepo repository.TimesheetRepository, userRepo repository.UserRepository, notifier notify.Notifier) *ApprovalService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ApprovalService{
		timesheetRepo: timesheetRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		now:           time.Now,
		processing:    make(map[uint64]struct{}),
	}
}

// SetClock overrides the time source used for decision timestamps
func (s *ApprovalService) SetClock(now func() time.Time) {
	s.now = now
}

// BulkApproveResult is the board after a bulk approval plus the per-row failures
type BulkApproveResult struct {
	Board  timesheet.Board
	Errors map[uint64]error
}

// LoadBoard fetches a month of timesheets visible to the actor and partitions them.
// Managers only see timesheets owned by their direct reports.
func (s *ApprovalService) LoadBoard(ctx context.Context, actor *models.User, month timesheet.Month) (timesheet.Board, error) {
	if err := s.ensureReviewer(actor); err != nil {
		return timesheet.Board{}, err
	}

	from, to := month.Start(), month.End()
	filter := repository.TimesheetFilter{
		SubmittedFrom: &from,
		SubmittedTo:   &to,
	}

	if actor.IsManager() {
		teamIDs, err := s.userRepo.TeamMemberIDs(ctx, actor.ID)
		if err != nil {
			return timesheet.Board{}, fmt.Errorf("%w: team members: %v", ErrFetchFailed, err)
		}
		if teamIDs == nil {
			teamIDs = []uint64{}
		}
		filter.OwnerIDs = teamIDs
	}

	rows, err := s.timesheetRepo.List(ctx, filter)
	if err != nil {
		return timesheet.Board{}, fmt.Errorf("%w: timesheets: %v", ErrFetchFailed, err)
	}

	return timesheet.Partition(rows), nil
}

// Approve marks a pending timesheet approved by the actor
func (s *ApprovalService) Approve(ctx context.Context, actor *models.User, id uint64) (*models.Timesheet, error) {
	return s.decide(ctx, actor, id, models.TimesheetStatusApproved, nil)
}

// Reject marks a pending timesheet rejected with a reason. A blank reason is refused
// before anything is written.
func (s *ApprovalService) Reject(ctx context.Context, actor *models.User, id uint64, reason string) (*models.Timesheet, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectionReasonRequired
	}
	if len(reason) > constants.MaxRejectionReasonLen {
		return nil, ErrRejectionReasonTooLong
	}
	return s.decide(ctx, actor, id, models.TimesheetStatusRejected, &reason)
}

// BulkApprove approves each id that is pending on the month's board.
// A failing row is recorded under its id and does not affect the others.
func (s *ApprovalService) BulkApprove(ctx context.Context, actor *models.User, month timesheet.Month, ids []uint64) (*BulkApproveResult, error) {
	board, err := s.LoadBoard(ctx, actor, month)
	if err != nil {
		return nil, err
	}

	result := &BulkApproveResult{Errors: make(map[uint64]error)}
	for _, id := range utils.UniqueIDs(ids) {
		if _, ok := board.FindPending(id); !ok {
			result.Errors[id] = ErrNotOnBoard
			continue
		}

		updated, err := s.Approve(ctx, actor, id)
		if err != nil {
			result.Errors[id] = err
			continue
		}
		board.MarkApproved(*updated)
	}

	result.Board = board
	return result, nil
}

func (s *ApprovalService) decide(ctx context.Context, actor *models.User, id uint64, status models.TimesheetStatus, reason *string) (*models.Timesheet, error) {
	if err := s.ensureReviewer(actor); err != nil {
		return nil, err
	}

	if !s.begin(id) {
		return nil, ErrTimesheetBusy
	}
	defer s.end(id)

	current, err := s.timesheetRepo.FindByID(ctx, id, "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}

	if actor.IsManager() && (current.User.ManagerID == nil || *current.User.ManagerID != actor.ID) {
		return nil, ErrNotTeamTimesheet
	}

	if !current.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	affected, err := s.timesheetRepo.Decide(ctx, id, repository.Decision{
		Status:          status,
		ApprovedBy:      actor.ID,
		ApprovedAt:      s.now(),
		RejectionReason: reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update timesheet: %w", err)
	}
	if affected == 0 {
		// Decided by someone else between the read and the write
		return nil, ErrInvalidTransition
	}

	updated, err := s.timesheetRepo.FindByID(ctx, id, "User", "Project", "Approver")
	if err != nil {
		return nil, fmt.Errorf("failed to reload timesheet: %w", err)
	}

	if err := s.notifier.TimesheetDecided(ctx, *updated); err != nil {
		log.Printf("Failed to send decision notice for timesheet %d: %v", id, err)
	}

	return updated, nil
}

func (s *ApprovalService) ensureReviewer(actor *models.User) error {
	if actor == nil || actor.ID == 0 {
		return ErrIdentityRequired
	}
	if !actor.IsManager() && !actor.IsAdmin() {
		return ErrApprovalsForbidden
	}
	return nil
}

// begin flags id as processing; false means another action on it is in flight
func (s *ApprovalService) begin(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.processing[id]; busy {
		return false
	}
	s.processing[id] = struct{}{}
	return true
}

func (s *ApprovalService) end(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.processing, id)
}

// IsProcessing reports whether an action on id is in flight
func (s *ApprovalService) IsProcessing(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, busy := s.processing[id]
	return busy
}
