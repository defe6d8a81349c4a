package reimbursement

import (
	"context"
	"log/slog"
	"time"

	"github.com/prasetyow/expense-reimbursement/internal/auth"
	reimbDatamodel "github.com/prasetyow/expense-reimbursement/internal/core/datamodel/reimbursement"
	"github.com/prasetyow/expense-reimbursement/internal/core/events"
)

// RepositoryAPI defines the data access methods for reimbursements
type RepositoryAPI interface {
	Create(dm *reimbDatamodel.Reimbursement) error
	GetByID(id int64) (*reimbDatamodel.Reimbursement, error)
	GetAll(limit, offset int) ([]*reimbDatamodel.Reimbursement, error)
	GetByStatus(status string, limit, offset int) ([]*reimbDatamodel.Reimbursement, error)
	GetByUserID(userID int64, limit, offset int) ([]*reimbDatamodel.Reimbursement, error)
	// UpdateStatus moves a record out of pending and reports whether this
	// caller won the transition. Concurrent decisions serialize here.
	UpdateStatus(id int64, newStatus string, processedBy int64, processedAt time.Time) (bool, error)
}

// Service handles the reimbursement lifecycle
type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

// NewService creates a new reimbursement service
func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Create submits a new claim owned by the caller, always in pending status.
func (s *Service) Create(caller *auth.User, dto CreateReimbursementDTO) (*Reimbursement, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("reimbursement validation failed", "error", err, "user_id", caller.ID)
		return nil, err
	}

	now := time.Now()
	dm := &reimbDatamodel.Reimbursement{
		UserID:      caller.ID,
		AmountCents: dto.AmountCents,
		Description: dto.Description,
		Status:      StatusPending,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(dm); err != nil {
		s.logger.Error("failed to create reimbursement", "error", err, "user_id", caller.ID)
		return nil, err
	}

	s.publish(events.NewReimbursementSubmittedEvent(dm.ID, caller.ID, dm.AmountCents))

	s.logger.Info("reimbursement created",
		"reimbursement_id", dm.ID,
		"user_id", caller.ID,
		"amount_cents", dto.AmountCents)

	return FromDataModel(dm), nil
}

// GetAll returns every claim, oldest submission first. Managers only.
func (s *Service) GetAll(caller *auth.User, limit, offset int) ([]*Reimbursement, error) {
	if !caller.IsManager() {
		s.logger.Warn("list all reimbursements denied", "user_id", caller.ID, "role", caller.Role)
		return nil, ErrUnauthorizedAccess
	}

	records, err := s.repo.GetAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to list reimbursements", "error", err)
		return nil, err
	}

	return FromDataModelSlice(records), nil
}

// GetPending returns the pending subset. Managers only.
func (s *Service) GetPending(caller *auth.User, limit, offset int) ([]*Reimbursement, error) {
	if !caller.IsManager() {
		s.logger.Warn("list pending reimbursements denied", "user_id", caller.ID, "role", caller.Role)
		return nil, ErrUnauthorizedAccess
	}

	records, err := s.repo.GetByStatus(StatusPending, limit, offset)
	if err != nil {
		s.logger.Error("failed to list pending reimbursements", "error", err)
		return nil, err
	}

	return FromDataModelSlice(records), nil
}

// GetOwn returns the caller's own claims.
func (s *Service) GetOwn(caller *auth.User, limit, offset int) ([]*Reimbursement, error) {
	records, err := s.repo.GetByUserID(caller.ID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list own reimbursements", "error", err, "user_id", caller.ID)
		return nil, err
	}

	return FromDataModelSlice(records), nil
}

// UpdateStatus decides a pending claim. Managers only; a manager may not
// decide their own claim.
func (s *Service) UpdateStatus(caller *auth.User, reimbursementID int64, dto UpdateStatusDTO) (*Reimbursement, error) {
	if !caller.IsManager() {
		s.logger.Warn("status update denied: not a manager",
			"reimbursement_id", reimbursementID,
			"user_id", caller.ID,
			"role", caller.Role)
		return nil, ErrUnauthorizedAccess
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dm, err := s.repo.GetByID(reimbursementID)
	if err != nil {
		s.logger.Warn("reimbursement not found for status update", "error", err, "reimbursement_id", reimbursementID)
		return nil, ErrReimbursementNotFound
	}

	if dm.UserID == caller.ID {
		s.logger.Warn("status update denied: self approval",
			"reimbursement_id", reimbursementID,
			"user_id", caller.ID)
		return nil, ErrSelfApproval
	}

	if dm.Status != StatusPending {
		s.logger.Warn("cannot decide reimbursement in current status",
			"reimbursement_id", reimbursementID,
			"current_status", dm.Status)
		return nil, ErrInvalidTransition
	}

	processedAt := time.Now()
	won, err := s.repo.UpdateStatus(reimbursementID, dto.Status, caller.ID, processedAt)
	if err != nil {
		s.logger.Error("failed to update reimbursement status", "error", err, "reimbursement_id", reimbursementID)
		return nil, err
	}
	if !won {
		// A concurrent decision got there first.
		return nil, ErrInvalidTransition
	}

	s.publish(events.NewReimbursementStatusChangedEvent(reimbursementID, dm.UserID, caller.ID, StatusPending, dto.Status))

	s.logger.Info("reimbursement status updated",
		"reimbursement_id", reimbursementID,
		"manager_id", caller.ID,
		"new_status", dto.Status)

	updated, err := s.repo.GetByID(reimbursementID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(updated), nil
}

func (s *Service) publish(event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
