package reimbursement

import (
	"errors"
	"time"

	reimbDatamodel "github.com/prasetyow/expense-reimbursement/internal/core/datamodel/reimbursement"
)

// Reimbursement is a monetary expense claim with a lifecycle status. The owner
// is fixed at creation; the status only ever moves pending -> approved|denied.
type Reimbursement struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	AmountCents int64      `json:"amount_cents"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ProcessedBy *int64     `json:"processed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// TerminalStatuses are the states a pending reimbursement may move to.
var TerminalStatuses = []string{StatusApproved, StatusDenied}

func IsTerminalStatus(status string) bool {
	return status == StatusApproved || status == StatusDenied
}

func (r *Reimbursement) CanTransition() bool {
	return r.Status == StatusPending
}

// Domain errors
var (
	ErrReimbursementNotFound = errors.New("reimbursement not found")
	ErrUnauthorizedAccess    = errors.New("unauthorized access to reimbursement")
	ErrInvalidTransition     = errors.New("reimbursement is not pending")
	ErrSelfApproval          = errors.New("cannot decide own reimbursement")
)

func ToDataModel(r *Reimbursement) *reimbDatamodel.Reimbursement {
	return &reimbDatamodel.Reimbursement{
		ID:          r.ID,
		UserID:      r.UserID,
		AmountCents: r.AmountCents,
		Description: r.Description,
		Status:      r.Status,
		SubmittedAt: r.SubmittedAt,
		ProcessedAt: r.ProcessedAt,
		ProcessedBy: r.ProcessedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(r *reimbDatamodel.Reimbursement) *Reimbursement {
	return &Reimbursement{
		ID:          r.ID,
		UserID:      r.UserID,
		AmountCents: r.AmountCents,
		Description: r.Description,
		Status:      r.Status,
		SubmittedAt: r.SubmittedAt,
		ProcessedAt: r.ProcessedAt,
		ProcessedBy: r.ProcessedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModelSlice(records []*reimbDatamodel.Reimbursement) []*Reimbursement {
	result := make([]*Reimbursement, len(records))
	for i, r := range records {
		result[i] = FromDataModel(r)
	}
	return result
}
