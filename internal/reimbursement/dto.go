package reimbursement

import (
	"github.com/prasetyow/expense-reimbursement/internal/core/common/validation"
)

// CreateReimbursementDTO represents the request payload for submitting a claim
type CreateReimbursementDTO struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
}

// Validate validates the CreateReimbursementDTO
func (dto CreateReimbursementDTO) Validate() error {
	if err := validation.ValidateReimbursementAmount(dto.AmountCents); err != nil {
		return err
	}
	if err := validation.ValidateReimbursementDescription(dto.Description); err != nil {
		return err
	}
	return nil
}

// UpdateStatusDTO represents the request for deciding a pending claim
type UpdateStatusDTO struct {
	Status string `json:"status"`
}

// Validate validates the UpdateStatusDTO
func (dto UpdateStatusDTO) Validate() error {
	if err := validation.ValidateReimbursementStatus(dto.Status, TerminalStatuses); err != nil {
		return err
	}
	return nil
}
