package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeReimbursementSubmitted     = "reimbursement.submitted"
	EventTypeReimbursementStatusChanged = "reimbursement.status_changed"
)

type ReimbursementSubmittedEvent struct {
	BaseEvent
	ReimbursementID int64 `json:"reimbursement_id"`
	UserID          int64 `json:"user_id"`
	AmountCents     int64 `json:"amount_cents"`
}

func NewReimbursementSubmittedEvent(reimbursementID, userID, amountCents int64) *ReimbursementSubmittedEvent {
	return &ReimbursementSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReimbursementSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"reimbursement_id": reimbursementID,
				"user_id":          userID,
				"amount_cents":     amountCents,
			},
		},
		ReimbursementID: reimbursementID,
		UserID:          userID,
		AmountCents:     amountCents,
	}
}

type ReimbursementStatusChangedEvent struct {
	BaseEvent
	ReimbursementID int64  `json:"reimbursement_id"`
	OwnerID         int64  `json:"owner_id"`
	ProcessedBy     int64  `json:"processed_by"`
	OldStatus       string `json:"old_status"`
	NewStatus       string `json:"new_status"`
}

func NewReimbursementStatusChangedEvent(reimbursementID, ownerID, processedBy int64, oldStatus, newStatus string) *ReimbursementStatusChangedEvent {
	return &ReimbursementStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReimbursementStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"reimbursement_id": reimbursementID,
				"owner_id":         ownerID,
				"processed_by":     processedBy,
				"old_status":       oldStatus,
				"new_status":       newStatus,
			},
		},
		ReimbursementID: reimbursementID,
		OwnerID:         ownerID,
		ProcessedBy:     processedBy,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
