package reimbursement

import "time"

type Reimbursement struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null"`
	AmountCents int64      `gorm:"column:amount_cents;not null"`
	Description string     `gorm:"column:description;not null"`
	Status      string     `gorm:"column:status;not null;default:pending"`
	SubmittedAt time.Time  `gorm:"column:submitted_at;default:now()"`
	ProcessedAt *time.Time `gorm:"column:processed_at"`
	ProcessedBy *int64     `gorm:"column:processed_by"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Reimbursement) TableName() string {
	return "reimbursements"
}
