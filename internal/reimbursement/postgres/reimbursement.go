package postgres

import (
	"errors"
	"time"

	reimbDatamodel "github.com/prasetyow/expense-reimbursement/internal/core/datamodel/reimbursement"
	"github.com/prasetyow/expense-reimbursement/internal/reimbursement"
	"gorm.io/gorm"
)

// ReimbursementRepository implements reimbursement.RepositoryAPI using GORM
type ReimbursementRepository struct {
	db *gorm.DB
}

// NewReimbursementRepository creates a new reimbursement repository
func NewReimbursementRepository(db *gorm.DB) reimbursement.RepositoryAPI {
	return &ReimbursementRepository{db: db}
}

func (r *ReimbursementRepository) Create(dm *reimbDatamodel.Reimbursement) error {
	return r.db.Create(dm).Error
}

func (r *ReimbursementRepository) GetByID(id int64) (*reimbDatamodel.Reimbursement, error) {
	var dm reimbDatamodel.Reimbursement
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reimbursement.ErrReimbursementNotFound
		}
		return nil, err
	}
	return &dm, nil
}

// GetAll returns claims in stable submission order.
func (r *ReimbursementRepository) GetAll(limit, offset int) ([]*reimbDatamodel.Reimbursement, error) {
	var records []*reimbDatamodel.Reimbursement
	err := r.db.
		Order("submitted_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *ReimbursementRepository) GetByStatus(status string, limit, offset int) ([]*reimbDatamodel.Reimbursement, error) {
	var records []*reimbDatamodel.Reimbursement
	err := r.db.Where("status = ?", status).
		Order("submitted_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *ReimbursementRepository) GetByUserID(userID int64, limit, offset int) ([]*reimbDatamodel.Reimbursement, error) {
	var records []*reimbDatamodel.Reimbursement
	err := r.db.Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// UpdateStatus moves a pending record into a terminal status. The status guard
// in the WHERE clause makes concurrent decisions serialize at the database;
// the loser sees zero rows affected.
func (r *ReimbursementRepository) UpdateStatus(id int64, newStatus string, processedBy int64, processedAt time.Time) (bool, error) {
	result := r.db.Model(&reimbDatamodel.Reimbursement{}).
		Where("id = ? AND status = ?", id, reimbursement.StatusPending).
		Updates(map[string]interface{}{
			"status":       newStatus,
			"processed_at": processedAt,
			"processed_by": processedBy,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
