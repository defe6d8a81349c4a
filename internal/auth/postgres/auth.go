package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/prasetyow/expense-reimbursement/internal/auth"
	userDatamodel "github.com/prasetyow/expense-reimbursement/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(username string) (string, int64, string, error) {
	var passwordHash string
	var userID int64
	var role string
	query := `SELECT id, password_hash, role FROM users WHERE username = ? AND is_active = true`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash, &role); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, "", auth.ErrUserNotFound
		}
		return "", 0, "", err
	}
	return passwordHash, userID, role, nil
}

func (r *Repository) CreateUser(username, passwordHash, role string) (*auth.User, error) {
	now := time.Now()
	dm := &userDatamodel.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.db.Create(dm).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, auth.ErrDuplicateUsername
		}
		return nil, err
	}

	return &auth.User{
		ID:       dm.ID,
		Username: dm.Username,
		Role:     dm.Role,
	}, nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var user auth.User
	query := `SELECT id, username, role FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Username, &user.Role); err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pgx surfaces unique violations as 23505; sqlite as "UNIQUE constraint failed"
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "UNIQUE constraint")
}
