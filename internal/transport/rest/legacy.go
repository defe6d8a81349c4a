package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/prasetyow/expense-reimbursement/internal/auth"
	"github.com/prasetyow/expense-reimbursement/internal/reimbursement"
	"github.com/prasetyow/expense-reimbursement/internal/transport"
	"github.com/prasetyow/expense-reimbursement/pkg/logger"
)

// LegacyHandler serves the original flat routes where the token travels in the
// request body instead of the Authorization header. Amounts arrive as decimal
// currency and are stored as cents.
type LegacyHandler struct {
	*transport.BaseHandler
	Auth           auth.ServiceAPI
	Reimbursements reimbursement.ServiceAPI
}

func NewLegacyHandler(authSvc auth.ServiceAPI, reimbSvc reimbursement.ServiceAPI) *LegacyHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &LegacyHandler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Auth:           authSvc,
		Reimbursements: reimbSvc,
	}
}

type legacyLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type legacyCreateRequest struct {
	Token       string  `json:"token"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type legacyEditRequest struct {
	Token  string `json:"token"`
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Register handles POST /register
func (h *LegacyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var dto auth.RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.Role = strings.ToLower(dto.Role)

	created, err := h.Auth.Register(dto)
	if err != nil {
		h.Logger.Warn("legacy register failed", "error", err, "username", dto.Username)

		switch {
		case err == auth.ErrDuplicateUsername:
			h.WriteError(w, http.StatusBadRequest, "username already taken")
		case errors.As(err, &auth.ValidationError{}):
			h.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, created)
}

// Login handles POST /login and returns the bare token string.
func (h *LegacyHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req legacyLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.Auth.Authenticate(auth.LoginDTO{Username: req.Username, Password: req.Password})
	if err != nil {
		h.Logger.Warn("legacy login failed", "error", err)
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(token.AccessToken))
}

// CreateReimbursement handles POST /reimbursement
func (h *LegacyHandler) CreateReimbursement(w http.ResponseWriter, r *http.Request) {
	var req legacyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caller, err := h.resolveToken(req.Token)
	if err != nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dto := reimbursement.CreateReimbursementDTO{
		AmountCents: int64(math.Round(req.Amount * 100)),
		Description: req.Description,
	}

	created, err := h.Reimbursements.Create(caller, dto)
	if err != nil {
		// The legacy surface reports every create failure as 401.
		h.Logger.Warn("legacy create failed", "error", err, "user_id", caller.ID)
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, created)
}

// EditReimbursement handles POST /reimbursement/edit with split status codes
// for the distinct failure modes.
func (h *LegacyHandler) EditReimbursement(w http.ResponseWriter, r *http.Request) {
	var req legacyEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, err := h.resolveToken(req.Token)
	if err != nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dto := reimbursement.UpdateStatusDTO{Status: strings.ToLower(req.Status)}

	updated, err := h.Reimbursements.UpdateStatus(caller, req.ID, dto)
	if err != nil {
		switch err {
		case reimbursement.ErrReimbursementNotFound:
			h.WriteError(w, http.StatusNotFound, "reimbursement not found")
		case reimbursement.ErrInvalidTransition:
			h.WriteError(w, http.StatusBadRequest, "reimbursement cannot be decided in current status")
		case reimbursement.ErrUnauthorizedAccess, reimbursement.ErrSelfApproval:
			h.WriteError(w, http.StatusForbidden, "forbidden")
		default:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *LegacyHandler) resolveToken(token string) (*auth.User, error) {
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	claims, err := h.Auth.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	return auth.UserFromClaims(claims)
}
