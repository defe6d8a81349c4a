package reimbursement

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/prasetyow/expense-reimbursement/internal"
	"github.com/prasetyow/expense-reimbursement/internal/auth"
	"github.com/prasetyow/expense-reimbursement/internal/transport"
	"github.com/prasetyow/expense-reimbursement/pkg/logger"
)

type ServiceAPI interface {
	Create(caller *auth.User, dto CreateReimbursementDTO) (*Reimbursement, error)
	GetAll(caller *auth.User, limit, offset int) ([]*Reimbursement, error)
	GetPending(caller *auth.User, limit, offset int) ([]*Reimbursement, error)
	GetOwn(caller *auth.User, limit, offset int) ([]*Reimbursement, error)
	UpdateStatus(caller *auth.User, reimbursementID int64, dto UpdateStatusDTO) (*Reimbursement, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateReimbursement(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateReimbursementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateReimbursement: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(caller, dto)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListReimbursements(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := parsePagination(r)

	records, err := h.Service.GetAll(caller, limit, offset)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reimbursements": records,
		"limit":          limit,
		"offset":         offset,
	})
}

func (h *Handler) ListPendingReimbursements(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := parsePagination(r)

	records, err := h.Service.GetPending(caller, limit, offset)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reimbursements": records,
		"limit":          limit,
		"offset":         offset,
	})
}

func (h *Handler) ListOwnReimbursements(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := parsePagination(r)

	records, err := h.Service.GetOwn(caller, limit, offset)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reimbursements": records,
		"limit":          limit,
		"offset":         offset,
	})
}

func (h *Handler) ApproveReimbursement(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusApproved)
}

func (h *Handler) DenyReimbursement(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusDenied)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status string) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("decide: invalid reimbursement ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid reimbursement ID")
		return
	}

	updated, err := h.Service.UpdateStatus(caller, id, UpdateStatusDTO{Status: status})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.Logger.Info("reimbursement decided", "reimbursement_id", id, "manager_id", caller.ID, "status", status)
	h.WriteJSON(w, http.StatusOK, updated)
}

// handleServiceError maps domain errors onto distinct status codes instead of
// a blanket 401.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrReimbursementNotFound:
		h.WriteError(w, http.StatusNotFound, "reimbursement not found")
	case ErrInvalidTransition:
		h.WriteError(w, http.StatusBadRequest, "reimbursement cannot be decided in current status")
	case ErrSelfApproval:
		h.WriteError(w, http.StatusForbidden, "cannot decide your own reimbursement")
	case ErrUnauthorizedAccess:
		h.WriteError(w, http.StatusForbidden, "manager access required")
	default:
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteError(w, appErr.StatusCode, appErr.GetDetailedMessage())
			return
		}
		h.Logger.Error("reimbursement service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parsePagination(r *http.Request) (int, int) {
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
