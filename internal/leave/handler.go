package leave

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arifwidianto/shift-management/internal/transport"
	"github.com/arifwidianto/shift-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Submit(dto SubmitApplicationDTO) (*Application, error)
	Decide(id int64, dto DecideApplicationDTO, deciderID int64, privileged bool) (*Application, error)
	GetByID(id int64) (*Application, error)
	ListByUser(userID int64, limit, offset int) ([]*Application, error)
	ListPending(limit, offset int) ([]*Application, error)
}

type QuotaAPI interface {
	Report(userID int64, month string) (*QuotaReport, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Quota   QuotaAPI
}

func NewHandler(service ServiceAPI, quota QuotaAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Quota:       quota,
	}
}

// SubmitApplication files a leave request. A caller without an explicit
// user_id in the body applies for themselves.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.RequireCaller(w, r)
	if !ok {
		return
	}

	var dto SubmitApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitApplication: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.UserID == 0 {
		dto.UserID = caller.UserID
	}

	app, err := h.Service.Submit(dto)
	if err != nil {
		h.Logger.Error("SubmitApplication: service error", "error", err, "user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SubmitApplication: application submitted",
		"application_id", app.ID,
		"user_id", app.UserID)
	h.WriteJSON(w, http.StatusCreated, app)
}

// DecideApplication moves an application through the approval state machine.
// Privileged route.
func (h *Handler) DecideApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.RequireCaller(w, r)
	if !ok {
		return
	}

	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}

	var dto DecideApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("DecideApplication: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.Service.Decide(id, dto, caller.UserID, caller.Privileged)
	if err != nil {
		h.Logger.Error("DecideApplication: service error", "error", err,
			"application_id", id, "decider_id", caller.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}

	app, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

// ListApplications returns the caller's own applications. A privileged
// caller can list another user's via the user_id query parameter.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.RequireCaller(w, r)
	if !ok {
		return
	}

	userID := caller.UserID
	if raw := r.URL.Query().Get("user_id"); raw != "" && caller.Privileged {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			userID = id
		}
	}

	limit, offset := pagination(r)
	apps, err := h.Service.ListByUser(userID, limit, offset)
	if err != nil {
		h.Logger.Error("ListApplications: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"limit":        limit,
		"offset":       offset,
	})
}

// ListPendingApplications returns the approval queue, oldest first.
// Privileged route.
func (h *Handler) ListPendingApplications(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	apps, err := h.Service.ListPending(limit, offset)
	if err != nil {
		h.Logger.Error("ListPendingApplications: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"limit":        limit,
		"offset":       offset,
	})
}

// GetQuota reports the user's leave usage against their monthly limit.
func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.idParam(w, r, "userID")
	if !ok {
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		h.WriteError(w, http.StatusBadRequest, "month query parameter is required")
		return
	}

	report, err := h.Quota.Report(userID, month)
	if err != nil {
		h.Logger.Error("GetQuota: service error", "error", err, "user_id", userID, "month", month)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.Logger.Error("invalid path parameter", "param", name, "value", raw)
		h.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

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
