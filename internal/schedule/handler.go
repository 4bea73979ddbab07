package schedule

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/arifwidianto/shift-management/internal/transport"
	"github.com/arifwidianto/shift-management/pkg/logger"
)

type ServiceAPI interface {
	BulkUpsert(dto BulkUpsertDTO) (*BulkResult, error)
	SweepPreferredHolidays(month string) (*GenerateResult, error)
	AutoRegisterEmploymentPeriod(month string) (*GenerateResult, error)
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

// BulkUpsert applies a batch of month-grid edits.
func (h *Handler) BulkUpsert(w http.ResponseWriter, r *http.Request) {
	var dto BulkUpsertDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("BulkUpsert: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.BulkUpsert(dto)
	if err != nil {
		h.Logger.Error("BulkUpsert: service error", "error", err, "entries", len(dto.Entries))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

type generateRequest struct {
	Month string `json:"month"`
}

// SweepPreferredHolidays marks preferred weekdays as leave across the month.
// Privileged route.
func (h *Handler) SweepPreferredHolidays(w http.ResponseWriter, r *http.Request) {
	h.runGeneration(w, r, "SweepPreferredHolidays", h.Service.SweepPreferredHolidays)
}

// AutoRegisterEmploymentPeriod fills employment windows with day shifts.
// Privileged route.
func (h *Handler) AutoRegisterEmploymentPeriod(w http.ResponseWriter, r *http.Request) {
	h.runGeneration(w, r, "AutoRegisterEmploymentPeriod", h.Service.AutoRegisterEmploymentPeriod)
}

func (h *Handler) runGeneration(w http.ResponseWriter, r *http.Request, op string, run func(string) (*GenerateResult, error)) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error(op+": invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Month == "" {
		h.WriteError(w, http.StatusBadRequest, "month is required")
		return
	}

	result, err := run(req.Month)
	if err != nil {
		h.Logger.Error(op+": service error", "error", err, "month", req.Month)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
