package shift

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/arifwidianto/shift-management/internal/transport"
	"github.com/arifwidianto/shift-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	SetShiftType(userID int64, date time.Time, shiftType *string) error
	SetStepOut(userID int64, date time.Time, value bool) error
	SetMealTicket(userID int64, date time.Time, value bool) error
	SetPosition(userID int64, date time.Time, tag *string) error
	SetPublished(userID int64, date time.Time, value bool) error
	GetHeader(userID int64, date time.Time) (*Shift, error)

	CreateDetail(dto CreateDetailDTO) (*ShiftDetail, error)
	UpdateDetail(id int64, dto UpdateDetailDTO) (*ShiftDetail, error)
	ExtendDetail(id int64, deltaMinutes int) (*ShiftDetail, error)
	DeleteDetail(id int64) error

	ToggleConfirmation(date time.Time, action string) (*ConfirmationResult, error)

	DayViews(date time.Time) ([]*DayView, error)
	MonthShifts(monthStart, monthEnd time.Time) ([]*Shift, error)
	WorkingMinutes(userID int64, date time.Time) (int, error)
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

// UpsertDay sets or clears the shift type of one (user, date) cell.
func (h *Handler) UpsertDay(w http.ResponseWriter, r *http.Request) {
	var dto UpsertDayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpsertDay: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.SetShiftType(dto.UserID, dto.ParsedDate(), dto.ShiftType); err != nil {
		h.Logger.Error("UpsertDay: service error", "error", err, "user_id", dto.UserID, "date", dto.Date)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// GetDay returns every user's header plus joined details for the date.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	views, err := h.Service.DayViews(date)
	if err != nil {
		h.Logger.Error("GetDay: service error", "error", err, "date", chi.URLParam(r, "date"))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":   date.Format("2006-01-02"),
		"shifts": views,
	})
}

// GetMonth returns all headers in the month for the grid view.
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "month must be in YYYY-MM format")
		return
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	shifts, err := h.Service.MonthShifts(monthStart, monthEnd)
	if err != nil {
		h.Logger.Error("GetMonth: service error", "error", err, "month", month)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"month":  month,
		"shifts": shifts,
	})
}

// GetHeader returns the single header for a (user, date) cell.
func (h *Handler) GetHeader(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.idParam(w, r, "userID")
	if !ok {
		return
	}
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	header, err := h.Service.GetHeader(userID, date)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, header)
}

// WorkingMinutes answers the collaborator read used by payroll exports.
func (h *Handler) WorkingMinutes(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.idParam(w, r, "userID")
	if !ok {
		return
	}

	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "date query parameter must be in YYYY-MM-DD format")
		return
	}

	minutes, err := h.Service.WorkingMinutes(userID, date)
	if err != nil {
		h.Logger.Error("WorkingMinutes: service error", "error", err, "user_id", userID, "date", dateStr)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         userID,
		"date":            dateStr,
		"working_minutes": minutes,
	})
}

func (h *Handler) SetStepOut(w http.ResponseWriter, r *http.Request) {
	h.applyFlag(w, r, "SetStepOut", h.Service.SetStepOut)
}

func (h *Handler) SetMealTicket(w http.ResponseWriter, r *http.Request) {
	h.applyFlag(w, r, "SetMealTicket", h.Service.SetMealTicket)
}

func (h *Handler) SetPublished(w http.ResponseWriter, r *http.Request) {
	h.applyFlag(w, r, "SetPublished", h.Service.SetPublished)
}

func (h *Handler) applyFlag(w http.ResponseWriter, r *http.Request, op string, set func(int64, time.Time, bool) error) {
	var dto FlagDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error(op+": invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	date, _ := time.Parse("2006-01-02", dto.Date)
	if err := set(dto.UserID, date, dto.Value); err != nil {
		h.Logger.Error(op+": service error", "error", err, "user_id", dto.UserID, "date", dto.Date)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (h *Handler) SetPosition(w http.ResponseWriter, r *http.Request) {
	var dto PositionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetPosition: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	date, _ := time.Parse("2006-01-02", dto.Date)
	if err := h.Service.SetPosition(dto.UserID, date, dto.Tag); err != nil {
		h.Logger.Error("SetPosition: service error", "error", err, "user_id", dto.UserID, "date", dto.Date)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (h *Handler) CreateDetail(w http.ResponseWriter, r *http.Request) {
	var dto CreateDetailDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateDetail: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.Service.CreateDetail(dto)
	if err != nil {
		h.Logger.Error("CreateDetail: service error", "error", err, "user_id", dto.UserID, "date", dto.Date)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateDetail: detail created",
		"detail_id", detail.ID,
		"user_id", detail.UserID,
		"type", detail.Type)
	h.WriteJSON(w, http.StatusCreated, detail)
}

func (h *Handler) UpdateDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateDetailDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateDetail: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.Service.UpdateDetail(id, dto)
	if err != nil {
		h.Logger.Error("UpdateDetail: service error", "error", err, "detail_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) ExtendDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}

	var dto ExtendDetailDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ExtendDetail: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	detail, err := h.Service.ExtendDetail(id, dto.DeltaMinutes)
	if err != nil {
		h.Logger.Error("ExtendDetail: service error", "error", err, "detail_id", id, "delta_minutes", dto.DeltaMinutes)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) DeleteDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteDetail(id); err != nil {
		h.Logger.Error("DeleteDetail: service error", "error", err, "detail_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ToggleConfirmation flips the day's work details between scheduled and
// actual. Privileged route.
func (h *Handler) ToggleConfirmation(w http.ResponseWriter, r *http.Request) {
	var dto ToggleConfirmationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ToggleConfirmation: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	date, _ := time.Parse("2006-01-02", dto.Date)
	result, err := h.Service.ToggleConfirmation(date, dto.Action)
	if err != nil {
		h.Logger.Error("ToggleConfirmation: service error", "error", err, "date", dto.Date)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
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

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := chi.URLParam(r, name)
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, name+" must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return date, true
}
