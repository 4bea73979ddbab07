package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/core/events"
)

// Repository defines the data access methods for leave applications.
type Repository interface {
	Create(app *Application) error
	GetByID(id int64) (*Application, error)
	Update(app *Application) error
	ListByUser(userID int64, limit, offset int) ([]*Application, error)
	ListByStatus(status string, limit, offset int) ([]*Application, error)
}

// ShiftStore is the slice of the shift store the workflow drives.
type ShiftStore interface {
	ApplyLeave(userID int64, date time.Time) error
	ClearLeaveIfStillLeave(userID int64, date time.Time) error
	CountLeaveDays(userID int64, from, to time.Time) (int, error)
}

// Service runs the leave application state machine. Status changes commit
// first; shift side effects follow and their failures never roll the status
// back - they are logged and published on the event bus instead.
type Service struct {
	repo   Repository
	shifts ShiftStore
	bus    *events.EventBus
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, shifts ShiftStore, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		shifts: shifts,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// Submit creates a pending application. Requests for dates before today are
// rejected; the comparison is date-only, so a timestamp later today is fine.
func (s *Service) Submit(dto SubmitApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("leave application validation failed", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	date, err := dto.ParsedDate()
	if err != nil {
		return nil, internal.NewValidationFieldError("date", "date must be a date in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	}

	// calendar comparison, so the server timezone cannot shift the cutoff
	if date.Format("2006-01-02") < s.now().Format("2006-01-02") {
		return nil, internal.NewValidationFieldError("date", "date must not be in the past", internal.ErrCodePastDate)
	}

	appType := dto.Type
	if appType == "" {
		appType = TypeLeave
	}

	app := &Application{
		UserID: dto.UserID,
		Date:   date,
		Type:   appType,
		Status: StatusPending,
		Reason: dto.Reason,
	}
	if err := s.repo.Create(app); err != nil {
		s.logger.Error("failed to create leave application", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("leave application submitted",
		"application_id", app.ID,
		"user_id", app.UserID,
		"date", app.Date.Format("2006-01-02"))
	return app, nil
}

// Decide moves an application to the requested status. The privilege gate
// runs before any other validation. Shift side effects fire only on the
// edges into and out of approved.
func (s *Service) Decide(id int64, dto DecideApplicationDTO, deciderID int64, privileged bool) (*Application, error) {
	if !privileged {
		s.logger.Warn("leave decision denied: caller not privileged",
			"application_id", id, "decider_id", deciderID)
		return nil, internal.ErrPrivilegeRequired
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	app, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("leave application not found for decision", "error", err, "application_id", id)
		return nil, internal.ErrApplicationNotFound
	}

	if !app.CanTransitionTo(dto.Status) {
		s.logger.Warn("invalid application transition",
			"application_id", id,
			"from", app.Status,
			"to", dto.Status)
		return nil, internal.ErrInvalidTransition
	}

	wasApproved := app.Status == StatusApproved
	app.Status = dto.Status
	app.DecidedBy = &deciderID
	if err := s.repo.Update(app); err != nil {
		s.logger.Error("failed to update application status", "error", err, "application_id", id)
		return nil, err
	}

	s.applySideEffects(app, wasApproved)

	s.logger.Info("leave application decided",
		"application_id", app.ID,
		"status", app.Status,
		"decider_id", deciderID)
	return app, nil
}

// applySideEffects mutates the shift store for approved/withdrawn leave.
// The status change above is already committed; a failure here is surfaced
// through the log and the event bus, never by aborting the decision.
func (s *Service) applySideEffects(app *Application, wasApproved bool) {
	if app.Type != TypeLeave {
		return
	}

	var err error
	switch {
	case app.Status == StatusApproved:
		err = s.shifts.ApplyLeave(app.UserID, app.Date)
	case wasApproved && app.Status != StatusApproved:
		err = s.shifts.ClearLeaveIfStillLeave(app.UserID, app.Date)
	default:
		return
	}

	if err != nil {
		s.logger.Error("leave side effect failed, status change kept",
			"application_id", app.ID,
			"user_id", app.UserID,
			"date", app.Date.Format("2006-01-02"),
			"status", app.Status,
			"error", err)
		if s.bus != nil {
			event := events.NewLeaveSideEffectFailedEvent(app.ID, app.UserID, app.Date.Format("2006-01-02"), err)
			_ = s.bus.Publish(context.Background(), event)
		}
	}
}

func (s *Service) GetByID(id int64) (*Application, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrApplicationNotFound
	}
	return app, nil
}

func (s *Service) ListByUser(userID int64, limit, offset int) ([]*Application, error) {
	return s.repo.ListByUser(userID, limit, offset)
}

func (s *Service) ListPending(limit, offset int) ([]*Application, error) {
	return s.repo.ListByStatus(StatusPending, limit, offset)
}
