package shift

import (
	"log/slog"
	"time"

	errors "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/core/keylock"
)

// Repository defines the data access methods for shift headers and details.
type Repository interface {
	GetShift(userID int64, date time.Time) (*Shift, error)
	UpsertShift(s *Shift) error
	DeleteShift(userID int64, date time.Time) error
	ListShiftsByDate(date time.Time) ([]*Shift, error)
	ListShiftsByRange(from, to time.Time) ([]*Shift, error)
	CountLeaveShifts(userID int64, from, to time.Time) (int64, error)

	CreateDetail(d *ShiftDetail) error
	GetDetail(id int64) (*ShiftDetail, error)
	UpdateDetail(d *ShiftDetail) error
	DeleteDetail(id int64) error
	DeleteDetails(userID int64, date time.Time) error
	ListDetails(userID int64, date time.Time) ([]*ShiftDetail, error)
	ListBreakOutings(userID int64, actualOnly bool, excludeID int64, from, to time.Time) ([]*ShiftDetail, error)
	ListWorkDetailsByDate(date time.Time) ([]*ShiftDetail, error)
	UpdateDetailStatus(ids []int64, status string) error

	Transaction(fn func(Repository) error) error
}

// PatternSource resolves the working interval(s) for a (user, date, shift
// type). Implemented by the schedule package's default pattern resolver.
// unresolved is true when neither personal defaults nor a template matched
// and the returned interval is the zero-length placeholder.
type PatternSource interface {
	ResolveWorkIntervals(userID int64, date time.Time, shiftType string) (intervals []Interval, unresolved bool, err error)
}

// Service is the shift/detail store. It owns the delete-cascade and
// leave-clearing rules; no referential constraint ties details to headers,
// so these rules are the only thing keeping the two record kinds consistent.
type Service struct {
	repo     Repository
	patterns PatternSource
	locks    *keylock.KeyedMutex
	logger   *slog.Logger
}

func NewService(repo Repository, patterns PatternSource, locks *keylock.KeyedMutex, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		patterns: patterns,
		locks:    locks,
		logger:   logger,
	}
}

// SetShiftType dispatches a single-cell edit to the matching cascade branch.
// nil/empty shiftType clears the day.
func (s *Service) SetShiftType(userID int64, date time.Time, shiftType *string) error {
	unlock := s.locks.Lock(keylock.UserDateKey(userID, date))
	defer unlock()
	return s.setShiftTypeLocked(s.repo, userID, date, shiftType)
}

// setShiftTypeLocked runs the cascade branches against the given repository,
// which may be a transaction. Callers hold the (user, date) lock.
func (s *Service) setShiftTypeLocked(repo Repository, userID int64, date time.Time, shiftType *string) error {
	if shiftType == nil || *shiftType == "" {
		return s.clearDayLocked(repo, userID, date)
	}
	switch *shiftType {
	case ShiftTypeLeave:
		return s.applyLeaveLocked(repo, userID, date)
	case ShiftTypeDay, ShiftTypeNight:
		return s.assignWorkingDayLocked(repo, userID, date, *shiftType)
	default:
		return errors.NewValidationFieldError("shift_type", "shift_type must be day, night or leave", errors.ErrCodeInvalidShiftType)
	}
}

// ApplyLeave marks the day as leave: details are deleted first, then the
// header is upserted. Used by the generator sweep and the leave workflow.
func (s *Service) ApplyLeave(userID int64, date time.Time) error {
	unlock := s.locks.Lock(keylock.UserDateKey(userID, date))
	defer unlock()
	return s.applyLeaveLocked(s.repo, userID, date)
}

func (s *Service) applyLeaveLocked(repo Repository, userID int64, date time.Time) error {
	return repo.Transaction(func(tx Repository) error {
		if err := tx.DeleteDetails(userID, date); err != nil {
			return err
		}
		header, err := s.headerOrNew(tx, userID, date)
		if err != nil {
			return err
		}
		header.ShiftType = ShiftTypeLeave
		return tx.UpsertShift(header)
	})
}

// ClearDay removes the header and all details for the day.
func (s *Service) ClearDay(userID int64, date time.Time) error {
	unlock := s.locks.Lock(keylock.UserDateKey(userID, date))
	defer unlock()
	return s.clearDayLocked(s.repo, userID, date)
}

func (s *Service) clearDayLocked(repo Repository, userID int64, date time.Time) error {
	return repo.Transaction(func(tx Repository) error {
		if err := tx.DeleteDetails(userID, date); err != nil {
			return err
		}
		return tx.DeleteShift(userID, date)
	})
}

func (s *Service) assignWorkingDayLocked(repo Repository, userID int64, date time.Time, shiftType string) error {
	intervals, unresolved, err := s.patterns.ResolveWorkIntervals(userID, date, shiftType)
	if err != nil {
		return err
	}
	if unresolved {
		// Placeholder interval: the day exists but its hours are undetermined.
		// Persisted for grid compatibility; the log line is the only signal.
		s.logger.Warn("no working pattern resolved, storing placeholder interval",
			"user_id", userID, "date", date.Format("2006-01-02"), "shift_type", shiftType)
	}

	return repo.Transaction(func(tx Repository) error {
		header, err := s.headerOrNew(tx, userID, date)
		if err != nil {
			return err
		}
		header.ShiftType = shiftType
		if err := tx.UpsertShift(header); err != nil {
			return err
		}
		// regenerate: drop prior details so re-running the edit cannot duplicate
		if err := tx.DeleteDetails(userID, date); err != nil {
			return err
		}
		for _, iv := range intervals {
			detail := &ShiftDetail{
				UserID:    userID,
				ShiftDate: date,
				Type:      DetailTypeWork,
				Status:    StatusScheduled,
				StartTime: iv.Start,
				EndTime:   iv.End,
			}
			if err := tx.CreateDetail(detail); err != nil {
				return err
			}
		}
		return nil
	})
}

// UnmarkLeave deletes the header and any details for the day. Regeneration
// of working hours is a separate explicit edit, never automatic.
func (s *Service) UnmarkLeave(userID int64, date time.Time) error {
	return s.ClearDay(userID, date)
}

// ClearLeaveIfStillLeave removes the day only when its header still says
// leave. A day manually changed since approval is left alone.
func (s *Service) ClearLeaveIfStillLeave(userID int64, date time.Time) error {
	unlock := s.locks.Lock(keylock.UserDateKey(userID, date))
	defer unlock()

	header, err := s.repo.GetShift(userID, date)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeNotFound {
			return nil
		}
		return err
	}
	if header.ShiftType != ShiftTypeLeave {
		s.logger.Info("leave withdrawal skipped, day was changed manually",
			"user_id", userID, "date", date.Format("2006-01-02"), "shift_type", header.ShiftType)
		return nil
	}
	return s.clearDayLocked(s.repo, userID, date)
}

// SetStepOut flips the step-out flag, creating a default day header if none
// exists yet.
func (s *Service) SetStepOut(userID int64, date time.Time, value bool) error {
	return s.mutateHeader(userID, date, func(h *Shift) {
		h.StepOut = value
	})
}

func (s *Service) SetMealTicket(userID int64, date time.Time, value bool) error {
	return s.mutateHeader(userID, date, func(h *Shift) {
		h.MealTicket = value
	})
}

func (s *Service) SetPosition(userID int64, date time.Time, tag *string) error {
	return s.mutateHeader(userID, date, func(h *Shift) {
		h.Position = tag
	})
}

func (s *Service) SetPublished(userID int64, date time.Time, value bool) error {
	return s.mutateHeader(userID, date, func(h *Shift) {
		h.IsPublished = value
	})
}

func (s *Service) mutateHeader(userID int64, date time.Time, mutate func(*Shift)) error {
	unlock := s.locks.Lock(keylock.UserDateKey(userID, date))
	defer unlock()

	header, err := s.headerOrNew(s.repo, userID, date)
	if err != nil {
		return err
	}
	mutate(header)
	return s.repo.UpsertShift(header)
}

// headerOrNew loads the day's header or builds a fresh default day header.
func (s *Service) headerOrNew(repo Repository, userID int64, date time.Time) (*Shift, error) {
	header, err := repo.GetShift(userID, date)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeNotFound {
			return &Shift{
				UserID:     userID,
				ShiftDate:  date,
				ShiftType:  ShiftTypeDay,
				MealTicket: true,
			}, nil
		}
		return nil, err
	}
	return header, nil
}

// HasShift reports whether a header exists for the day.
func (s *Service) HasShift(userID int64, date time.Time) (bool, error) {
	_, err := s.repo.GetShift(userID, date)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateShiftWithWorkDetail inserts a day header plus a single work interval.
// Used by employment-period auto-registration; existing days are never
// touched by that path, so this is a plain create.
func (s *Service) CreateShiftWithWorkDetail(userID int64, date time.Time, interval Interval) error {
	unlock := s.locks.Lock(keylock.UserDateKey(userID, date))
	defer unlock()

	return s.repo.Transaction(func(tx Repository) error {
		header := &Shift{
			UserID:     userID,
			ShiftDate:  date,
			ShiftType:  ShiftTypeDay,
			MealTicket: true,
		}
		if err := tx.UpsertShift(header); err != nil {
			return err
		}
		return tx.CreateDetail(&ShiftDetail{
			UserID:    userID,
			ShiftDate: date,
			Type:      DetailTypeWork,
			Status:    StatusScheduled,
			StartTime: interval.Start,
			EndTime:   interval.End,
		})
	})
}

// CreateDetail inserts an interval record, running break/outing candidates
// through the overlap checker first.
func (s *Service) CreateDetail(dto CreateDetailDTO) (*ShiftDetail, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	date := dto.ParsedDate()
	status := dto.Status
	if status == "" {
		status = StatusScheduled
	}

	unlock := s.locks.Lock(keylock.UserDateKey(dto.UserID, date))
	defer unlock()

	if IsBreakKind(dto.Type) {
		if err := s.checkConflict(dto.UserID, status, Interval{Start: dto.StartTime, End: dto.EndTime}, 0); err != nil {
			return nil, err
		}
	}

	detail := &ShiftDetail{
		UserID:    dto.UserID,
		ShiftDate: date,
		Type:      dto.Type,
		Status:    status,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
	}
	if err := s.repo.CreateDetail(detail); err != nil {
		s.logger.Error("failed to create shift detail", "error", err, "user_id", dto.UserID)
		return nil, err
	}
	return detail, nil
}

func (s *Service) UpdateDetail(id int64, dto UpdateDetailDTO) (*ShiftDetail, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	detail, err := s.repo.GetDetail(id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(keylock.UserDateKey(detail.UserID, detail.ShiftDate))
	defer unlock()

	if dto.Type != "" {
		detail.Type = dto.Type
	}
	if dto.Status != "" {
		detail.Status = dto.Status
	}
	detail.StartTime = dto.StartTime
	detail.EndTime = dto.EndTime

	if IsBreakKind(detail.Type) {
		if err := s.checkConflict(detail.UserID, detail.Status, detail.Interval(), detail.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateDetail(detail); err != nil {
		s.logger.Error("failed to update shift detail", "error", err, "detail_id", id)
		return nil, err
	}
	return detail, nil
}

// ExtendDetail adjusts the detail's end time by delta minutes and re-runs
// the overlap check against the recomputed interval before committing.
func (s *Service) ExtendDetail(id int64, deltaMinutes int) (*ShiftDetail, error) {
	detail, err := s.repo.GetDetail(id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(keylock.UserDateKey(detail.UserID, detail.ShiftDate))
	defer unlock()

	newEnd := detail.EndTime.Add(time.Duration(deltaMinutes) * time.Minute)
	if !newEnd.After(detail.StartTime) {
		return nil, errors.NewValidationFieldError("end_time", "adjusted end_time must be after start_time", errors.ErrCodeInvalidInterval)
	}

	if IsBreakKind(detail.Type) {
		candidate := Interval{Start: detail.StartTime, End: newEnd}
		if err := s.checkConflict(detail.UserID, detail.Status, candidate, detail.ID); err != nil {
			return nil, err
		}
	}

	detail.EndTime = newEnd
	if err := s.repo.UpdateDetail(detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteDetail removes an interval record. A work detail is authoritative
// for the day's existence, so deleting one also drops the day's header;
// deleting a break or outing leaves the header in place.
func (s *Service) DeleteDetail(id int64) error {
	detail, err := s.repo.GetDetail(id)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(keylock.UserDateKey(detail.UserID, detail.ShiftDate))
	defer unlock()

	return s.repo.Transaction(func(tx Repository) error {
		if err := tx.DeleteDetail(id); err != nil {
			return err
		}
		if detail.Type == DetailTypeWork {
			return tx.DeleteShift(detail.UserID, detail.ShiftDate)
		}
		return nil
	})
}

// WorkingMinutes answers the collaborator read "the user's working minutes
// for date D": the summed duration of the day's work intervals.
func (s *Service) WorkingMinutes(userID int64, date time.Time) (int, error) {
	details, err := s.repo.ListDetails(userID, date)
	if err != nil {
		return 0, err
	}
	minutes := 0
	for _, d := range details {
		if d.Type == DetailTypeWork {
			minutes += d.Interval().Minutes()
		}
	}
	return minutes, nil
}

// DayViews joins header fields onto each user's detail rows for the date.
func (s *Service) DayViews(date time.Time) ([]*DayView, error) {
	shifts, err := s.repo.ListShiftsByDate(date)
	if err != nil {
		return nil, err
	}

	views := make([]*DayView, 0, len(shifts))
	for _, header := range shifts {
		details, err := s.repo.ListDetails(header.UserID, date)
		if err != nil {
			return nil, err
		}
		views = append(views, &DayView{
			UserID:      header.UserID,
			ShiftDate:   date.Format("2006-01-02"),
			ShiftType:   header.ShiftType,
			StepOut:     header.StepOut,
			Position:    header.Position,
			MealTicket:  header.MealTicket,
			IsPublished: header.IsPublished,
			Details:     details,
		})
	}
	return views, nil
}

// MonthShifts returns all headers within the month for the grid view.
func (s *Service) MonthShifts(monthStart, monthEnd time.Time) ([]*Shift, error) {
	return s.repo.ListShiftsByRange(monthStart, monthEnd)
}

// GetHeader returns the day's header, or a not-found error.
func (s *Service) GetHeader(userID int64, date time.Time) (*Shift, error) {
	return s.repo.GetShift(userID, date)
}

// RunAtomic executes fn against a store bound to one transaction. Sweeps and
// auto-registration wrap their whole per-date loop here so a failure rolls
// back the entire run.
func (s *Service) RunAtomic(fn func(tx *Service) error) error {
	return s.repo.Transaction(func(txRepo Repository) error {
		txService := &Service{
			repo:     txRepo,
			patterns: s.patterns,
			locks:    s.locks,
			logger:   s.logger,
		}
		return fn(txService)
	})
}

// CountLeaveDays counts leave headers for the user within [from, to].
func (s *Service) CountLeaveDays(userID int64, from, to time.Time) (int, error) {
	n, err := s.repo.CountLeaveShifts(userID, from, to)
	return int(n), err
}
