package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/core/events"
	"github.com/arifwidianto/shift-management/internal/directory"
	"github.com/arifwidianto/shift-management/internal/shift"
)

// Service orchestrates bulk month editing, the preferred-holiday sweep and
// employment-period auto-registration. The sweep and auto-registration run
// inside one transaction; the bulk edit's atomicity is configurable because
// the legacy month-grid client relied on per-entry best-effort application.
type Service struct {
	dir            directory.Repository
	store          *shift.Service
	resolver       *PatternResolver
	bus            *events.EventBus
	atomicBulkEdit bool
	fallbackStart  string
	fallbackEnd    string
	logger         *slog.Logger
}

func NewService(
	dir directory.Repository,
	store *shift.Service,
	resolver *PatternResolver,
	bus *events.EventBus,
	cfg internal.SchedulerConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		dir:            dir,
		store:          store,
		resolver:       resolver,
		bus:            bus,
		atomicBulkEdit: cfg.AtomicBulkEdit,
		fallbackStart:  cfg.FallbackStart,
		fallbackEnd:    cfg.FallbackEnd,
		logger:         logger,
	}
}

// BulkUpsert applies a list of month-grid edits. A date falling on one of
// the user's preferred weekly holidays is force-cleared regardless of the
// requested value: the standing preference wins over the explicit input.
func (s *Service) BulkUpsert(dto BulkUpsertDTO) (*BulkResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	result := &BulkResult{}
	apply := func(store *shift.Service) error {
		for i, entry := range dto.Entries {
			user, err := s.dir.GetUser(entry.UserID)
			if err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			date := entry.ParsedDate()
			prefs := NormalizeWeekdays(user.PreferredWeekDayTokens())

			if prefs.MatchesDate(date) {
				if err := store.ClearDay(entry.UserID, date); err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				result.Overridden++
				continue
			}

			if err := store.SetShiftType(entry.UserID, date, entry.ShiftType); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			result.Applied++
		}
		return nil
	}

	var err error
	if s.atomicBulkEdit {
		err = s.store.RunAtomic(apply)
	} else {
		// best-effort: a failure leaves earlier entries committed
		err = apply(s.store)
	}
	if err != nil {
		s.logger.Error("bulk upsert failed", "error", err,
			"atomic", s.atomicBulkEdit, "applied", result.Applied)
		return nil, err
	}

	s.logger.Info("bulk upsert completed",
		"entries", len(dto.Entries),
		"applied", result.Applied,
		"overridden", result.Overridden)
	return result, nil
}

// SweepPreferredHolidays marks every active user's preferred weekdays in the
// month as leave. Days already marked leave are skipped. The whole month is
// one transaction.
func (s *Service) SweepPreferredHolidays(month string) (*GenerateResult, error) {
	monthStart, monthEnd, err := MonthRange(month)
	if err != nil {
		return nil, err
	}

	users, err := s.dir.ListActiveUsers()
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Month: month}
	err = s.store.RunAtomic(func(tx *shift.Service) error {
		for _, user := range users {
			prefs := NormalizeWeekdays(user.PreferredWeekDayTokens())
			if prefs.IsEmpty() {
				continue
			}
			for date := monthStart; !date.After(monthEnd); date = date.AddDate(0, 0, 1) {
				if !prefs.MatchesDate(date) {
					continue
				}
				header, err := tx.GetHeader(user.ID, date)
				if err == nil && header.ShiftType == shift.ShiftTypeLeave {
					result.Skipped++
					continue
				}
				if err != nil {
					if appErr, ok := internal.IsAppError(err); !ok || appErr.Type != internal.ErrorTypeNotFound {
						return err
					}
				}
				if err := tx.ApplyLeave(user.ID, date); err != nil {
					return err
				}
				result.Created++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("preferred holiday sweep failed", "error", err, "month", month)
		return nil, err
	}

	s.publishGenerated("sweep_preferred_holidays", result)
	return result, nil
}

// AutoRegisterEmploymentPeriod creates day shifts for every active user's
// employment window within the month. Existing shifts are never overwritten;
// they are reported as skipped. Preferred weekdays are left untouched.
func (s *Service) AutoRegisterEmploymentPeriod(month string) (*GenerateResult, error) {
	monthStart, monthEnd, err := MonthRange(month)
	if err != nil {
		return nil, err
	}

	users, err := s.dir.ListActiveUsers()
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Month: month}
	err = s.store.RunAtomic(func(tx *shift.Service) error {
		for _, user := range users {
			if user.EmploymentStartDate == nil {
				continue
			}

			from := shift.DateOnly(*user.EmploymentStartDate)
			if from.Before(monthStart) {
				from = monthStart
			}
			to := monthEnd
			if user.EmploymentEndDate != nil {
				if end := shift.DateOnly(*user.EmploymentEndDate); end.Before(to) {
					to = end
				}
			}
			if from.After(to) {
				continue
			}

			prefs := NormalizeWeekdays(user.PreferredWeekDayTokens())
			for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
				if prefs.MatchesDate(date) {
					continue
				}
				if _, err := tx.GetHeader(user.ID, date); err == nil {
					result.Skipped++
					continue
				} else if appErr, ok := internal.IsAppError(err); !ok || appErr.Type != internal.ErrorTypeNotFound {
					return err
				}

				interval, err := s.registrationInterval(user, date)
				if err != nil {
					return err
				}
				if err := tx.CreateShiftWithWorkDetail(user.ID, date, interval); err != nil {
					return err
				}
				result.Created++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("employment period auto-registration failed", "error", err, "month", month)
		return nil, err
	}

	s.publishGenerated("auto_register_employment_period", result)
	return result, nil
}

// registrationInterval picks working hours for an auto-registered day:
// personal defaults, else the day-shift template, else the configured
// fallback (09:00-18:00 unless overridden).
func (s *Service) registrationInterval(user *directory.User, date time.Time) (shift.Interval, error) {
	res, err := s.resolver.Resolve(user, date, shift.ShiftTypeDay)
	if err != nil {
		return shift.Interval{}, err
	}
	if !res.Unresolved && len(res.Intervals) > 0 {
		return res.Intervals[0], nil
	}
	return intervalOnDate(date, s.fallbackStart, s.fallbackEnd)
}

func (s *Service) publishGenerated(operation string, result *GenerateResult) {
	s.logger.Info("schedule generated",
		"operation", operation,
		"month", result.Month,
		"created", result.Created,
		"skipped", result.Skipped)
	if s.bus != nil {
		event := events.NewScheduleGeneratedEvent(operation, result.Month, result.Created, result.Skipped)
		_ = s.bus.Publish(context.Background(), event)
	}
}

// MonthRange expands a "YYYY-MM" month token into its first and last date.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("month", "month must be in YYYY-MM format", internal.ErrCodeInvalidMonth)
	}
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}
