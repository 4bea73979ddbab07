package leave

import (
	"log/slog"
	"time"

	"github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/directory"
)

// QuotaReporter computes leave usage against the per-user monthly limit.
// Reporting only: nothing in the workflow consults it before accepting or
// approving an application.
type QuotaReporter struct {
	dir    directory.Repository
	shifts ShiftStore
	logger *slog.Logger
}

func NewQuotaReporter(dir directory.Repository, shifts ShiftStore, logger *slog.Logger) *QuotaReporter {
	return &QuotaReporter{dir: dir, shifts: shifts, logger: logger}
}

func (q *QuotaReporter) Report(userID int64, month string) (*QuotaReport, error) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, internal.NewValidationFieldError("month", "month must be in YYYY-MM format", internal.ErrCodeInvalidMonth)
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	setting, err := q.dir.GetSetting(userID)
	if err != nil {
		return nil, err
	}

	used, err := q.shifts.CountLeaveDays(userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	report := &QuotaReport{
		UserID: userID,
		Month:  month,
		Limit:  setting.MonthlyLeaveLimit,
		Used:   used,
	}
	if setting.MonthlyLeaveLimit > 0 {
		remaining := setting.MonthlyLeaveLimit - used
		if remaining < 0 {
			remaining = 0
		}
		report.Remaining = &remaining
	}
	return report, nil
}
