package leave

import (
	"time"

	"github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/core/common/validation"
)

type SubmitApplicationDTO struct {
	UserID int64  `json:"user_id"`
	Date   string `json:"date"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (dto SubmitApplicationDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("date", dto.Date).Required()
	v.Field("reason", dto.Reason).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	if _, err := dto.ParsedDate(); err != nil {
		return internal.NewValidationFieldError("date", "date must be a date in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	}
	return nil
}

// ParsedDate extracts the calendar date from the submitted value. Clients
// send plain dates as well as full timestamps with timezone offsets; only
// the literal date portion counts.
func (dto SubmitApplicationDTO) ParsedDate() (time.Time, error) {
	raw := dto.Date
	if len(raw) > 10 {
		raw = raw[:10]
	}
	return time.Parse("2006-01-02", raw)
}

type DecideApplicationDTO struct {
	Status string `json:"status"`
}

func (dto DecideApplicationDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("status", dto.Status).Required().OneOf(StatusPending, StatusApproved, StatusRejected)
	return v.Validate()
}
