package schedule

import (
	"fmt"
	"time"

	"github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/core/common/validation"
	"github.com/arifwidianto/shift-management/internal/shift"
)

type BulkEntryDTO struct {
	UserID    int64   `json:"user_id"`
	Date      string  `json:"date"`
	ShiftType *string `json:"shift_type"`
}

func (e BulkEntryDTO) ParsedDate() time.Time {
	d, _ := time.Parse("2006-01-02", e.Date)
	return d
}

type BulkUpsertDTO struct {
	Entries []BulkEntryDTO `json:"entries"`
}

func (dto BulkUpsertDTO) Validate() *internal.AppError {
	if len(dto.Entries) == 0 {
		return internal.NewValidationFieldError("entries", "entries must not be empty", internal.ErrCodeValidationFailed)
	}
	for i, entry := range dto.Entries {
		v := validation.NewValidator()
		v.Field("user_id", entry.UserID).Required()
		v.Field("date", entry.Date).Required().Date()
		if err := v.Validate(); err != nil {
			return internal.NewValidationFieldError(
				fmt.Sprintf("entries[%d]", i), err.GetDetailedMessage(), internal.ErrCodeValidationFailed)
		}
		if entry.ShiftType != nil && *entry.ShiftType != "" && !shift.ValidShiftType(*entry.ShiftType) {
			return internal.NewValidationFieldError(
				fmt.Sprintf("entries[%d].shift_type", i), "shift_type must be day, night or leave", internal.ErrCodeInvalidShiftType)
		}
	}
	return nil
}

// BulkResult reports the outcome of a bulk month edit. Overridden counts
// entries force-cleared by the preferred-weekday rule.
type BulkResult struct {
	Applied    int `json:"applied"`
	Overridden int `json:"overridden"`
}

// GenerateResult reports a sweep or auto-registration run.
type GenerateResult struct {
	Month   string `json:"month"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}
