package shift

import (
	"time"

	errors "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/core/common/validation"
)

// UpsertDayDTO sets or clears the shift type of a single (user, date) cell.
// A nil or empty ShiftType clears the day.
type UpsertDayDTO struct {
	UserID    int64   `json:"user_id"`
	Date      string  `json:"date"`
	ShiftType *string `json:"shift_type"`
}

func (dto UpsertDayDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("date", dto.Date).Required().Date()
	if err := v.Validate(); err != nil {
		return err
	}
	if dto.ShiftType != nil && *dto.ShiftType != "" && !ValidShiftType(*dto.ShiftType) {
		return errors.NewValidationFieldError("shift_type", "shift_type must be day, night or leave", errors.ErrCodeInvalidShiftType)
	}
	return nil
}

func (dto UpsertDayDTO) ParsedDate() time.Time {
	d, _ := time.Parse("2006-01-02", dto.Date)
	return d
}

type CreateDetailDTO struct {
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (dto CreateDetailDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("date", dto.Date).Required().Date()
	v.Field("type", dto.Type).Required().OneOf(DetailTypeWork, DetailTypeBreak, DetailTypeOuting)
	v.Field("status", dto.Status).OneOf(StatusScheduled, StatusActual, StatusAbsent)
	if err := v.Validate(); err != nil {
		return err
	}
	return validation.ValidateInterval(dto.StartTime, dto.EndTime)
}

func (dto CreateDetailDTO) ParsedDate() time.Time {
	d, _ := time.Parse("2006-01-02", dto.Date)
	return d
}

type UpdateDetailDTO struct {
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (dto UpdateDetailDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("type", dto.Type).OneOf(DetailTypeWork, DetailTypeBreak, DetailTypeOuting)
	v.Field("status", dto.Status).OneOf(StatusScheduled, StatusActual, StatusAbsent)
	if err := v.Validate(); err != nil {
		return err
	}
	return validation.ValidateInterval(dto.StartTime, dto.EndTime)
}

// ExtendDetailDTO shifts a detail's end time by a signed number of minutes.
type ExtendDetailDTO struct {
	DeltaMinutes int `json:"delta_minutes"`
}

func (dto ExtendDetailDTO) Validate() *errors.AppError {
	if dto.DeltaMinutes == 0 {
		return errors.NewValidationFieldError("delta_minutes", "delta_minutes must be non-zero", errors.ErrCodeValidationFailed)
	}
	return nil
}

const (
	ConfirmActionConfirm   = "confirm"
	ConfirmActionUnconfirm = "unconfirm"
)

type ToggleConfirmationDTO struct {
	Date   string `json:"date"`
	Action string `json:"action,omitempty"`
}

func (dto ToggleConfirmationDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("date", dto.Date).Required().Date()
	v.Field("action", dto.Action).OneOf(ConfirmActionConfirm, ConfirmActionUnconfirm)
	return v.Validate()
}

type FlagDTO struct {
	UserID int64  `json:"user_id"`
	Date   string `json:"date"`
	Value  bool   `json:"value"`
}

func (dto FlagDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("date", dto.Date).Required().Date()
	return v.Validate()
}

type PositionDTO struct {
	UserID int64   `json:"user_id"`
	Date   string  `json:"date"`
	Tag    *string `json:"tag"`
}

func (dto PositionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("date", dto.Date).Required().Date()
	if dto.Tag != nil {
		v.Field("tag", *dto.Tag).MaxLength(100)
	}
	return v.Validate()
}

// ConfirmationResult reports what a confirmation toggle did.
type ConfirmationResult struct {
	Date         string `json:"date"`
	TargetStatus string `json:"target_status,omitempty"`
	Flipped      int    `json:"flipped"`
	NoOp         bool   `json:"no_op"`
}
