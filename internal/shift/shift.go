package shift

import (
	"time"
)

// Shift is the per-user, per-day header record. At most one row exists per
// (user_id, shift_date); the unique index and the per-key lock both defend
// this invariant.
type Shift struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_shifts_user_date"`
	ShiftDate   time.Time `json:"shift_date" gorm:"column:shift_date;type:date;not null;uniqueIndex:idx_shifts_user_date"`
	ShiftType   string    `json:"shift_type" gorm:"column:shift_type;not null"`
	StepOut     bool      `json:"step_out" gorm:"column:step_out;default:false"`
	Position    *string   `json:"position,omitempty" gorm:"column:position"`
	MealTicket  bool      `json:"meal_ticket" gorm:"column:meal_ticket;default:true"`
	IsPublished bool      `json:"is_published" gorm:"column:is_published;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Shift) TableName() string {
	return "shifts"
}

// ShiftDetail is a concrete time range within a day. It is deliberately NOT
// foreign-keyed to Shift: the association is the (user_id, shift_date) pair,
// and the store cascades keep the two record kinds consistent.
type ShiftDetail struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null;index:idx_shift_details_user_date"`
	ShiftDate time.Time `json:"shift_date" gorm:"column:shift_date;type:date;not null;index:idx_shift_details_user_date"`
	Type      string    `json:"type" gorm:"column:detail_type;not null"`
	Status    string    `json:"status" gorm:"column:status;not null;default:scheduled"`
	StartTime time.Time `json:"start_time" gorm:"column:start_time;not null"`
	EndTime   time.Time `json:"end_time" gorm:"column:end_time;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (ShiftDetail) TableName() string {
	return "shift_details"
}

const (
	ShiftTypeDay   = "day"
	ShiftTypeNight = "night"
	ShiftTypeLeave = "leave"
)

const (
	DetailTypeWork   = "work"
	DetailTypeBreak  = "break"
	DetailTypeOuting = "outing"
)

const (
	StatusScheduled = "scheduled"
	StatusActual    = "actual"
	StatusAbsent    = "absent"
)

func ValidShiftType(t string) bool {
	return t == ShiftTypeDay || t == ShiftTypeNight || t == ShiftTypeLeave
}

func ValidDetailType(t string) bool {
	return t == DetailTypeWork || t == DetailTypeBreak || t == DetailTypeOuting
}

func ValidStatus(s string) bool {
	return s == StatusScheduled || s == StatusActual || s == StatusAbsent
}

// IsBreakKind reports whether the detail participates in overlap checking.
// Work intervals are never overlap-checked.
func IsBreakKind(t string) bool {
	return t == DetailTypeBreak || t == DetailTypeOuting
}

// Interval is a half-open [Start, End) time range. End may fall on the next
// calendar day for cross-midnight shifts.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps applies the half-open overlap rule.
func (i Interval) Overlaps(other Interval) bool {
	return other.Start.Before(i.End) && other.End.After(i.Start)
}

func (i Interval) Minutes() int {
	return int(i.End.Sub(i.Start).Minutes())
}

func (d *ShiftDetail) Interval() Interval {
	return Interval{Start: d.StartTime, End: d.EndTime}
}

// DateOnly truncates a timestamp to its calendar date in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayView is the read model for the daily timeline: detail rows with the
// header fields joined on at read time. The header values are never stored
// on the detail row.
type DayView struct {
	UserID      int64          `json:"user_id"`
	ShiftDate   string         `json:"shift_date"`
	ShiftType   string         `json:"shift_type,omitempty"`
	StepOut     bool           `json:"step_out"`
	Position    *string        `json:"position,omitempty"`
	MealTicket  bool           `json:"meal_ticket"`
	IsPublished bool           `json:"is_published"`
	Details     []*ShiftDetail `json:"details"`
}
