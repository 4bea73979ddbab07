package directory

import (
	"strings"
	"time"
)

// The directory package holds the read-only collaborators of the scheduling
// core: the staff directory, the holiday calendar, the default shift template
// table and per-user scheduling settings. The core never writes to any of
// these; they are maintained elsewhere.

const (
	UserStatusActive  = "active"
	UserStatusRetired = "retired"
	UserStatusShared  = "shared"
)

const (
	DayTypeWeekday = "weekday"
	DayTypeHoliday = "holiday"
)

type User struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"column:name;not null"`
	Position int    `json:"position" gorm:"column:position"`
	Status   string `json:"status" gorm:"column:status;default:active"`

	// PreferredWeekDays is stored as the raw, comma-separated token list the
	// operations UI submits. Representations vary (integers, English names,
	// Japanese single characters); only the weekday normalizer may interpret it.
	PreferredWeekDays string `json:"preferred_week_days" gorm:"column:preferred_week_days"`

	DefaultStartTime *string `json:"default_start_time,omitempty" gorm:"column:default_start_time"`
	DefaultEndTime   *string `json:"default_end_time,omitempty" gorm:"column:default_end_time"`

	EmploymentStartDate *time.Time `json:"employment_start_date,omitempty" gorm:"column:employment_start_date;type:date"`
	EmploymentEndDate   *time.Time `json:"employment_end_date,omitempty" gorm:"column:employment_end_date;type:date"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// HasDefaultTimes reports whether the user carries usable personal default
// working hours. "00:00" (and "00:00:00") means unset, not midnight.
func (u *User) HasDefaultTimes() bool {
	return timeOfDaySet(u.DefaultStartTime) && timeOfDaySet(u.DefaultEndTime)
}

func timeOfDaySet(tod *string) bool {
	if tod == nil {
		return false
	}
	v := strings.TrimSpace(*tod)
	return v != "" && v != "00:00" && v != "00:00:00"
}

// PreferredWeekDayTokens splits the raw preference list into tokens for the
// weekday normalizer.
func (u *User) PreferredWeekDayTokens() []string {
	if u.PreferredWeekDays == "" {
		return nil
	}
	parts := strings.Split(u.PreferredWeekDays, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

type Holiday struct {
	ID   int64     `json:"id" gorm:"primaryKey"`
	Date time.Time `json:"date" gorm:"column:holiday_date;type:date;uniqueIndex"`
	Name string    `json:"name" gorm:"column:name"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// DefaultShift is a working-hours template keyed by weekday, day type and
// shift type. Static reference data, not owned by any user.
type DefaultShift struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	Weekday   int    `json:"weekday" gorm:"column:weekday;not null"`
	DayType   string `json:"day_type" gorm:"column:day_type;not null"`
	ShiftType string `json:"shift_type" gorm:"column:shift_type;not null"`
	StartTime string `json:"start_time" gorm:"column:start_time;not null"`
	EndTime   string `json:"end_time" gorm:"column:end_time;not null"`
}

func (DefaultShift) TableName() string {
	return "default_shifts"
}

type UserShiftSetting struct {
	ID     int64 `json:"id" gorm:"primaryKey"`
	UserID int64 `json:"user_id" gorm:"column:user_id;uniqueIndex;not null"`

	// MonthlyLeaveLimit of 0 means unlimited.
	MonthlyLeaveLimit int `json:"monthly_leave_limit" gorm:"column:monthly_leave_limit;default:0"`
}

func (UserShiftSetting) TableName() string {
	return "user_shift_settings"
}

// Repository is the read-only access contract for directory data.
type Repository interface {
	GetUser(id int64) (*User, error)
	ListActiveUsers() ([]*User, error)
	IsHoliday(date time.Time) (bool, error)
	FindTemplates(weekday int, dayType, shiftType string) ([]*DefaultShift, error)
	GetSetting(userID int64) (*UserShiftSetting, error)
}
