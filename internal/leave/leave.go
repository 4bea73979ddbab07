package leave

import (
	"time"
)

// Application is a user-submitted request to be marked absent on a date.
type Application struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null;index"`
	Date      time.Time `json:"date" gorm:"column:application_date;type:date;not null"`
	Type      string    `json:"type" gorm:"column:application_type;not null;default:leave"`
	Status    string    `json:"status" gorm:"column:status;not null;default:pending"`
	Reason    string    `json:"reason" gorm:"column:reason"`
	DecidedBy *int64    `json:"decided_by,omitempty" gorm:"column:decided_by"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Application) TableName() string {
	return "shift_applications"
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const TypeLeave = "leave"

// CanTransitionTo encodes the observed lifecycle: a pending application is
// decided either way; an approved one may be withdrawn back to pending or
// flipped to rejected. A rejected application is terminal.
func (a *Application) CanTransitionTo(next string) bool {
	if next == a.Status {
		// re-deciding to the same status is allowed and must be idempotent
		return next == StatusApproved || next == StatusRejected
	}
	switch a.Status {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved:
		return next == StatusPending || next == StatusRejected
	default:
		return false
	}
}

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// QuotaReport is the read-only usage view against the monthly leave limit.
// Remaining is nil when no limit is configured. Usage above the limit is
// reported, never blocked.
type QuotaReport struct {
	UserID    int64  `json:"user_id"`
	Month     string `json:"month"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining *int   `json:"remaining"`
}
