package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// EventLeaveSideEffectFailed is published when a leave decision committed
	// its status change but the follow-up shift mutation failed. The status
	// change is never rolled back; subscribers (and tests) observe the
	// partial failure here instead of it being swallowed.
	EventLeaveSideEffectFailed = "leave.side_effect_failed"

	// EventScheduleGenerated is published after a sweep or employment-period
	// auto-registration run completes.
	EventScheduleGenerated = "schedule.generated"
)

func NewLeaveSideEffectFailedEvent(applicationID, userID int64, date string, cause error) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventLeaveSideEffectFailed,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"application_id": applicationID,
			"user_id":        userID,
			"date":           date,
			"error":          cause.Error(),
		},
	}
}

func NewScheduleGeneratedEvent(operation, month string, created, skipped int) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventScheduleGenerated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"operation": operation,
			"month":     month,
			"created":   created,
			"skipped":   skipped,
		},
	}
}
