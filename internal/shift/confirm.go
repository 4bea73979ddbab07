package shift

import (
	"sort"
	"time"

	"github.com/arifwidianto/shift-management/internal/core/keylock"
)

// ToggleConfirmation flips the confirmation status of every work detail on
// the date, across all users. With no explicit action the target is derived
// from the day itself: any scheduled work detail means the day still needs
// confirming.
//
// The flip is monotonic per direction: confirming touches only scheduled
// rows, unconfirming only actual rows. Absent rows are never changed.
//
// Detail mutations serialize on per-(user, date) keys, so the toggle takes
// the same key for every user seen on the date before re-reading. A user
// whose first detail lands between the two reads is left for the next call.
func (s *Service) ToggleConfirmation(date time.Time, action string) (*ConfirmationResult, error) {
	result := &ConfirmationResult{Date: date.Format("2006-01-02")}

	details, err := s.repo.ListWorkDetailsByDate(date)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		result.NoOp = true
		s.logger.Info("confirmation toggle no-op, no work details", "date", result.Date)
		return result, nil
	}

	locked, unlock := s.lockUsers(date, details)
	defer unlock()

	details, err = s.repo.ListWorkDetailsByDate(date)
	if err != nil {
		return nil, err
	}
	guarded := details[:0]
	for _, d := range details {
		if _, ok := locked[d.UserID]; ok {
			guarded = append(guarded, d)
		}
	}
	details = guarded
	if len(details) == 0 {
		result.NoOp = true
		return result, nil
	}

	target := targetStatus(details, action)
	result.TargetStatus = target

	var flipIDs []int64
	for _, d := range details {
		switch target {
		case StatusActual:
			if d.Status == StatusScheduled {
				flipIDs = append(flipIDs, d.ID)
			}
		case StatusScheduled:
			if d.Status == StatusActual {
				flipIDs = append(flipIDs, d.ID)
			}
		}
	}

	if len(flipIDs) > 0 {
		if err := s.repo.UpdateDetailStatus(flipIDs, target); err != nil {
			return nil, err
		}
	}
	result.Flipped = len(flipIDs)

	s.logger.Info("confirmation toggled",
		"date", result.Date,
		"target", target,
		"flipped", result.Flipped)
	return result, nil
}

// lockUsers acquires the (user, date) key for every user appearing in
// details, in ascending user order so two toggles cannot deadlock.
func (s *Service) lockUsers(date time.Time, details []*ShiftDetail) (map[int64]struct{}, func()) {
	seen := make(map[int64]struct{}, len(details))
	ids := make([]int64, 0, len(details))
	for _, d := range details {
		if _, ok := seen[d.UserID]; !ok {
			seen[d.UserID] = struct{}{}
			ids = append(ids, d.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	unlocks := make([]func(), 0, len(ids))
	for _, id := range ids {
		unlocks = append(unlocks, s.locks.Lock(keylock.UserDateKey(id, date)))
	}
	return seen, func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func targetStatus(details []*ShiftDetail, action string) string {
	switch action {
	case ConfirmActionConfirm:
		return StatusActual
	case ConfirmActionUnconfirm:
		return StatusScheduled
	}
	// auto-toggle: confirm while anything is still scheduled
	for _, d := range details {
		if d.Status == StatusScheduled {
			return StatusActual
		}
	}
	return StatusScheduled
}
