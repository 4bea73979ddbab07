package shift

import (
	errors "github.com/arifwidianto/shift-management/internal"
)

// checkConflict decides whether a candidate break/outing interval collides
// with the user's existing break/outing intervals.
//
// An actual candidate is only compared against other actual rows: confirmed
// reality may disagree with what was planned. A scheduled candidate is
// compared against every break/outing row regardless of status.
// excludeID lets updates ignore the record being modified. The repository
// only returns rows intersecting the candidate window, so the scan stays
// bounded no matter how much history the user has.
func (s *Service) checkConflict(userID int64, status string, candidate Interval, excludeID int64) error {
	actualOnly := status == StatusActual
	existing, err := s.repo.ListBreakOutings(userID, actualOnly, excludeID, candidate.Start, candidate.End)
	if err != nil {
		return err
	}

	for _, d := range existing {
		if candidate.Overlaps(d.Interval()) {
			s.logger.Warn("interval conflict",
				"user_id", userID,
				"candidate_start", candidate.Start,
				"candidate_end", candidate.End,
				"existing_id", d.ID)
			return errors.NewConflictError("start_time",
				"interval overlaps an existing break or outing",
				errors.ErrCodeIntervalConflict)
		}
	}
	return nil
}
