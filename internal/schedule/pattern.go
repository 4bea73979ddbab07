package schedule

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arifwidianto/shift-management/internal/directory"
	"github.com/arifwidianto/shift-management/internal/shift"
)

// PatternResolver turns a (user, date, shift type) into concrete working
// intervals. Resolution order: the user's personal default times, then the
// holiday/weekday template table, then nothing - in which case the resolver
// reports the zero-length placeholder at date 00:00 and flags the result
// unresolved so callers can tell it apart from a genuine zero-duration shift.
type PatternResolver struct {
	dir    directory.Repository
	logger *slog.Logger
}

func NewPatternResolver(dir directory.Repository, logger *slog.Logger) *PatternResolver {
	return &PatternResolver{dir: dir, logger: logger}
}

// Resolution is the outcome of a pattern lookup.
type Resolution struct {
	Intervals  []shift.Interval
	Unresolved bool
}

// Resolve applies the three-step lookup for the given user and date.
func (r *PatternResolver) Resolve(user *directory.User, date time.Time, shiftType string) (Resolution, error) {
	if user.HasDefaultTimes() {
		iv, err := intervalOnDate(date, *user.DefaultStartTime, *user.DefaultEndTime)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Intervals: []shift.Interval{iv}}, nil
	}

	holiday, err := r.dir.IsHoliday(date)
	if err != nil {
		return Resolution{}, err
	}
	dayType := directory.DayTypeWeekday
	if holiday {
		dayType = directory.DayTypeHoliday
	}

	templates, err := r.dir.FindTemplates(int(date.Weekday()), dayType, shiftType)
	if err != nil {
		return Resolution{}, err
	}

	if len(templates) > 0 {
		intervals := make([]shift.Interval, 0, len(templates))
		for _, t := range templates {
			iv, err := intervalOnDate(date, t.StartTime, t.EndTime)
			if err != nil {
				return Resolution{}, err
			}
			intervals = append(intervals, iv)
		}
		return Resolution{Intervals: intervals}, nil
	}

	// Placeholder: a work day whose hours are undetermined.
	midnight := shift.DateOnly(date)
	return Resolution{
		Intervals:  []shift.Interval{{Start: midnight, End: midnight}},
		Unresolved: true,
	}, nil
}

// StoreSource adapts the resolver to the store's PatternSource contract,
// fetching the user itself.
type StoreSource struct {
	resolver *PatternResolver
	dir      directory.Repository
}

func NewStoreSource(resolver *PatternResolver, dir directory.Repository) *StoreSource {
	return &StoreSource{resolver: resolver, dir: dir}
}

func (s *StoreSource) ResolveWorkIntervals(userID int64, date time.Time, shiftType string) ([]shift.Interval, bool, error) {
	user, err := s.dir.GetUser(userID)
	if err != nil {
		return nil, false, err
	}
	res, err := s.resolver.Resolve(user, date, shiftType)
	if err != nil {
		return nil, false, err
	}
	return res.Intervals, res.Unresolved, nil
}

// intervalOnDate anchors two times of day onto the date. An end at or before
// the start rolls into the next calendar day (night shifts cross midnight).
func intervalOnDate(date time.Time, startTOD, endTOD string) (shift.Interval, error) {
	start, err := combineDateTime(date, startTOD)
	if err != nil {
		return shift.Interval{}, err
	}
	end, err := combineDateTime(date, endTOD)
	if err != nil {
		return shift.Interval{}, err
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return shift.Interval{Start: start, End: end}, nil
}

func combineDateTime(date time.Time, tod string) (time.Time, error) {
	tod = strings.TrimSpace(tod)
	layout := "15:04"
	if strings.Count(tod, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, tod)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", tod, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, date.Location()), nil
}
