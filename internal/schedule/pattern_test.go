package schedule_test

import (
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/directory"
	"github.com/arifwidianto/shift-management/internal/schedule"
	"github.com/arifwidianto/shift-management/internal/shift"
)

// Mock directory repository for testing
type mockDirectoryRepository struct {
	users     map[int64]*directory.User
	holidays  map[string]bool
	templates []*directory.DefaultShift
	settings  map[int64]*directory.UserShiftSetting
}

func newMockDirectoryRepository() *mockDirectoryRepository {
	return &mockDirectoryRepository{
		users:    make(map[int64]*directory.User),
		holidays: make(map[string]bool),
		settings: make(map[int64]*directory.UserShiftSetting),
	}
}

func (m *mockDirectoryRepository) GetUser(id int64) (*directory.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (m *mockDirectoryRepository) ListActiveUsers() ([]*directory.User, error) {
	var out []*directory.User
	for _, u := range m.users {
		if u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockDirectoryRepository) IsHoliday(date time.Time) (bool, error) {
	return m.holidays[date.Format("2006-01-02")], nil
}

func (m *mockDirectoryRepository) FindTemplates(weekday int, dayType, shiftType string) ([]*directory.DefaultShift, error) {
	var out []*directory.DefaultShift
	for _, t := range m.templates {
		if t.Weekday == weekday && t.DayType == dayType && t.ShiftType == shiftType {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockDirectoryRepository) GetSetting(userID int64) (*directory.UserShiftSetting, error) {
	if s, ok := m.settings[userID]; ok {
		return s, nil
	}
	return &directory.UserShiftSetting{UserID: userID}, nil
}

func patternTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strptr(s string) *string { return &s }

var _ = Describe("PatternResolver", func() {
	var (
		dir      *mockDirectoryRepository
		resolver *schedule.PatternResolver
		date     time.Time
	)

	BeforeEach(func() {
		dir = newMockDirectoryRepository()
		resolver = schedule.NewPatternResolver(dir, patternTestLogger())
		// 2026-04-10 is a Friday
		date = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	})

	Context("when the user has personal default times", func() {
		It("should use them ahead of any template", func() {
			user := &directory.User{
				ID:               1,
				DefaultStartTime: strptr("10:00"),
				DefaultEndTime:   strptr("19:00"),
			}
			dir.templates = append(dir.templates, &directory.DefaultShift{
				Weekday: 5, DayType: directory.DayTypeWeekday, ShiftType: shift.ShiftTypeDay,
				StartTime: "09:00", EndTime: "18:00",
			})

			res, err := resolver.Resolve(user, date, shift.ShiftTypeDay)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Unresolved).To(BeFalse())
			Expect(res.Intervals).To(HaveLen(1))
			Expect(res.Intervals[0].Start.Hour()).To(Equal(10))
			Expect(res.Intervals[0].End.Hour()).To(Equal(19))
		})

		It("should treat 00:00 defaults as unset", func() {
			user := &directory.User{
				ID:               1,
				DefaultStartTime: strptr("00:00"),
				DefaultEndTime:   strptr("00:00"),
			}

			res, err := resolver.Resolve(user, date, shift.ShiftTypeDay)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Unresolved).To(BeTrue())
		})

		It("should roll a night shift's end into the next day", func() {
			user := &directory.User{
				ID:               1,
				DefaultStartTime: strptr("22:00"),
				DefaultEndTime:   strptr("06:00"),
			}

			res, err := resolver.Resolve(user, date, shift.ShiftTypeNight)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Intervals).To(HaveLen(1))
			iv := res.Intervals[0]
			Expect(iv.End.Day()).To(Equal(11))
			Expect(iv.Minutes()).To(Equal(480))
		})
	})

	Context("when resolution falls through to templates", func() {
		It("should pick the weekday template on an ordinary day", func() {
			user := &directory.User{ID: 1}
			dir.templates = append(dir.templates, &directory.DefaultShift{
				Weekday: 5, DayType: directory.DayTypeWeekday, ShiftType: shift.ShiftTypeDay,
				StartTime: "09:00", EndTime: "18:00",
			})

			res, err := resolver.Resolve(user, date, shift.ShiftTypeDay)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Unresolved).To(BeFalse())
			Expect(res.Intervals[0].Minutes()).To(Equal(540))
		})

		It("should classify a calendar holiday and use the holiday template", func() {
			user := &directory.User{ID: 1}
			dir.holidays[date.Format("2006-01-02")] = true
			dir.templates = append(dir.templates,
				&directory.DefaultShift{
					Weekday: 5, DayType: directory.DayTypeWeekday, ShiftType: shift.ShiftTypeDay,
					StartTime: "09:00", EndTime: "18:00",
				},
				&directory.DefaultShift{
					Weekday: 5, DayType: directory.DayTypeHoliday, ShiftType: shift.ShiftTypeDay,
					StartTime: "10:00", EndTime: "16:00",
				},
			)

			res, err := resolver.Resolve(user, date, shift.ShiftTypeDay)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Intervals[0].Start.Hour()).To(Equal(10))
			Expect(res.Intervals[0].Minutes()).To(Equal(360))
		})

		It("should match on shift type", func() {
			user := &directory.User{ID: 1}
			dir.templates = append(dir.templates, &directory.DefaultShift{
				Weekday: 5, DayType: directory.DayTypeWeekday, ShiftType: shift.ShiftTypeNight,
				StartTime: "21:00", EndTime: "06:00",
			})

			res, err := resolver.Resolve(user, date, shift.ShiftTypeDay)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Unresolved).To(BeTrue())
		})
	})

	Context("when nothing matches", func() {
		It("should report an unresolved zero-length placeholder at midnight", func() {
			user := &directory.User{ID: 1}

			res, err := resolver.Resolve(user, date, shift.ShiftTypeDay)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Unresolved).To(BeTrue())
			Expect(res.Intervals).To(HaveLen(1))
			Expect(res.Intervals[0].Start).To(Equal(shift.DateOnly(date)))
			Expect(res.Intervals[0].Minutes()).To(Equal(0))
		})
	})
})

var _ = Describe("StoreSource", func() {
	It("should fetch the user and delegate to the resolver", func() {
		dir := newMockDirectoryRepository()
		dir.users[7] = &directory.User{
			ID:               7,
			Status:           directory.UserStatusActive,
			DefaultStartTime: strptr("08:00"),
			DefaultEndTime:   strptr("17:00"),
		}
		source := schedule.NewStoreSource(schedule.NewPatternResolver(dir, patternTestLogger()), dir)

		intervals, unresolved, err := source.ResolveWorkIntervals(7, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), shift.ShiftTypeDay)
		Expect(err).ToNot(HaveOccurred())
		Expect(unresolved).To(BeFalse())
		Expect(intervals).To(HaveLen(1))
		Expect(intervals[0].Minutes()).To(Equal(540))
	})

	It("should surface an unknown user", func() {
		dir := newMockDirectoryRepository()
		source := schedule.NewStoreSource(schedule.NewPatternResolver(dir, patternTestLogger()), dir)

		_, _, err := source.ResolveWorkIntervals(99, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), shift.ShiftTypeDay)
		Expect(err).To(HaveOccurred())
	})
})
