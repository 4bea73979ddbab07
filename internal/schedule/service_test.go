package schedule_test

import (
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/core/events"
	"github.com/arifwidianto/shift-management/internal/core/keylock"
	"github.com/arifwidianto/shift-management/internal/directory"
	"github.com/arifwidianto/shift-management/internal/schedule"
	"github.com/arifwidianto/shift-management/internal/shift"
)

// In-memory shift repository backing a real store for generator tests.
type memShiftRepository struct {
	mu           sync.Mutex
	shifts       map[string]*shift.Shift
	details      map[int64]*shift.ShiftDetail
	nextShiftID  int64
	nextDetailID int64
}

func newMemShiftRepository() *memShiftRepository {
	return &memShiftRepository{
		shifts:       make(map[string]*shift.Shift),
		details:      make(map[int64]*shift.ShiftDetail),
		nextShiftID:  1,
		nextDetailID: 1,
	}
}

func memKey(userID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", userID, date.Format("2006-01-02"))
}

func (m *memShiftRepository) GetShift(userID int64, date time.Time) (*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shifts[memKey(userID, date)]
	if !ok {
		return nil, internal.ErrShiftNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memShiftRepository) UpsertShift(s *shift.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(s.UserID, s.ShiftDate)
	if existing, ok := m.shifts[key]; ok {
		s.ID = existing.ID
	} else {
		s.ID = m.nextShiftID
		m.nextShiftID++
	}
	copied := *s
	m.shifts[key] = &copied
	return nil
}

func (m *memShiftRepository) DeleteShift(userID int64, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shifts, memKey(userID, date))
	return nil
}

func (m *memShiftRepository) ListShiftsByDate(date time.Time) ([]*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*shift.Shift
	for _, s := range m.shifts {
		if s.ShiftDate.Equal(date) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memShiftRepository) ListShiftsByRange(from, to time.Time) ([]*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*shift.Shift
	for _, s := range m.shifts {
		if !s.ShiftDate.Before(from) && !s.ShiftDate.After(to) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memShiftRepository) CountLeaveShifts(userID int64, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.shifts {
		if s.UserID == userID && s.ShiftType == shift.ShiftTypeLeave &&
			!s.ShiftDate.Before(from) && !s.ShiftDate.After(to) {
			n++
		}
	}
	return n, nil
}

func (m *memShiftRepository) CreateDetail(d *shift.ShiftDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.nextDetailID
	m.nextDetailID++
	copied := *d
	m.details[d.ID] = &copied
	return nil
}

func (m *memShiftRepository) GetDetail(id int64) (*shift.ShiftDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.details[id]
	if !ok {
		return nil, internal.ErrDetailNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *memShiftRepository) UpdateDetail(d *shift.ShiftDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *d
	m.details[d.ID] = &copied
	return nil
}

func (m *memShiftRepository) DeleteDetail(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.details, id)
	return nil
}

func (m *memShiftRepository) DeleteDetails(userID int64, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.details {
		if d.UserID == userID && d.ShiftDate.Equal(date) {
			delete(m.details, id)
		}
	}
	return nil
}

func (m *memShiftRepository) ListDetails(userID int64, date time.Time) ([]*shift.ShiftDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*shift.ShiftDetail
	for _, d := range m.details {
		if d.UserID == userID && d.ShiftDate.Equal(date) {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memShiftRepository) ListBreakOutings(userID int64, actualOnly bool, excludeID int64, from, to time.Time) ([]*shift.ShiftDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*shift.ShiftDetail
	for _, d := range m.details {
		if d.UserID != userID || !shift.IsBreakKind(d.Type) || d.ID == excludeID {
			continue
		}
		if actualOnly && d.Status != shift.StatusActual {
			continue
		}
		if !d.StartTime.Before(to) || !d.EndTime.After(from) {
			continue
		}
		copied := *d
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memShiftRepository) ListWorkDetailsByDate(date time.Time) ([]*shift.ShiftDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*shift.ShiftDetail
	for _, d := range m.details {
		if d.Type == shift.DetailTypeWork && d.ShiftDate.Equal(date) {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memShiftRepository) UpdateDetailStatus(ids []int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if d, ok := m.details[id]; ok {
			d.Status = status
		}
	}
	return nil
}

func (m *memShiftRepository) Transaction(fn func(shift.Repository) error) error {
	return fn(m)
}

var _ = Describe("ScheduleService", func() {
	var (
		dir      *mockDirectoryRepository
		repo     *memShiftRepository
		store    *shift.Service
		service  *schedule.Service
		resolver *schedule.PatternResolver
	)

	cfg := internal.SchedulerConfig{
		AtomicBulkEdit: true,
		FallbackStart:  "09:00",
		FallbackEnd:    "18:00",
	}

	dateOf := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		Expect(err).ToNot(HaveOccurred())
		return d
	}

	BeforeEach(func() {
		dir = newMockDirectoryRepository()
		repo = newMemShiftRepository()
		lg := patternTestLogger()
		resolver = schedule.NewPatternResolver(dir, lg)
		store = shift.NewService(repo, schedule.NewStoreSource(resolver, dir), keylock.New(), lg)
		service = schedule.NewService(dir, store, resolver, events.NewEventBus(lg), cfg, lg)
	})

	Describe("BulkUpsert", func() {
		BeforeEach(func() {
			dir.users[1] = &directory.User{
				ID:                1,
				Status:            directory.UserStatusActive,
				PreferredWeekDays: "Wed",
				DefaultStartTime:  strptr("09:00"),
				DefaultEndTime:    strptr("18:00"),
			}
		})

		It("should apply an ordinary day edit end to end", func() {
			day := shift.ShiftTypeDay
			result, err := service.BulkUpsert(schedule.BulkUpsertDTO{
				Entries: []schedule.BulkEntryDTO{
					{UserID: 1, Date: "2026-04-10", ShiftType: &day},
				},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Applied).To(Equal(1))
			Expect(result.Overridden).To(BeZero())

			header, err := store.GetHeader(1, dateOf("2026-04-10"))
			Expect(err).ToNot(HaveOccurred())
			Expect(header.ShiftType).To(Equal(shift.ShiftTypeDay))

			details, _ := repo.ListDetails(1, dateOf("2026-04-10"))
			Expect(details).To(HaveLen(1))
			Expect(details[0].Interval().Minutes()).To(Equal(540))
		})

		It("should force-clear a date on the user's preferred weekday", func() {
			day := shift.ShiftTypeDay
			// 2026-04-08 is a Wednesday
			result, err := service.BulkUpsert(schedule.BulkUpsertDTO{
				Entries: []schedule.BulkEntryDTO{
					{UserID: 1, Date: "2026-04-08", ShiftType: &day},
				},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Applied).To(BeZero())
			Expect(result.Overridden).To(Equal(1))

			_, err = store.GetHeader(1, dateOf("2026-04-08"))
			Expect(err).To(HaveOccurred())
		})

		It("should reject an empty batch", func() {
			_, err := service.BulkUpsert(schedule.BulkUpsertDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an unknown shift type with the entry index", func() {
			bogus := "overtime"
			_, err := service.BulkUpsert(schedule.BulkUpsertDTO{
				Entries: []schedule.BulkEntryDTO{
					{UserID: 1, Date: "2026-04-10", ShiftType: &bogus},
				},
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.GetDetailedCode()).To(Equal(internal.ErrCodeInvalidShiftType))
			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors[0].Field).To(ContainSubstring("entries[0]"))
		})
	})

	Describe("SweepPreferredHolidays", func() {
		It("should mark every preferred weekday in the month as leave", func() {
			dir.users[1] = &directory.User{
				ID:                1,
				Status:            directory.UserStatusActive,
				PreferredWeekDays: "土,日",
			}

			result, err := service.SweepPreferredHolidays("2026-04")
			Expect(err).ToNot(HaveOccurred())
			// April 2026 has 4 Saturdays and 4 Sundays
			Expect(result.Created).To(Equal(8))
			Expect(result.Skipped).To(BeZero())

			header, err := store.GetHeader(1, dateOf("2026-04-04"))
			Expect(err).ToNot(HaveOccurred())
			Expect(header.ShiftType).To(Equal(shift.ShiftTypeLeave))
		})

		It("should skip days already marked leave", func() {
			dir.users[1] = &directory.User{
				ID:                1,
				Status:            directory.UserStatusActive,
				PreferredWeekDays: "Sat",
			}
			Expect(store.ApplyLeave(1, dateOf("2026-04-04"))).To(Succeed())

			result, err := service.SweepPreferredHolidays("2026-04")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Created).To(Equal(3))
			Expect(result.Skipped).To(Equal(1))
		})

		It("should replace a working day falling on a preferred weekday", func() {
			dir.users[1] = &directory.User{
				ID:                1,
				Status:            directory.UserStatusActive,
				PreferredWeekDays: "Sat",
				DefaultStartTime:  strptr("09:00"),
				DefaultEndTime:    strptr("18:00"),
			}
			day := shift.ShiftTypeDay
			Expect(store.SetShiftType(1, dateOf("2026-04-04"), &day)).To(Succeed())

			_, err := service.SweepPreferredHolidays("2026-04")
			Expect(err).ToNot(HaveOccurred())

			header, _ := store.GetHeader(1, dateOf("2026-04-04"))
			Expect(header.ShiftType).To(Equal(shift.ShiftTypeLeave))
			details, _ := repo.ListDetails(1, dateOf("2026-04-04"))
			Expect(details).To(BeEmpty())
		})

		It("should ignore users without preferences and inactive users", func() {
			dir.users[1] = &directory.User{ID: 1, Status: directory.UserStatusActive}
			dir.users[2] = &directory.User{
				ID: 2, Status: directory.UserStatusRetired, PreferredWeekDays: "Sat",
			}

			result, err := service.SweepPreferredHolidays("2026-04")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Created).To(BeZero())
		})

		It("should reject a malformed month", func() {
			_, err := service.SweepPreferredHolidays("April 2026")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AutoRegisterEmploymentPeriod", func() {
		empStart := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)

		It("should create day shifts inside the employment window", func() {
			dir.users[1] = &directory.User{
				ID:                  1,
				Status:              directory.UserStatusActive,
				EmploymentStartDate: &empStart,
				DefaultStartTime:    strptr("09:00"),
				DefaultEndTime:      strptr("18:00"),
			}

			result, err := service.AutoRegisterEmploymentPeriod("2026-04")
			Expect(err).ToNot(HaveOccurred())
			// April 6 through April 30
			Expect(result.Created).To(Equal(25))

			header, err := store.GetHeader(1, dateOf("2026-04-06"))
			Expect(err).ToNot(HaveOccurred())
			Expect(header.ShiftType).To(Equal(shift.ShiftTypeDay))

			_, err = store.GetHeader(1, dateOf("2026-04-05"))
			Expect(err).To(HaveOccurred())
		})

		It("should clamp to the employment end date", func() {
			empEnd := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
			dir.users[1] = &directory.User{
				ID:                  1,
				Status:              directory.UserStatusActive,
				EmploymentStartDate: &empStart,
				EmploymentEndDate:   &empEnd,
			}

			result, err := service.AutoRegisterEmploymentPeriod("2026-04")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Created).To(Equal(5))
		})

		It("should never overwrite an existing day and count it skipped", func() {
			dir.users[1] = &directory.User{
				ID:                  1,
				Status:              directory.UserStatusActive,
				EmploymentStartDate: &empStart,
			}
			Expect(store.ApplyLeave(1, dateOf("2026-04-07"))).To(Succeed())

			result, err := service.AutoRegisterEmploymentPeriod("2026-04")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Skipped).To(Equal(1))

			header, _ := store.GetHeader(1, dateOf("2026-04-07"))
			Expect(header.ShiftType).To(Equal(shift.ShiftTypeLeave))
		})

		It("should leave preferred weekdays untouched", func() {
			dir.users[1] = &directory.User{
				ID:                  1,
				Status:              directory.UserStatusActive,
				EmploymentStartDate: &empStart,
				PreferredWeekDays:   "Sat,Sun",
			}

			_, err := service.AutoRegisterEmploymentPeriod("2026-04")
			Expect(err).ToNot(HaveOccurred())

			_, err = store.GetHeader(1, dateOf("2026-04-11"))
			Expect(err).To(HaveOccurred())
			_, err = store.GetHeader(1, dateOf("2026-04-13"))
			Expect(err).ToNot(HaveOccurred())
		})

		It("should fall back to configured hours when no pattern resolves", func() {
			dir.users[1] = &directory.User{
				ID:                  1,
				Status:              directory.UserStatusActive,
				EmploymentStartDate: &empStart,
			}

			_, err := service.AutoRegisterEmploymentPeriod("2026-04")
			Expect(err).ToNot(HaveOccurred())

			details, _ := repo.ListDetails(1, dateOf("2026-04-06"))
			Expect(details).To(HaveLen(1))
			Expect(details[0].StartTime.Hour()).To(Equal(9))
			Expect(details[0].Interval().Minutes()).To(Equal(540))
		})

		It("should skip users with no employment start date", func() {
			dir.users[1] = &directory.User{ID: 1, Status: directory.UserStatusActive}

			result, err := service.AutoRegisterEmploymentPeriod("2026-04")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Created).To(BeZero())
		})
	})

	Describe("MonthRange", func() {
		It("should expand a month token to first and last date", func() {
			start, end, err := schedule.MonthRange("2026-02")
			Expect(err).ToNot(HaveOccurred())
			Expect(start.Day()).To(Equal(1))
			Expect(end.Day()).To(Equal(28))
		})
	})
})
