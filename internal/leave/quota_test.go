package leave_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/directory"
	"github.com/arifwidianto/shift-management/internal/leave"
)

type mockDirRepo struct {
	settings map[int64]*directory.UserShiftSetting
}

func (m *mockDirRepo) GetUser(id int64) (*directory.User, error) {
	return nil, internal.ErrUserNotFound
}

func (m *mockDirRepo) ListActiveUsers() ([]*directory.User, error) {
	return nil, nil
}

func (m *mockDirRepo) IsHoliday(date time.Time) (bool, error) {
	return false, nil
}

func (m *mockDirRepo) FindTemplates(weekday int, dayType, shiftType string) ([]*directory.DefaultShift, error) {
	return nil, nil
}

func (m *mockDirRepo) GetSetting(userID int64) (*directory.UserShiftSetting, error) {
	if s, ok := m.settings[userID]; ok {
		return s, nil
	}
	return &directory.UserShiftSetting{UserID: userID}, nil
}

var _ = Describe("QuotaReporter", func() {
	var (
		dir      *mockDirRepo
		shifts   *mockShiftStore
		reporter *leave.QuotaReporter
	)

	markLeave := func(userID int64, dates ...string) {
		for _, ds := range dates {
			d, err := time.Parse("2006-01-02", ds)
			Expect(err).ToNot(HaveOccurred())
			Expect(shifts.ApplyLeave(userID, d)).To(Succeed())
		}
	}

	BeforeEach(func() {
		dir = &mockDirRepo{settings: make(map[int64]*directory.UserShiftSetting)}
		shifts = newMockShiftStore()
		reporter = leave.NewQuotaReporter(dir, shifts, leaveTestLogger())
	})

	It("should count leave days within the month against the limit", func() {
		dir.settings[1] = &directory.UserShiftSetting{UserID: 1, MonthlyLeaveLimit: 5}
		markLeave(1, "2026-04-03", "2026-04-17", "2026-03-31", "2026-05-01")

		report, err := reporter.Report(1, "2026-04")
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Limit).To(Equal(5))
		Expect(report.Used).To(Equal(2))
		Expect(report.Remaining).ToNot(BeNil())
		Expect(*report.Remaining).To(Equal(3))
	})

	It("should report nil remaining when no limit is configured", func() {
		markLeave(1, "2026-04-03")

		report, err := reporter.Report(1, "2026-04")
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Limit).To(BeZero())
		Expect(report.Used).To(Equal(1))
		Expect(report.Remaining).To(BeNil())
	})

	It("should floor remaining at zero when usage exceeds the limit", func() {
		dir.settings[1] = &directory.UserShiftSetting{UserID: 1, MonthlyLeaveLimit: 1}
		markLeave(1, "2026-04-03", "2026-04-04")

		report, err := reporter.Report(1, "2026-04")
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Used).To(Equal(2))
		Expect(*report.Remaining).To(BeZero())
	})

	It("should reject a malformed month", func() {
		_, err := reporter.Report(1, "2026/04")
		Expect(err).To(HaveOccurred())
	})
})
