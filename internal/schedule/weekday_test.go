package schedule_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arifwidianto/shift-management/internal/schedule"
)

func TestSchedule(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Schedule Suite")
}

var _ = Describe("NormalizeWeekdays", func() {
	It("should parse numeric tokens", func() {
		set := schedule.NormalizeWeekdays([]string{"0", "6"})
		Expect(set.Contains(0)).To(BeTrue())
		Expect(set.Contains(6)).To(BeTrue())
		Expect(set.Contains(1)).To(BeFalse())
	})

	It("should parse English names and abbreviations in any case", func() {
		set := schedule.NormalizeWeekdays([]string{"Monday", "WED", "fri.", "Tues"})
		Expect(set.Contains(1)).To(BeTrue())
		Expect(set.Contains(3)).To(BeTrue())
		Expect(set.Contains(5)).To(BeTrue())
		Expect(set.Contains(2)).To(BeTrue())
	})

	It("should parse Japanese day characters", func() {
		set := schedule.NormalizeWeekdays([]string{"土", "日"})
		Expect(set.Contains(6)).To(BeTrue())
		Expect(set.Contains(0)).To(BeTrue())
	})

	It("should parse long-form Japanese day names", func() {
		set := schedule.NormalizeWeekdays([]string{"火曜日"})
		Expect(set.Contains(2)).To(BeTrue())
	})

	It("should collapse mixed representations of the same day", func() {
		set := schedule.NormalizeWeekdays([]string{"Mon", "月", "1"})
		Expect(set).To(HaveLen(1))
		Expect(set.Contains(1)).To(BeTrue())
	})

	It("should be order independent", func() {
		a := schedule.NormalizeWeekdays([]string{"Mon", "Fri", "3"})
		b := schedule.NormalizeWeekdays([]string{"3", "Fri", "Mon"})
		Expect(a).To(Equal(b))
	})

	It("should silently drop unknown tokens", func() {
		set := schedule.NormalizeWeekdays([]string{"Mon", "someday", "9", "-1", ""})
		Expect(set).To(HaveLen(1))
		Expect(set.Contains(1)).To(BeTrue())
	})

	It("should produce an empty set from an empty list", func() {
		Expect(schedule.NormalizeWeekdays(nil).IsEmpty()).To(BeTrue())
	})

	Describe("MatchesDate", func() {
		It("should match the date's weekday", func() {
			set := schedule.NormalizeWeekdays([]string{"Wed"})
			wednesday := time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC)
			thursday := time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC)
			Expect(set.MatchesDate(wednesday)).To(BeTrue())
			Expect(set.MatchesDate(thursday)).To(BeFalse())
		})
	})
})
