package shift_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arifwidianto/shift-management/internal/core/keylock"
	"github.com/arifwidianto/shift-management/internal/shift"
)

var _ = Describe("ToggleConfirmation", func() {
	var (
		service  *shift.Service
		mockRepo *mockShiftRepository
		locks    *keylock.KeyedMutex
		date     time.Time
	)

	addDetail := func(userID int64, detailType, status string) *shift.ShiftDetail {
		d := &shift.ShiftDetail{
			UserID:    userID,
			ShiftDate: date,
			Type:      detailType,
			Status:    status,
			StartTime: time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC),
		}
		Expect(mockRepo.CreateDetail(d)).To(Succeed())
		return d
	}

	BeforeEach(func() {
		mockRepo = newMockShiftRepository()
		locks = keylock.New()
		date = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
		service = shift.NewService(mockRepo, &mockPatternSource{}, locks, testLogger())
	})

	Context("with no work details on the date", func() {
		It("should report a no-op", func() {
			addDetail(1, shift.DetailTypeBreak, shift.StatusScheduled)

			result, err := service.ToggleConfirmation(date, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.NoOp).To(BeTrue())
			Expect(result.Flipped).To(BeZero())
		})
	})

	Context("auto-toggle", func() {
		It("should confirm while any work detail is still scheduled", func() {
			d1 := addDetail(1, shift.DetailTypeWork, shift.StatusScheduled)
			d2 := addDetail(2, shift.DetailTypeWork, shift.StatusActual)

			result, err := service.ToggleConfirmation(date, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.TargetStatus).To(Equal(shift.StatusActual))
			Expect(result.Flipped).To(Equal(1))

			got, _ := mockRepo.GetDetail(d1.ID)
			Expect(got.Status).To(Equal(shift.StatusActual))
			got, _ = mockRepo.GetDetail(d2.ID)
			Expect(got.Status).To(Equal(shift.StatusActual))
		})

		It("should unconfirm once everything is actual", func() {
			d1 := addDetail(1, shift.DetailTypeWork, shift.StatusActual)

			result, err := service.ToggleConfirmation(date, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.TargetStatus).To(Equal(shift.StatusScheduled))
			Expect(result.Flipped).To(Equal(1))

			got, _ := mockRepo.GetDetail(d1.ID)
			Expect(got.Status).To(Equal(shift.StatusScheduled))
		})
	})

	Context("explicit actions", func() {
		It("should only flip scheduled rows when confirming", func() {
			scheduled := addDetail(1, shift.DetailTypeWork, shift.StatusScheduled)
			absent := addDetail(2, shift.DetailTypeWork, shift.StatusAbsent)

			result, err := service.ToggleConfirmation(date, shift.ConfirmActionConfirm)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Flipped).To(Equal(1))

			got, _ := mockRepo.GetDetail(scheduled.ID)
			Expect(got.Status).To(Equal(shift.StatusActual))
			got, _ = mockRepo.GetDetail(absent.ID)
			Expect(got.Status).To(Equal(shift.StatusAbsent))
		})

		It("should be idempotent when re-confirming", func() {
			addDetail(1, shift.DetailTypeWork, shift.StatusActual)

			result, err := service.ToggleConfirmation(date, shift.ConfirmActionConfirm)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Flipped).To(BeZero())
		})

		It("should only flip actual rows when unconfirming", func() {
			actual := addDetail(1, shift.DetailTypeWork, shift.StatusActual)
			absent := addDetail(2, shift.DetailTypeWork, shift.StatusAbsent)

			result, err := service.ToggleConfirmation(date, shift.ConfirmActionUnconfirm)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Flipped).To(Equal(1))

			got, _ := mockRepo.GetDetail(actual.ID)
			Expect(got.Status).To(Equal(shift.StatusScheduled))
			got, _ = mockRepo.GetDetail(absent.ID)
			Expect(got.Status).To(Equal(shift.StatusAbsent))
		})
	})

	It("should never touch break or outing rows", func() {
		work := addDetail(1, shift.DetailTypeWork, shift.StatusScheduled)
		brk := addDetail(1, shift.DetailTypeBreak, shift.StatusScheduled)

		_, err := service.ToggleConfirmation(date, shift.ConfirmActionConfirm)
		Expect(err).ToNot(HaveOccurred())

		got, _ := mockRepo.GetDetail(work.ID)
		Expect(got.Status).To(Equal(shift.StatusActual))
		got, _ = mockRepo.GetDetail(brk.ID)
		Expect(got.Status).To(Equal(shift.StatusScheduled))
	})

	It("should wait for a detail mutation holding the user's day key", func() {
		addDetail(1, shift.DetailTypeWork, shift.StatusScheduled)

		unlock := locks.Lock(keylock.UserDateKey(1, date))

		done := make(chan *shift.ConfirmationResult, 1)
		go func() {
			defer GinkgoRecover()
			result, err := service.ToggleConfirmation(date, shift.ConfirmActionConfirm)
			Expect(err).ToNot(HaveOccurred())
			done <- result
		}()

		Consistently(done, "100ms").ShouldNot(Receive())

		unlock()
		var result *shift.ConfirmationResult
		Eventually(done).Should(Receive(&result))
		Expect(result.Flipped).To(Equal(1))
	})
})
