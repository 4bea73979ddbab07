package keylock

import (
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestKeylock(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Keylock Suite")
}

var _ = Describe("KeyedMutex", func() {
	var km *KeyedMutex

	BeforeEach(func() {
		km = New()
	})

	It("should serialize critical sections on the same key", func() {
		const workers = 20
		counter := 0

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock("1:2026-04-10")
				defer unlock()
				counter++
			}()
		}
		wg.Wait()

		Expect(counter).To(Equal(workers))
	})

	It("should not block holders of a different key", func() {
		unlockA := km.Lock("1:2026-04-10")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlockB := km.Lock("2:2026-04-10")
			unlockB()
			close(done)
		}()

		Eventually(done).Should(BeClosed())
	})

	It("should drop an entry once the last holder releases it", func() {
		unlock := km.Lock("1:2026-04-10")
		unlock()

		km.mu.Lock()
		defer km.mu.Unlock()
		Expect(km.locks).To(BeEmpty())
	})

	It("should keep an entry alive while a waiter is queued", func() {
		unlockFirst := km.Lock("1:2026-04-10")

		acquired := make(chan func())
		go func() {
			acquired <- km.Lock("1:2026-04-10")
		}()

		// let the second goroutine register as a waiter
		Eventually(func() int {
			km.mu.Lock()
			defer km.mu.Unlock()
			if e, ok := km.locks["1:2026-04-10"]; ok {
				return e.refs
			}
			return 0
		}).Should(Equal(2))

		unlockFirst()
		unlockSecond := <-acquired
		unlockSecond()

		km.mu.Lock()
		defer km.mu.Unlock()
		Expect(km.locks).To(BeEmpty())
	})
})

var _ = Describe("UserDateKey", func() {
	It("should format as user id and date", func() {
		key := UserDateKey(7, time.Date(2026, 4, 10, 15, 30, 0, 0, time.UTC))
		Expect(key).To(Equal("7:2026-04-10"))
	})
})
