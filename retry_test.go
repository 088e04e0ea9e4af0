package dynamosql

import (
	"errors"
	"time"

	"github.com/aws/smithy-go"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Retry policy", func() {
	var waits []time.Duration
	var policy RetryPolicy

	throttled := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	invalid := &smithy.GenericAPIError{Code: "ValidationException", Message: "bad statement"}

	BeforeEach(func() {
		waits = nil
		policy = noSleep(RetryPolicy{
			MaxAttempts:    4,
			BaseDelay:      10 * time.Millisecond,
			Multiplier:     2,
			MaxDelay:       25 * time.Millisecond,
			RetryableCodes: DefaultRetryableCodes,
		}, &waits)
	})

	It("should retry retryable codes with capped exponential backoff", func() {
		calls := 0
		err := policy.do("ExecuteStatement", func() error {
			calls++
			if calls < 4 {
				return throttled
			}
			return nil
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(calls).To(Equal(4))
		Expect(waits).To(Equal([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond}))
	})

	It("should give up after the attempt budget with the last error", func() {
		calls := 0
		err := policy.do("ExecuteStatement", func() error {
			calls++
			return throttled
		})
		Expect(calls).To(Equal(4))

		var opErr *OperationalError
		Expect(errors.As(err, &opErr)).To(BeTrue())
		Expect(opErr.Operation).To(Equal("ExecuteStatement"))
		Expect(opErr.Code).To(Equal("ProvisionedThroughputExceededException"))
		Expect(opErr.Attempts).To(Equal(4))
		Expect(errors.Is(err, throttled)).To(BeTrue())
	})

	It("should not retry other codes", func() {
		calls := 0
		err := policy.do("CreateTable", func() error {
			calls++
			return invalid
		})
		Expect(calls).To(Equal(1))
		Expect(waits).To(BeEmpty())

		var opErr *OperationalError
		Expect(errors.As(err, &opErr)).To(BeTrue())
		Expect(opErr.Code).To(Equal("ValidationException"))
	})

	It("should not retry errors without a code", func() {
		calls := 0
		err := policy.do("ListTables", func() error {
			calls++
			return errors.New("connection reset")
		})
		Expect(err).To(HaveOccurred())
		Expect(calls).To(Equal(1))
	})
})
