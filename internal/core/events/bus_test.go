package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Events Module Suite")
}

// eventRecorder collects delivered events across handler goroutines.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) handler(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *eventRecorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

var _ = ginkgo.Describe("EventBus", func() {
	var (
		bus      *EventBus
		recorder *eventRecorder
	)

	ginkgo.BeforeEach(func() {
		bus = NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		recorder = &eventRecorder{}
	})

	ginkgo.Describe("Publish", func() {
		ginkgo.It("should deliver a submitted event to its subscriber", func() {
			// Given
			bus.Subscribe(EventTypeReimbursementSubmitted, recorder.handler)
			event := NewReimbursementSubmittedEvent(7, 1, 12500)

			// When
			err := bus.Publish(context.Background(), event)

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Eventually(recorder.count).Should(gomega.Equal(1))
			gomega.Expect(recorder.last().EventID()).To(gomega.Equal(event.EventID()))
		})

		ginkgo.It("should not deliver events of other types", func() {
			// Given
			bus.Subscribe(EventTypeReimbursementStatusChanged, recorder.handler)

			// When
			err := bus.Publish(context.Background(), NewReimbursementSubmittedEvent(7, 1, 12500))

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Consistently(recorder.count, 100*time.Millisecond).Should(gomega.BeZero())
		})

		ginkgo.It("should deliver to every subscriber of the type", func() {
			// Given
			second := &eventRecorder{}
			bus.Subscribe(EventTypeReimbursementSubmitted, recorder.handler)
			bus.Subscribe(EventTypeReimbursementSubmitted, second.handler)

			// When
			err := bus.Publish(context.Background(), NewReimbursementSubmittedEvent(7, 1, 12500))

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Eventually(recorder.count).Should(gomega.Equal(1))
			gomega.Eventually(second.count).Should(gomega.Equal(1))
		})
	})

	ginkgo.Describe("PublishSync", func() {
		ginkgo.It("should deliver synchronously and carry the payload", func() {
			// Given
			bus.Subscribe(EventTypeReimbursementStatusChanged, recorder.handler)
			event := NewReimbursementStatusChangedEvent(7, 1, 2, "pending", "approved")

			// When
			err := bus.PublishSync(context.Background(), event)

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(recorder.count()).To(gomega.Equal(1))

			delivered, ok := recorder.last().(*ReimbursementStatusChangedEvent)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(delivered.ReimbursementID).To(gomega.Equal(int64(7)))
			gomega.Expect(delivered.OldStatus).To(gomega.Equal("pending"))
			gomega.Expect(delivered.NewStatus).To(gomega.Equal("approved"))
			gomega.Expect(delivered.ProcessedBy).To(gomega.Equal(int64(2)))
		})

		ginkgo.It("should surface a handler failure", func() {
			// Given
			bus.Subscribe(EventTypeReimbursementSubmitted, func(ctx context.Context, event Event) error {
				return errors.New("handler exploded")
			})

			// When
			err := bus.PublishSync(context.Background(), NewReimbursementSubmittedEvent(7, 1, 100))

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should be a no-op without subscribers", func() {
			err := bus.PublishSync(context.Background(), NewReimbursementSubmittedEvent(7, 1, 100))

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})
})
