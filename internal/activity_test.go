package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/go-chanassert"
	"github.com/hbomb79/mediaprobe/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channelBroadcaster sends each broadcast resource ID on the channel for
// its event.
type channelBroadcaster struct {
	updates     chan uuid.UUID
	completions chan uuid.UUID
	failures    chan uuid.UUID
}

func newChannelBroadcaster() *channelBroadcaster {
	return &channelBroadcaster{
		updates:     make(chan uuid.UUID, 100),
		completions: make(chan uuid.UUID, 100),
		failures:    make(chan uuid.UUID, 100),
	}
}

func (b *channelBroadcaster) BroadcastExtractionUpdate(id uuid.UUID) error {
	b.updates <- id
	return nil
}

func (b *channelBroadcaster) BroadcastExtractionComplete(id uuid.UUID) error {
	b.completions <- id
	return nil
}

func (b *channelBroadcaster) BroadcastExtractionFailed(id uuid.UUID) error {
	b.failures <- id
	return nil
}

func (b *channelBroadcaster) drain() {
	for _, ch := range []chan uuid.UUID{b.updates, b.completions, b.failures} {
		for len(ch) > 0 {
			<-ch
		}
	}
}

func matchID(id uuid.UUID) chanassert.Matcher[uuid.UUID] {
	return chanassert.MatchPredicate(func(received uuid.UUID) bool { return received == id })
}

// startActivityService runs an activity service with short timers, returning
// once it is subscribed to the bus. The returned function stops the service
// and waits for Run to return.
func startActivityService(t *testing.T) (*channelBroadcaster, event.EventCoordinator, func()) {
	bus := event.New()
	rec := newChannelBroadcaster()
	service := newActivityService(rec, bus)
	service.debounce, service.maxWait = 20*time.Millisecond, 200*time.Millisecond
	service.rapidDebounce, service.rapidMaxWait = 20*time.Millisecond, 200*time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, service.Run(ctx))
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	t.Cleanup(stop)

	// Run subscribes asynchronously
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(time.Second)
subscribe:
	for {
		select {
		case <-ticker.C:
			bus.Dispatch(event.EXTRACTION_FAILED, uuid.Nil)
		case <-rec.failures:
			break subscribe
		case <-deadline:
			require.FailNow(t, "activity service never subscribed to the event bus")
		}
	}
	time.Sleep(250 * time.Millisecond)
	rec.drain()

	return rec, bus, stop
}

func Test_ActivityService_DebouncesBursts(t *testing.T) {
	rec, bus, _ := startActivityService(t)
	id := uuid.New()

	exp := chanassert.NewChannelExpecter(rec.updates).Expect(chanassert.ExactlyNOf(1, matchID(id)))
	exp.Listen()

	for i := 0; i < 5; i++ {
		bus.Dispatch(event.EXTRACTION_UPDATE, id)
	}

	exp.AssertSatisfied(t, time.Second)
}

func Test_ActivityService_RoutesOutcomes(t *testing.T) {
	rec, bus, _ := startActivityService(t)
	complete, failed := uuid.New(), uuid.New()

	completions := chanassert.NewChannelExpecter(rec.completions).Expect(chanassert.ExactlyNOf(1, matchID(complete)))
	completions.Listen()
	failures := chanassert.NewChannelExpecter(rec.failures).Expect(chanassert.ExactlyNOf(1, matchID(failed)))
	failures.Listen()

	bus.Dispatch(event.EXTRACTION_COMPLETE, complete)
	bus.Dispatch(event.EXTRACTION_FAILED, failed)

	completions.AssertSatisfied(t, time.Second)
	failures.AssertSatisfied(t, time.Second)
	assert.Empty(t, rec.updates)
}

func Test_ActivityService_ReleasesDispatchersOnShutdown(t *testing.T) {
	_, bus, stop := startActivityService(t)
	stop()

	// Far more events than the service's channel can buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			bus.Dispatch(event.EXTRACTION_UPDATE, uuid.New())
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "dispatch blocked after the activity service stopped")
	}
}

func Test_ActivityService_RejectsIllegalPayload(t *testing.T) {
	service := newActivityService(newChannelBroadcaster(), event.New())
	assert.Error(t, service.handleEvent(event.HandlerEvent{Event: event.EXTRACTION_UPDATE, Payload: "not-a-uuid"}))
	assert.Error(t, service.handleEvent(event.HandlerEvent{Event: event.Event("unknown"), Payload: uuid.New()}))
}
