package event_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/go-chanassert"
	"github.com/hbomb79/mediaprobe/internal/event"
	"github.com/stretchr/testify/assert"
)

func matchEvent(ev event.Event, id uuid.UUID) chanassert.Matcher[event.HandlerEvent] {
	return chanassert.MatchStructPartial(event.HandlerEvent{Event: ev, Payload: id})
}

func Test_Dispatch_DeliversToChannels(t *testing.T) {
	bus := event.New()
	id := uuid.New()

	ch := make(event.HandlerChannel, 10)
	bus.RegisterHandlerChannel(ch, event.EXTRACTION_UPDATE, event.EXTRACTION_COMPLETE)

	exp := chanassert.NewChannelExpecter(ch).Expect(
		chanassert.ExactlyNOf(2, matchEvent(event.EXTRACTION_COMPLETE, id)),
	)
	exp.Listen()

	bus.Dispatch(event.EXTRACTION_COMPLETE, id)
	bus.Dispatch(event.EXTRACTION_FAILED, id)
	bus.Dispatch(event.EXTRACTION_COMPLETE, id)

	exp.AssertSatisfied(t, time.Second)
}

func Test_Dispatch_RejectsIllegalPayload(t *testing.T) {
	bus := event.New()
	ch := make(event.HandlerChannel, 2)
	bus.RegisterHandlerChannel(ch, event.EXTRACTION_FAILED)

	bus.Dispatch(event.EXTRACTION_FAILED, "not-a-uuid")
	bus.Dispatch("unknown:event", uuid.New())
	assert.Empty(t, ch)
}

func Test_UnregisterHandlerChannel_StopsDelivery(t *testing.T) {
	bus := event.New()
	ch := make(event.HandlerChannel)
	kept := make(event.HandlerChannel, 5)
	bus.RegisterHandlerChannel(ch, event.EXTRACTION_UPDATE, event.EXTRACTION_FAILED)
	bus.RegisterHandlerChannel(kept, event.EXTRACTION_FAILED)

	bus.UnregisterHandlerChannel(ch)

	// ch is unbuffered and has no reader, so any send on it would block
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			bus.Dispatch(event.EXTRACTION_FAILED, uuid.New())
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		assert.FailNow(t, "dispatch blocked on an unregistered channel")
	}
	assert.Len(t, kept, 5)
}

func Test_UnregisterHandlerChannel_WhileDispatchBlocked(t *testing.T) {
	bus := event.New()
	ch := make(event.HandlerChannel)
	bus.RegisterHandlerChannel(ch, event.EXTRACTION_UPDATE)

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		bus.Dispatch(event.EXTRACTION_UPDATE, uuid.New())
	}()

	// Drain while unregistering, as a blocked dispatch holds the bus
	drained := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case <-ch:
			case <-stop:
				return
			}
		}
	}()

	bus.UnregisterHandlerChannel(ch)
	close(stop)
	<-drained

	select {
	case <-dispatched:
	case <-time.After(time.Second):
		assert.FailNow(t, "blocked dispatch never completed")
	}
}
