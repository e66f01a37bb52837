// A collection of event names and common methods used to handle the events, typically
// redirecting the handling to a service method or other method via the `Handler` interface.
package event

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	"github.com/samber/lo"
)

var log = logger.Get("Events")

// Events emitted by the extraction service as media move through the pipeline. Consumers
// (such as the activity logger) subscribe to the events they are interested in.
type (
	Event   string
	Payload any

	HandlerChannel chan HandlerEvent
	HandlerEvent   struct {
		Event   Event
		Payload Payload
	}

	EventDispatcher interface {
		Dispatch(Event, Payload)
	}

	EventHandler interface {
		RegisterHandlerChannel(HandlerChannel, ...Event)
		UnregisterHandlerChannel(HandlerChannel)
	}

	EventCoordinator interface {
		EventDispatcher
		EventHandler
	}

	eventHandler struct {
		mu           sync.RWMutex
		chanHandlers map[Event][]HandlerChannel
	}
)

const (
	EXTRACTION_UPDATE   Event = "extraction:update"
	EXTRACTION_COMPLETE Event = "extraction:complete"
	EXTRACTION_FAILED   Event = "extraction:failed"
)

func New() EventCoordinator {
	return &eventHandler{
		chanHandlers: make(map[Event][]HandlerChannel),
	}
}

// RegisterHandlerChannel takes an event type and a channel and will send Event messages on
// the channel any time a Dispatch for the provided event occurs.
// This method can be used multiple times for different events on the same channel.
//
// If the channel is BLOCKED when the event bus attempts to send the message on the handler channel,
// then the thread dispatching the event will also be BLOCKED. It is recomended to buffer the handler channels
// appropiately to avoid dispatcher-side blocking.
func (handler *eventHandler) RegisterHandlerChannel(handle HandlerChannel, events ...Event) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	for _, event := range events {
		handler.chanHandlers[event] = append(handler.chanHandlers[event], handle)
	}
}

// UnregisterHandlerChannel removes the channel from every event it was registered for. Once
// this returns, no dispatch will send on the channel. As a dispatch may currently be blocked
// sending on it, the caller must keep draining the channel until this returns.
func (handler *eventHandler) UnregisterHandlerChannel(handle HandlerChannel) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	for event, handles := range handler.chanHandlers {
		handler.chanHandlers[event] = lo.Without(handles, handle)
	}
}

// Dispatch takes an event type and a payload and sends the payload to every channel registered
// for the event type provided.
// Note that this method WILL block if channel handlers are blocked.
func (handler *eventHandler) Dispatch(event Event, payload Payload) {
	if err := handler.validatePayload(event, payload); err != nil {
		log.Emit(logger.FATAL, "Dispatch for event %v FAILED validation: %v", event, err)
		return
	}

	handler.mu.RLock()
	defer handler.mu.RUnlock()

	if handles, ok := handler.chanHandlers[event]; ok {
		payload := HandlerEvent{event, payload}
		for _, handle := range handles {
			handle <- payload
		}
	}
}

// validatePayload ensures that the payload provided is valid for the event specified. An error
// will be returned if the payload is not valid, and the event should not be sent to the registered
// handlers in this case.
func (handler *eventHandler) validatePayload(event Event, payload Payload) error {
	var payloadTypeName string
	if t := reflect.TypeOf(payload); t != nil {
		payloadTypeName = t.Name()
	} else {
		payloadTypeName = "Nil"
	}

	switch event {
	case EXTRACTION_UPDATE, EXTRACTION_COMPLETE, EXTRACTION_FAILED:
		if _, ok := payload.(uuid.UUID); !ok {
			return fmt.Errorf("illegal payload (type %s) for %s event. Expected uuid.UUID payload", payloadTypeName, event)
		}

		return nil
	}

	return errors.New("event type not recognized for validation")
}
