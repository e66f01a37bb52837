package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/event"
	"github.com/hbomb79/mediaprobe/internal/extract"
	"github.com/hbomb79/mediaprobe/internal/media"
	"github.com/hbomb79/mediaprobe/pkg/logger"
)

const (
	DEBOUNCE_DURATION  time.Duration = time.Millisecond * 500
	MAX_TIMER_DURATION time.Duration = time.Second * 2

	RAPID_EVENT_DEBOUNCE_DURATION  time.Duration = time.Millisecond * 250
	RAPID_EVENT_MAX_TIMER_DURATION time.Duration = time.Second
)

var activityLog = logger.Get("Activity")

type (
	broadcastHandler func(uuid.UUID) error

	broadcaster interface {
		BroadcastExtractionUpdate(uuid.UUID) error
		BroadcastExtractionComplete(uuid.UUID) error
		BroadcastExtractionFailed(uuid.UUID) error
	}

	eventKey struct {
		ev event.Event
		id uuid.UUID
	}

	// activityService listens for extraction events on the event bus and
	// relays them to the broadcaster. Bursts of events for the same resource
	// are debounced so the broadcaster sees at most one call per burst.
	activityService struct {
		*sync.Mutex
		broadcaster
		eventBus       event.EventHandler
		debounceTimers map[eventKey]*time.Timer
		maxTimers      map[eventKey]*time.Timer

		debounce, maxWait           time.Duration
		rapidDebounce, rapidMaxWait time.Duration
	}

	extractionLookup interface {
		GetExtraction(uuid.UUID) *extract.Extraction
	}

	mediaLookup interface {
		LoadMedia(context.Context, uuid.UUID) (*media.Record, error)
	}

	// activityLogger is the broadcaster used by the server; it reports
	// extraction activity through the logger.
	activityLogger struct {
		extractions extractionLookup
		media       mediaLookup
	}
)

func newActivityService(broadcaster broadcaster, event event.EventHandler) *activityService {
	return &activityService{
		Mutex:          &sync.Mutex{},
		broadcaster:    broadcaster,
		eventBus:       event,
		debounceTimers: make(map[eventKey]*time.Timer),
		maxTimers:      make(map[eventKey]*time.Timer),
		debounce:       DEBOUNCE_DURATION,
		maxWait:        MAX_TIMER_DURATION,
		rapidDebounce:  RAPID_EVENT_DEBOUNCE_DURATION,
		rapidMaxWait:   RAPID_EVENT_MAX_TIMER_DURATION,
	}
}

func (service *activityService) Run(ctx context.Context) error {
	messageChan := make(event.HandlerChannel, 100)
	service.eventBus.RegisterHandlerChannel(messageChan, event.EXTRACTION_UPDATE, event.EXTRACTION_COMPLETE, event.EXTRACTION_FAILED)

	activityLog.Emit(logger.NEW, "Activity service started\n")
	for {
		select {
		case ev := <-messageChan:
			if err := service.handleEvent(ev); err != nil {
				activityLog.Emit(logger.ERROR, "Handling of event %v failed: %v\n", ev, err)
			}
		case <-ctx.Done():
			service.unsubscribe(messageChan)
			service.stopTimers()
			activityLog.Emit(logger.STOP, "Activity service closed\n")
			return nil
		}
	}
}

// unsubscribe removes the channel from the event bus. Events which arrive
// meanwhile are discarded, so that dispatchers blocked on the channel are
// released.
func (service *activityService) unsubscribe(messageChan event.HandlerChannel) {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-messageChan:
			case <-done:
				return
			}
		}
	}()

	service.eventBus.UnregisterHandlerChannel(messageChan)
	close(done)
}

func (service *activityService) handleEvent(ev event.HandlerEvent) error {
	resourceID, ok := ev.Payload.(uuid.UUID)
	if !ok {
		return errors.New("illegal payload (expected UUID)")
	}

	resourceKey := eventKey{id: resourceID, ev: ev.Event}

	switch ev.Event {
	case event.EXTRACTION_UPDATE:
		service.scheduleRapidEventBroadcast(resourceKey, service.BroadcastExtractionUpdate)
	case event.EXTRACTION_COMPLETE:
		service.scheduleEventBroadcast(resourceKey, service.BroadcastExtractionComplete)
	case event.EXTRACTION_FAILED:
		service.scheduleEventBroadcast(resourceKey, service.BroadcastExtractionFailed)
	default:
		return errors.New("unknown event type")
	}

	return nil
}

func (service *activityService) scheduleEventBroadcast(resourceKey eventKey, handler broadcastHandler) {
	service._scheduleEventBroadcast(resourceKey, handler, service.debounce, service.maxWait)
}

func (service *activityService) scheduleRapidEventBroadcast(resourceKey eventKey, handler broadcastHandler) {
	service._scheduleEventBroadcast(resourceKey, handler, service.rapidDebounce, service.rapidMaxWait)
}

func (service *activityService) _scheduleEventBroadcast(resourceKey eventKey, handler broadcastHandler, debounceTime time.Duration, maxTime time.Duration) {
	service.Lock()
	defer service.Unlock()

	broadcaster := func() { service.broadcast(resourceKey, handler) }

	// Cancel and re-set a debounce timer
	if t, ok := service.debounceTimers[resourceKey]; ok {
		t.Stop()
	}
	service.debounceTimers[resourceKey] = time.AfterFunc(debounceTime, broadcaster)

	// Set a max timer if not already set
	if _, ok := service.maxTimers[resourceKey]; !ok {
		service.maxTimers[resourceKey] = time.AfterFunc(maxTime, broadcaster)
	}
}

// broadcast calls the handler for the resource, unless both timers for it
// have already been cleared by an earlier broadcast of the same burst.
func (service *activityService) broadcast(resourceKey eventKey, handler broadcastHandler) {
	service.Lock()
	debounce, hasDebounce := service.debounceTimers[resourceKey]
	maxTimer, hasMax := service.maxTimers[resourceKey]
	if !hasDebounce && !hasMax {
		service.Unlock()
		return
	}

	if hasDebounce {
		debounce.Stop()
		delete(service.debounceTimers, resourceKey)
	}
	if hasMax {
		maxTimer.Stop()
		delete(service.maxTimers, resourceKey)
	}
	service.Unlock()

	if err := handler(resourceKey.id); err != nil {
		activityLog.Emit(logger.WARNING, "Broadcast of %s for %s failed: %v\n", resourceKey.ev, resourceKey.id, err)
	}
}

func (service *activityService) stopTimers() {
	service.Lock()
	defer service.Unlock()

	for key, t := range service.debounceTimers {
		t.Stop()
		delete(service.debounceTimers, key)
	}
	for key, t := range service.maxTimers {
		t.Stop()
		delete(service.maxTimers, key)
	}
}

func newActivityLogger(extractions extractionLookup, media mediaLookup) *activityLogger {
	return &activityLogger{extractions: extractions, media: media}
}

func (activity *activityLogger) BroadcastExtractionUpdate(extractionID uuid.UUID) error {
	item := activity.extractions.GetExtraction(extractionID)
	if item == nil {
		activityLog.Emit(logger.VERBOSE, "Extraction %s is no longer in-flight\n", extractionID)
		return nil
	}

	if trouble := item.Trouble(); trouble != nil {
		activityLog.Emit(logger.WARNING, "%s: %v\n", item, trouble)
	} else {
		activityLog.Emit(logger.INFO, "%s\n", item)
	}

	return nil
}

func (activity *activityLogger) BroadcastExtractionComplete(mediaID uuid.UUID) error {
	record, err := activity.media.LoadMedia(context.Background(), mediaID)
	if err != nil {
		return fmt.Errorf("failed to load media %s: %w", mediaID, err)
	} else if record == nil {
		activityLog.Emit(logger.INFO, "Extraction for media %s finished, but the media no longer exists\n", mediaID)
		return nil
	}

	attributes, err := record.Attributes()
	if err != nil {
		return err
	}

	activityLog.Emit(logger.SUCCESS, "Extraction for media %s (%s) finished: %.2fs @ %d b/s\n", mediaID, record.Path, attributes.Duration, attributes.Bitrate)
	return nil
}

func (activity *activityLogger) BroadcastExtractionFailed(mediaID uuid.UUID) error {
	activityLog.Emit(logger.ERROR, "Extraction for media %s failed and has been dead-lettered\n", mediaID)
	return nil
}
