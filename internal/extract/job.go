package extract

import (
	"context"
	"errors"
	"time"

	"github.com/floostack/transcoder"
	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/event"
	"github.com/hbomb79/mediaprobe/internal/media"
	"github.com/hbomb79/mediaprobe/internal/probe"
	"github.com/hbomb79/mediaprobe/pkg/logger"
)

type (
	Prober interface {
		IsValid(ctx context.Context, path string) (bool, error)
		ProbeFormat(ctx context.Context, path string) (transcoder.Format, error)
		ProbeStreams(ctx context.Context, path string) ([]transcoder.Streams, error)
	}

	// DataStore is the persistence collaborator of a job. LoadMedia returns
	// a nil record (and no error) when the media does not exist.
	DataStore interface {
		LoadMedia(ctx context.Context, mediaID uuid.UUID) (*media.Record, error)
		SaveAttributes(ctx context.Context, mediaID uuid.UUID, properties map[string]any) error
	}

	// Job performs attribute extraction for a single Extraction, retrying
	// transient troubles up to the configured attempt ceiling.
	Job struct {
		config     Config
		prober     Prober
		store      DataStore
		dispatcher event.EventDispatcher
	}
)

func NewJob(config Config, prober Prober, store DataStore, dispatcher event.EventDispatcher) *Job {
	return &Job{config: config, prober: prober, store: store, dispatcher: dispatcher}
}

// Execute runs the extraction to completion, returning the terminal state
// reached (PERSISTED or SKIPPED) on success. Terminal failures are
// returned as a *Trouble.
//
// If the context provided is cancelled the extraction is abandoned, it's
// state is returned to PENDING and the context error is returned.
func (job *Job) Execute(ctx context.Context, item *Extraction) (ExtractionState, error) {
	log.Emit(logger.NEW, "Beginning extraction %s\n", item)
	for {
		attempt := item.beginAttempt()
		job.dispatchUpdate(item)

		state, err := job.attempt(ctx, item)
		if err == nil {
			item.setState(state)
			job.dispatchUpdate(item)
			log.Emit(logger.SUCCESS, "Extraction %s complete\n", item)
			return state, nil
		}

		if ctx.Err() != nil {
			log.Emit(logger.STOP, "Extraction %s abandoned: %v\n", item, ctx.Err())
			item.setState(PENDING)
			return PENDING, ctx.Err()
		}

		var trouble *Trouble
		if !errors.As(err, &trouble) {
			trouble = newTrouble(PROBE_FAILURE, err)
		}

		if !trouble.IsTransient() || attempt >= job.config.MaxAttempts {
			trouble.Attempts = attempt
			trouble.Exhausted = trouble.IsTransient()
			item.setTrouble(trouble, FAILED_TERMINAL)
			job.dispatchUpdate(item)
			log.Emit(logger.ERROR, "Extraction %s failed terminally: %v\n", item, trouble)
			return FAILED_TERMINAL, trouble
		}

		item.setTrouble(trouble, FAILED_TRANSIENT)
		job.dispatchUpdate(item)
		log.Emit(logger.WARNING, "Extraction %s attempt %d/%d failed, retrying in %s: %v\n", item, attempt, job.config.MaxAttempts, job.config.RetryBackoff(), trouble)

		if err := sleepContext(ctx, job.config.RetryBackoff()); err != nil {
			item.setState(PENDING)
			return PENDING, err
		}

		item.setState(PENDING)
		job.dispatchUpdate(item)
	}
}

// attempt performs a single, time-boxed, extraction attempt. The media
// record is loaded fresh for every attempt so that changes made since the
// extraction was enqueued are respected.
func (job *Job) attempt(parent context.Context, item *Extraction) (ExtractionState, error) {
	ctx, cancel := context.WithTimeout(parent, job.config.JobTimeout())
	defer cancel()

	record, err := job.store.LoadMedia(ctx, item.MediaID)
	if err != nil {
		return PENDING, classify(ctx, PERSISTENCE_FAILURE, err)
	} else if record == nil {
		log.Emit(logger.INFO, "Media %s no longer exists, skipping extraction: %v\n", item.MediaID, ErrRecordMissing)
		return SKIPPED, nil
	}

	valid, err := job.prober.IsValid(ctx, record.Path)
	if err != nil {
		return PENDING, classify(ctx, PROBE_FAILURE, err)
	} else if !valid {
		return PENDING, newTrouble(UNPROBEABLE_MEDIA, errors.New("file at "+record.Path+" is not valid media"))
	}

	format, err := job.prober.ProbeFormat(ctx, record.Path)
	if err != nil {
		return PENDING, classify(ctx, PROBE_FAILURE, err)
	}

	streams, err := job.prober.ProbeStreams(ctx, record.Path)
	if err != nil {
		return PENDING, classify(ctx, PROBE_FAILURE, err)
	}

	item.setState(MAPPING)
	job.dispatchUpdate(item)

	attrs := MapAttributes(format, primaryStream(streams))
	log.Emit(logger.DEBUG, "Mapped attributes for media %s: %+v\n", item.MediaID, attrs)
	if err := job.store.SaveAttributes(ctx, item.MediaID, attrs.Properties()); err != nil {
		if errors.Is(err, media.ErrMediaNotFound) {
			log.Emit(logger.INFO, "Media %s was deleted during extraction, skipping: %v\n", item.MediaID, ErrRecordMissing)
			return SKIPPED, nil
		}

		return PENDING, classify(ctx, PERSISTENCE_FAILURE, err)
	}

	return PERSISTED, nil
}

func (job *Job) dispatchUpdate(item *Extraction) {
	job.dispatcher.Dispatch(event.EXTRACTION_UPDATE, item.ID)
}

// classify converts an error raised during an attempt in to a trouble. Any
// error which occurs once the attempt deadline has passed is a timeout,
// regardless of how the failing call chose to report it.
func classify(ctx context.Context, fallback TroubleType, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, probe.ErrProbeTimeout) {
		return newTrouble(PROBE_TIMEOUT, err)
	}

	return newTrouble(fallback, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
