package extract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/event"
	"github.com/hbomb79/mediaprobe/internal/queue"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	typedsync "github.com/hbomb79/mediaprobe/pkg/sync"
	"github.com/hbomb79/mediaprobe/pkg/worker"
)

var (
	log = logger.Get("ExtractServ")

	ErrDeadLetterNotFound = errors.New("no dead letter exists for media")
)

const queueWriteTimeout = 5 * time.Second

// extractionService consumes media IDs from the queue, and runs an
// extraction Job for each using a pool of workers. Extractions which
// fail terminally are recorded as dead letters on the queue.
type extractionService struct {
	*sync.Mutex
	config     Config
	queue      queue.Queue
	job        *Job
	eventBus   event.EventDispatcher
	workerPool *worker.WorkerPool

	ctx         context.Context
	extractions typedsync.TypedSyncMap[uuid.UUID, *Extraction]
}

// New creates a new extraction service, using the provided config for
// subsequent calls to 'Run'.
func New(config Config, q queue.Queue, store DataStore, prober Prober, eventBus event.EventDispatcher) (*extractionService, error) {
	if config.MaxAttempts < 1 {
		return nil, fmt.Errorf("extraction max attempts must be at least 1, got %d", config.MaxAttempts)
	}
	if config.Parallelism < 1 {
		return nil, fmt.Errorf("extraction parallelism must be at least 1, got %d", config.Parallelism)
	}

	service := &extractionService{
		Mutex:      &sync.Mutex{},
		config:     config,
		queue:      q,
		job:        NewJob(config, prober, store, eventBus),
		eventBus:   eventBus,
		workerPool: worker.NewWorkerPool(),
	}

	for i := 0; i < config.Parallelism; i++ {
		label := fmt.Sprintf("extract-worker-%d", i)
		service.workerPool.PushWorker(worker.NewWorker(label, service.PerformExtraction))
	}

	return service, nil
}

// Run starts the worker pool and wakes it up on the configured poll interval
// so that work pushed to the queue by other processes is picked up. To stop
// the service, cancel the context provided; Run returns once every worker
// has exited.
func (service *extractionService) Run(ctx context.Context) error {
	service.Lock()
	service.ctx = ctx
	service.Unlock()

	service.reclaim(ctx)
	if err := service.workerPool.Start(); err != nil {
		return err
	}
	defer service.workerPool.Close()

	service.wakeupWorkerPool()

	ticker := time.NewTicker(service.config.PollInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			service.reclaim(ctx)
			service.wakeupWorkerPool()
		case <-ctx.Done():
			log.Emit(logger.STOP, "Extraction service shutting down, waiting for workers...\n")
			return nil
		}
	}
}

// Enqueue requests attribute extraction for the media provided. Enqueueing
// media which is already waiting in the queue has no effect.
func (service *extractionService) Enqueue(ctx context.Context, mediaID uuid.UUID) error {
	added, err := service.queue.Push(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("failed to enqueue extraction for media %s: %w", mediaID, err)
	}

	if added {
		log.Emit(logger.NEW, "Enqueued extraction for media %s\n", mediaID)
		service.wakeupWorkerPool()
	} else {
		log.Emit(logger.DEBUG, "Extraction for media %s already queued\n", mediaID)
	}

	return nil
}

// PerformExtraction is the worker function for the extraction service. Each
// call pops one media ID from the queue and runs a job for it to completion.
func (service *extractionService) PerformExtraction(w worker.Worker) (bool, error) {
	ctx := service.runContext()
	if ctx == nil || ctx.Err() != nil {
		return false, nil
	}

	mediaID, ok, err := service.queue.Pop(ctx)
	if err != nil {
		return false, err
	} else if !ok {
		return false, nil
	}

	item := NewExtraction(mediaID)
	service.track(item)
	defer service.untrack(item)

	log.Emit(logger.DEBUG, "Worker %s claimed %s\n", w.Label(), item)
	_, err = service.job.Execute(ctx, item)
	if err == nil {
		service.ack(ctx, mediaID)
		service.eventBus.Dispatch(event.EXTRACTION_COMPLETE, mediaID)
		return true, nil
	}

	var trouble *Trouble
	if errors.As(err, &trouble) {
		service.recordDeadLetter(ctx, mediaID, trouble)
		service.ack(ctx, mediaID)
		service.eventBus.Dispatch(event.EXTRACTION_FAILED, mediaID)
		return true, nil
	}

	if ctx.Err() != nil {
		service.requeue(ctx, mediaID)
		return false, nil
	}

	return true, err
}

// GetAllExtractions returns every in-flight extraction, oldest first.
func (service *extractionService) GetAllExtractions() []*Extraction {
	items := make([]*Extraction, 0)
	service.extractions.Range(func(_ uuid.UUID, item *Extraction) bool {
		items = append(items, item)
		return true
	})

	sort.Slice(items, func(i, j int) bool { return items[i].EnqueuedAt.Before(items[j].EnqueuedAt) })
	return items
}

// GetExtraction returns the in-flight extraction with the ID provided, or nil.
func (service *extractionService) GetExtraction(id uuid.UUID) *Extraction {
	item, _ := service.extractions.Load(id)
	return item
}

func (service *extractionService) GetDeadLetters(ctx context.Context) ([]queue.DeadLetter, error) {
	return service.queue.DeadLetters(ctx)
}

// RetryDeadLetter removes the dead letter for the media provided and
// enqueues the media again.
func (service *extractionService) RetryDeadLetter(ctx context.Context, mediaID uuid.UUID) error {
	removed, err := service.queue.RemoveDeadLetter(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("failed to remove dead letter for media %s: %w", mediaID, err)
	} else if !removed {
		return ErrDeadLetterNotFound
	}

	return service.Enqueue(ctx, mediaID)
}

func (service *extractionService) recordDeadLetter(ctx context.Context, mediaID uuid.UUID, trouble *Trouble) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queueWriteTimeout)
	defer cancel()

	letter := queue.DeadLetter{
		MediaID:  mediaID,
		Trouble:  trouble.Type().String(),
		Message:  trouble.Error(),
		Attempts: trouble.Attempts,
		FailedAt: time.Now().UTC(),
	}
	if err := service.queue.PushDeadLetter(writeCtx, letter); err != nil {
		log.Emit(logger.ERROR, "Failed to record dead letter for media %s (%v): %v\n", mediaID, trouble, err)
	}
}

// requeue pushes media back on to the queue after its extraction was
// abandoned due to shutdown.
func (service *extractionService) requeue(ctx context.Context, mediaID uuid.UUID) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queueWriteTimeout)
	defer cancel()

	if _, err := service.queue.Push(writeCtx, mediaID); err != nil {
		log.Emit(logger.ERROR, "Failed to requeue abandoned extraction for media %s: %v\n", mediaID, err)
		return
	}

	service.ack(ctx, mediaID)
	log.Emit(logger.INFO, "Requeued abandoned extraction for media %s\n", mediaID)
}

// ack releases the lease held on the media. If this fails the lease will
// expire and the media will be extracted again.
func (service *extractionService) ack(ctx context.Context, mediaID uuid.UUID) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queueWriteTimeout)
	defer cancel()

	if err := service.queue.Ack(writeCtx, mediaID); err != nil {
		log.Emit(logger.WARNING, "Failed to acknowledge extraction for media %s: %v\n", mediaID, err)
	}
}

// reclaim returns media whose lease has expired to the queue. These were
// claimed by a worker (possibly in another process) which never finished.
func (service *extractionService) reclaim(ctx context.Context) {
	reclaimed, err := service.queue.Reclaim(ctx)
	if err != nil {
		log.Emit(logger.ERROR, "Failed to reclaim expired extractions: %v\n", err)
	} else if reclaimed > 0 {
		log.Emit(logger.INFO, "Reclaimed %d abandoned extraction(s)\n", reclaimed)
	}
}

func (service *extractionService) runContext() context.Context {
	service.Lock()
	defer service.Unlock()
	return service.ctx
}

func (service *extractionService) track(item *Extraction) {
	service.extractions.Store(item.ID, item)
}

func (service *extractionService) untrack(item *Extraction) {
	service.extractions.Delete(item.ID)
}

// wakeupWorkerPool signals the workers; a pool which is not running yet
// will drain the queue when it starts.
func (service *extractionService) wakeupWorkerPool() {
	_ = service.workerPool.WakeupWorkers()
}
