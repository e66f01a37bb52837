package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/api"
	"github.com/hbomb79/mediaprobe/internal/database"
	"github.com/hbomb79/mediaprobe/internal/event"
	"github.com/hbomb79/mediaprobe/internal/extract"
	"github.com/hbomb79/mediaprobe/internal/probe"
	"github.com/hbomb79/mediaprobe/internal/queue"
	"github.com/hbomb79/mediaprobe/pkg/logger"
)

var (
	log = logger.Get("Core")

	ErrQueueNotShared = errors.New("the memory queue backend is private to the server process; configure the redis backend to enqueue work from the CLI")
)

type (
	RunnableService interface {
		Run(context.Context) error
	}

	ExtractionService interface {
		RunnableService
		Enqueue(context.Context, uuid.UUID) error
		GetAllExtractions() []*extract.Extraction
		GetExtraction(uuid.UUID) *extract.Extraction
		GetDeadLetters(context.Context) ([]queue.DeadLetter, error)
		RetryDeadLetter(context.Context, uuid.UUID) error
	}
)

// mediaProbeImpl represents the top-level object for the server, and is
// responsible for initialising the database connection, the extraction
// queue, the services, and the event handling between them.
type mediaProbeImpl struct {
	config   Config
	eventBus event.EventCoordinator
	db       database.Manager
	store    *dataOrchestrator
}

func New(config Config) *mediaProbeImpl {
	log.Emit(logger.DEBUG, "Bootstrapping services using config: %#v\n", config.Extraction)
	db := database.New()
	return &mediaProbeImpl{
		config:   config,
		eventBus: event.New(),
		db:       db,
		store:    NewDataOrchestrator(db),
	}
}

// Run will start the server by bringing up all required services and connections, such as:
// - Database connection (and any pending migrations)
// - Extraction queue
// - Extraction, activity and REST services
//
// This function will not return until the server is stopped.
// To stop the server, the provided context must be cancelled. Errors from which it cannot recover
// will also cause the server to stop.
func (srv *mediaProbeImpl) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel()
	}

	log.Emit(logger.NEW, "Connecting to database...\n")
	if err := srv.db.Connect(ctx, srv.config.Database); err != nil {
		return err
	}
	defer srv.db.Close()

	extractQueue, err := queue.New(ctx, srv.config.Queue)
	if err != nil {
		return err
	}
	defer extractQueue.Close()

	prober, err := probe.New(srv.config.Probe)
	if err != nil {
		return err
	}
	if err := prober.Verify(); err != nil {
		return fmt.Errorf("ffprobe is not available: %w", err)
	}

	var extractService ExtractionService
	if serv, err := extract.New(srv.config.Extraction, extractQueue, srv.store, prober, srv.eventBus); err == nil {
		extractService = serv
	} else {
		return fmt.Errorf("failed to construct extraction service: %w", err)
	}

	activity := newActivityService(newActivityLogger(extractService, srv.store), srv.eventBus)
	restGateway := api.NewRestGateway(&srv.config.RestConfig, extractService, srv.store)

	wg := &sync.WaitGroup{}
	srv.spawnAsyncService(ctx, wg, activity, "activity-service", crashHandler)
	srv.spawnAsyncService(ctx, wg, extractService, "extraction-service", crashHandler)
	srv.spawnAsyncService(ctx, wg, restGateway, "rest-gateway", crashHandler)
	log.Emit(logger.SUCCESS, "Services spawned!\n")

	wg.Wait()
	return nil
}

// spawnAsyncService will run the provided function/service as it's own
// go-routine, ensuring that the service waitgroup is updated correctly
func (srv *mediaProbeImpl) spawnAsyncService(context context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		if err := service.Run(context); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}

// Backfill enqueues every media record which has never had attributes
// extracted. The queue is shared with any running server, which will
// pick the work up on its next poll.
func Backfill(ctx context.Context, config Config, limit uint64) (int, error) {
	if config.Queue.Backend != queue.RedisBackend {
		return 0, ErrQueueNotShared
	}

	db := database.New()
	if err := db.Connect(ctx, config.Database); err != nil {
		return 0, err
	}
	defer db.Close()

	extractQueue, err := queue.New(ctx, config.Queue)
	if err != nil {
		return 0, err
	}
	defer extractQueue.Close()

	ids, err := NewDataOrchestrator(db).ListMediaMissingAttributes(ctx, limit)
	if err != nil {
		return 0, err
	}

	return enqueueAll(ctx, extractQueue, ids)
}

// Enqueue pushes the media IDs provided on to the shared extraction queue.
func Enqueue(ctx context.Context, config Config, ids []uuid.UUID) (int, error) {
	if config.Queue.Backend != queue.RedisBackend {
		return 0, ErrQueueNotShared
	}

	extractQueue, err := queue.New(ctx, config.Queue)
	if err != nil {
		return 0, err
	}
	defer extractQueue.Close()

	return enqueueAll(ctx, extractQueue, ids)
}

// Migrate connects to the database, running any pending migrations.
func Migrate(ctx context.Context, config Config) error {
	db := database.New()
	if err := db.Connect(ctx, config.Database); err != nil {
		return err
	}

	return db.Close()
}

func enqueueAll(ctx context.Context, q queue.Queue, ids []uuid.UUID) (int, error) {
	added := 0
	for _, id := range ids {
		ok, err := q.Push(ctx, id)
		if err != nil {
			return added, fmt.Errorf("failed to enqueue media %s: %w", id, err)
		}
		if ok {
			added++
		}
	}

	return added, nil
}
