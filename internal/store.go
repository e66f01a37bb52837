package internal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/database"
	"github.com/hbomb79/mediaprobe/internal/media"
)

// dataOrchestrator is responsible for linking the 'dumb' data stores
// with the database connection, and is the persistence collaborator
// given to the extraction service and the REST gateway.
type dataOrchestrator struct {
	db         database.Manager
	MediaStore *media.Store
}

func NewDataOrchestrator(db database.Manager) *dataOrchestrator {
	return &dataOrchestrator{db: db, MediaStore: &media.Store{}}
}

// LoadMedia returns the current state of the media with the ID provided. A nil
// record, without error, is returned if the media does not exist.
func (orchestrator *dataOrchestrator) LoadMedia(ctx context.Context, mediaID uuid.UUID) (*media.Record, error) {
	record, err := orchestrator.MediaStore.Get(ctx, orchestrator.db.GetSqlxDb(), mediaID)
	if errors.Is(err, media.ErrMediaNotFound) {
		return nil, nil
	}

	return record, err
}

func (orchestrator *dataOrchestrator) GetMedia(ctx context.Context, mediaID uuid.UUID) (*media.Record, error) {
	return orchestrator.MediaStore.Get(ctx, orchestrator.db.GetSqlxDb(), mediaID)
}

func (orchestrator *dataOrchestrator) SaveAttributes(ctx context.Context, mediaID uuid.UUID, properties map[string]any) error {
	return orchestrator.MediaStore.SaveAttributes(ctx, orchestrator.db.GetSqlxDb(), mediaID, properties)
}

func (orchestrator *dataOrchestrator) CreateMedia(ctx context.Context, path string) (*media.Record, error) {
	return orchestrator.MediaStore.Create(ctx, orchestrator.db.GetSqlxDb(), path)
}

func (orchestrator *dataOrchestrator) ListMediaMissingAttributes(ctx context.Context, limit uint64) ([]uuid.UUID, error) {
	return orchestrator.MediaStore.ListMissingAttributes(ctx, orchestrator.db.GetSqlxDb(), limit)
}
