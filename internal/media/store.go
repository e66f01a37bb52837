package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/database"
)

var ErrMediaNotFound = errors.New("media does not exist")

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Store struct{}

// Create inserts a new media record for the path provided, with
// empty custom properties.
func (store *Store) Create(ctx context.Context, db database.Queryable, path string) (*Record, error) {
	var record Record
	if err := db.GetContext(ctx, &record, `
		INSERT INTO media(id, path, custom_properties, created_at, updated_at)
		VALUES ($1, $2, '{}'::jsonb, current_timestamp, current_timestamp)
		RETURNING *
	`, uuid.New(), path); err != nil {
		return nil, fmt.Errorf("failed to insert media for path %s: %w", path, err)
	}

	return &record, nil
}

// Get returns the media record with the ID provided, or ErrMediaNotFound if
// no such record exists.
func (store *Store) Get(ctx context.Context, db database.Queryable, id uuid.UUID) (*Record, error) {
	var record Record
	if err := db.GetContext(ctx, &record, `SELECT * FROM media WHERE id=$1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaNotFound
		}

		return nil, fmt.Errorf("failed to get media %s: %w", id, err)
	}

	return &record, nil
}

// SaveAttributes merges the properties provided in to the custom properties
// of the media. Keys already present are overwritten, all others are left
// untouched. The merge happens in a single UPDATE so concurrent writers
// can not interleave partial results.
//
// ErrMediaNotFound is returned if the media no longer exists.
func (store *Store) SaveAttributes(ctx context.Context, db database.Queryable, id uuid.UUID, properties map[string]any) error {
	res, err := db.ExecContext(ctx, `
		UPDATE media
		SET custom_properties = custom_properties || $2::jsonb, updated_at = current_timestamp
		WHERE id = $1
	`, id, database.NewJsonColumn(properties))
	if err != nil {
		return fmt.Errorf("failed to save attributes for media %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save attributes for media %s: %w", id, err)
	}
	if affected == 0 {
		return ErrMediaNotFound
	}

	return nil
}

// Delete removes the media with the ID provided. Deleting media which
// does not exist is not an error.
func (store *Store) Delete(ctx context.Context, db database.Queryable, id uuid.UUID) error {
	_, err := db.ExecContext(ctx, `DELETE FROM media WHERE id=$1`, id)
	return err
}

// ListMissingAttributes returns the IDs of media which have never had
// their attributes extracted, oldest first.
func (store *Store) ListMissingAttributes(ctx context.Context, db database.Queryable, limit uint64) ([]uuid.UUID, error) {
	builder := psql.
		Select("id").
		From("media").
		Where("NOT jsonb_exists(custom_properties, 'duration')").
		OrderBy("created_at ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to construct missing attributes query: %w", err)
	}

	var ids []uuid.UUID
	if err := db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list media missing attributes: %w", err)
	}

	return ids, nil
}
