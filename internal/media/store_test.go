package media_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/media"
	"github.com/hbomb79/mediaprobe/tests/helpers"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func Test_Store_SaveAttributesMergesProperties(t *testing.T) {
	db := helpers.RequireDatabase(t)
	store := &media.Store{}

	record, err := store.Create(ctx, db, "/media/movie.mp4")
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE media SET custom_properties = '{"title": "Movie", "duration": 1}'::jsonb WHERE id=$1`, record.ID)
	require.NoError(t, err)

	attrs := media.Attributes{Duration: 125.4, Bitrate: 501200, CodecName: lo.ToPtr("h264"), Width: 1920, Height: 1080}
	require.NoError(t, store.SaveAttributes(ctx, db, record.ID, attrs.Properties()))

	fetched, err := store.Get(ctx, db, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "/media/movie.mp4", fetched.Path, "path must not be modified")
	assert.Equal(t, "Movie", fetched.Properties()["title"], "unrelated properties must be preserved")
	assert.Nil(t, fetched.Properties()["profile"])

	fetchedAttrs, err := fetched.Attributes()
	require.NoError(t, err)
	assert.Equal(t, attrs, fetchedAttrs)

	// Writing the same attributes again must leave the record unchanged
	require.NoError(t, store.SaveAttributes(ctx, db, record.ID, attrs.Properties()))
	refetched, err := store.Get(ctx, db, record.ID)
	require.NoError(t, err)
	assert.Equal(t, fetched.Properties(), refetched.Properties())
}

func Test_Store_MissingMedia(t *testing.T) {
	db := helpers.RequireDatabase(t)
	store := &media.Store{}

	_, err := store.Get(ctx, db, uuid.New())
	assert.ErrorIs(t, err, media.ErrMediaNotFound)

	err = store.SaveAttributes(ctx, db, uuid.New(), media.Attributes{}.Properties())
	assert.ErrorIs(t, err, media.ErrMediaNotFound)

	assert.NoError(t, store.Delete(ctx, db, uuid.New()))
}

func Test_Store_ListMissingAttributes(t *testing.T) {
	db := helpers.RequireDatabase(t)
	store := &media.Store{}

	first, err := store.Create(ctx, db, "/media/first.mkv")
	require.NoError(t, err)
	done, err := store.Create(ctx, db, "/media/done.mkv")
	require.NoError(t, err)
	second, err := store.Create(ctx, db, "/media/second.mkv")
	require.NoError(t, err)
	require.NoError(t, store.SaveAttributes(ctx, db, done.ID, media.Attributes{Duration: 10}.Properties()))

	ids, err := store.ListMissingAttributes(ctx, db, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, ids)

	ids, err = store.ListMissingAttributes(ctx, db, 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, ids)

	require.NoError(t, store.Delete(ctx, db, first.ID))
	ids, err = store.ListMissingAttributes(ctx, db, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID}, ids)
}
