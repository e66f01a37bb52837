package media

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/database"
	"github.com/mitchellh/mapstructure"
)

type (
	// Record is the persisted media entity. Its identity and path are owned
	// by whoever created it; the extraction pipeline only ever merges keys
	// in to its custom properties.
	Record struct {
		ID               uuid.UUID                          `db:"id"`
		Path             string                             `db:"path"`
		CustomProperties database.JsonColumn[map[string]any] `db:"custom_properties"`
		CreatedAt        time.Time                          `db:"created_at"`
		UpdatedAt        time.Time                          `db:"updated_at"`
	}

	// Attributes is the fixed set of technical attributes derived from
	// probing a media file. Absent strings are stored as JSON null.
	Attributes struct {
		Duration    float64 `mapstructure:"duration"`
		Bitrate     int64   `mapstructure:"bitrate"`
		CodecName   *string `mapstructure:"codec_name"`
		Profile     *string `mapstructure:"profile"`
		AspectRatio *string `mapstructure:"aspect_ratio"`
		Width       int     `mapstructure:"width"`
		Height      int     `mapstructure:"height"`
	}
)

// AttributeKeys lists every key written by Attributes.Properties.
var AttributeKeys = []string{"duration", "bitrate", "codec_name", "profile", "aspect_ratio", "width", "height"}

// Properties renders the attributes as the custom property mapping which
// is merged on to the media record. Every key is always present so repeated
// writes overwrite the same keys.
func (attr Attributes) Properties() map[string]any {
	return map[string]any{
		"duration":     attr.Duration,
		"bitrate":      attr.Bitrate,
		"codec_name":   nullableString(attr.CodecName),
		"profile":      nullableString(attr.Profile),
		"aspect_ratio": nullableString(attr.AspectRatio),
		"width":        attr.Width,
		"height":       attr.Height,
	}
}

// Properties returns the custom properties of the record. The returned
// map is never nil.
func (record *Record) Properties() map[string]any {
	props := record.CustomProperties.Get()
	if *props == nil {
		*props = make(map[string]any)
	}

	return *props
}

// Attributes decodes the probed attributes stored in the records custom
// properties. Values are weakly typed, so numbers stored as strings (as
// written by older tooling) are still understood.
func (record *Record) Attributes() (Attributes, error) {
	var attrs Attributes
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &attrs,
	})
	if err != nil {
		return attrs, err
	}

	if err := decoder.Decode(record.Properties()); err != nil {
		return attrs, fmt.Errorf("failed to decode attributes of media %s: %w", record.ID, err)
	}

	return attrs, nil
}

func (record *Record) String() string {
	return fmt.Sprintf("Media{ID=%s path=%s}", record.ID, record.Path)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}
