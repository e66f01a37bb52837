package media_test

import (
	"testing"

	"github.com/hbomb79/mediaprobe/internal/database"
	"github.com/hbomb79/mediaprobe/internal/media"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Attributes_Properties(t *testing.T) {
	attrs := media.Attributes{
		Duration:    125.4,
		Bitrate:     501200,
		CodecName:   lo.ToPtr("h264"),
		Profile:     lo.ToPtr("High"),
		AspectRatio: lo.ToPtr("16:9"),
		Width:       1920,
		Height:      1080,
	}

	assert.Equal(t, map[string]any{
		"duration":     125.4,
		"bitrate":      int64(501200),
		"codec_name":   "h264",
		"profile":      "High",
		"aspect_ratio": "16:9",
		"width":        1920,
		"height":       1080,
	}, attrs.Properties())
}

func Test_Attributes_PropertiesUsesNullForAbsentStrings(t *testing.T) {
	props := media.Attributes{Duration: 10}.Properties()

	assert.Len(t, props, len(media.AttributeKeys))
	for _, key := range media.AttributeKeys {
		assert.Contains(t, props, key)
	}
	assert.Nil(t, props["codec_name"])
	assert.Nil(t, props["profile"])
	assert.Nil(t, props["aspect_ratio"])
	assert.Equal(t, 0, props["width"])
}

func Test_Record_Attributes(t *testing.T) {
	tests := []struct {
		summary    string
		properties map[string]any
		expected   media.Attributes
	}{
		{
			summary: "json decoded values",
			properties: map[string]any{
				"duration": 125.4, "bitrate": float64(501200), "codec_name": "h264", "profile": "High",
				"aspect_ratio": "16:9", "width": float64(1920), "height": float64(1080), "title": "untouched",
			},
			expected: media.Attributes{
				Duration: 125.4, Bitrate: 501200, CodecName: lo.ToPtr("h264"), Profile: lo.ToPtr("High"),
				AspectRatio: lo.ToPtr("16:9"), Width: 1920, Height: 1080,
			},
		},
		{
			summary:    "legacy string values",
			properties: map[string]any{"duration": "125.400000", "bitrate": "501200", "codec_name": nil},
			expected:   media.Attributes{Duration: 125.4, Bitrate: 501200},
		},
		{
			summary:    "no attributes extracted",
			properties: nil,
			expected:   media.Attributes{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			record := &media.Record{CustomProperties: database.NewJsonColumn(tt.properties)}
			attrs, err := record.Attributes()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, attrs)
		})
	}
}
