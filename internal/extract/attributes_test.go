package extract_test

import (
	"testing"

	"github.com/hbomb79/mediaprobe/internal/extract"
	"github.com/hbomb79/mediaprobe/internal/media"
	"github.com/hbomb79/mediaprobe/internal/probe"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MapAttributes(t *testing.T) {
	tests := []struct {
		summary  string
		output   string
		expected media.Attributes
	}{
		{
			summary: "primary video stream",
			output:  fullOutput,
			expected: media.Attributes{
				Duration: 125.4, Bitrate: 501200, CodecName: lo.ToPtr("h264"), Profile: lo.ToPtr("High"),
				AspectRatio: lo.ToPtr("16:9"), Width: 1920, Height: 1080,
			},
		},
		{
			summary:  "no streams",
			output:   noStreamsOutput,
			expected: media.Attributes{Duration: 10.0},
		},
		{
			summary:  "primary stream missing optional values",
			output:   `{"format": {"duration": "3.5", "bit_rate": "N/A"}, "streams": [{"codec_name": "pcm_s16le"}]}`,
			expected: media.Attributes{Duration: 3.5, CodecName: lo.ToPtr("pcm_s16le")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			result, err := probe.ParseOutput([]byte(tt.output))
			require.NoError(t, err)

			assert.Equal(t, tt.expected, extract.MapAttributes(result.Format, result.PrimaryStream()))
		})
	}
}
