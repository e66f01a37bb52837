package probe

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/floostack/transcoder"
	"github.com/floostack/transcoder/ffmpeg"
	"github.com/samber/mo"
)

// Result is the decoded output of a single ffprobe invocation. It is never
// stored as-is; consumers map the parts they need and discard it.
type Result struct {
	Format  transcoder.Format
	Streams []transcoder.Streams
	Valid   bool
}

// PrimaryStream returns the first stream reported by ffprobe, if
// there is one.
func (result *Result) PrimaryStream() mo.Option[transcoder.Streams] {
	if len(result.Streams) == 0 {
		return mo.None[transcoder.Streams]()
	}

	return mo.Some(result.Streams[0])
}

// ParseOutput decodes the JSON printed by ffprobe (using '-print_format json')
// in to a Result. The result is considered valid media if the container
// reports a positive duration.
func ParseOutput(output []byte) (*Result, error) {
	var metadata ffmpeg.Metadata
	if err := json.Unmarshal(output, &metadata); err != nil {
		return nil, fmt.Errorf("unparsable ffprobe output: %w", err)
	}

	format := metadata.GetFormat()
	streams := metadata.GetStreams()
	if streams == nil {
		streams = []transcoder.Streams{}
	}

	return &Result{
		Format:  format,
		Streams: streams,
		Valid:   ParseFloat(format.GetDuration()) > 0,
	}, nil
}

// ParseFloat parses the decimal strings ffprobe uses for values such as
// duration. Missing or malformed values yield zero.
func ParseFloat(value string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}

	return v
}

// ParseInt parses the integer strings ffprobe uses for values such as
// bit_rate. Missing or malformed values yield zero.
func ParseInt(value string) int64 {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return int64(ParseFloat(value))
	}

	return v
}
