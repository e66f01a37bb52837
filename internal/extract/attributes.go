package extract

import (
	"github.com/floostack/transcoder"
	"github.com/hbomb79/mediaprobe/internal/media"
	"github.com/hbomb79/mediaprobe/internal/probe"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// MapAttributes derives the fixed attribute set from the container format
// and (optionally) the primary stream of a probed file. When there is no
// primary stream the stream attributes are left absent.
func MapAttributes(format transcoder.Format, primary mo.Option[transcoder.Streams]) media.Attributes {
	attrs := media.Attributes{}
	if format != nil {
		attrs.Duration = probe.ParseFloat(format.GetDuration())
		attrs.Bitrate = probe.ParseInt(format.GetBitRate())
	}

	if stream, ok := primary.Get(); ok && stream != nil {
		attrs.CodecName = lo.EmptyableToPtr(stream.GetCodecName())
		attrs.Profile = lo.EmptyableToPtr(stream.GetProfile())
		attrs.AspectRatio = lo.EmptyableToPtr(stream.GetDisplayAspectRatio())
		attrs.Width = stream.GetWidth()
		attrs.Height = stream.GetHeight()
	}

	return attrs
}

func primaryStream(streams []transcoder.Streams) mo.Option[transcoder.Streams] {
	return (&probe.Result{Streams: streams}).PrimaryStream()
}
