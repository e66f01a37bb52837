package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal"
	"github.com/hbomb79/mediaprobe/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeOutput = `{
	"streams": [{"index": 0, "codec_name": "h264", "profile": "High", "codec_type": "video", "width": 1920, "height": 1080, "display_aspect_ratio": "16:9"}],
	"format": {"duration": "125.400000", "bit_rate": "501200"}
}`

func writeConfig(t *testing.T, ffprobe string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "[probe]\nffprobe_binary_path = \"" + ffprobe + "\"\ntimeout_seconds = 5\n\n[queue]\nbackend = \"memory\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Cleanup(func() { checkOnly = false })

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	return out.String(), err
}

func Test_ProbeCommand_PrintsAttributes(t *testing.T) {
	ffprobe := helpers.FakeBinary(t, "ffprobe", "cat <<'JSON'\n"+probeOutput+"\nJSON")
	_, files := helpers.TempDirWithFiles(t, []string{"movie.mp4"})

	output, err := execute(t, "--config", writeConfig(t, ffprobe), "probe", files[0])
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	require.Contains(t, decoded, files[0])

	attributes := decoded[files[0]]
	assert.Equal(t, 125.4, attributes["duration"])
	assert.EqualValues(t, 501200, attributes["bitrate"])
	assert.Equal(t, "h264", attributes["codec_name"])
	assert.Equal(t, "High", attributes["profile"])
	assert.Equal(t, "16:9", attributes["aspect_ratio"])
	assert.EqualValues(t, 1920, attributes["width"])
	assert.EqualValues(t, 1080, attributes["height"])
}

func Test_ProbeCommand_ReportsInvalidMedia(t *testing.T) {
	ffprobe := helpers.FakeBinary(t, "ffprobe", "echo '{\"format\": {}}'")
	_, files := helpers.TempDirWithFiles(t, []string{"notes.txt"})

	output, err := execute(t, "--config", writeConfig(t, ffprobe), "probe", "--check", files[0])
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, false, decoded[files[0]]["valid"])
}

func Test_EnqueueCommand(t *testing.T) {
	ffprobe := helpers.FakeBinary(t, "ffprobe", "exit 0")
	configPath := writeConfig(t, ffprobe)

	_, err := execute(t, "--config", configPath, "enqueue", "not-a-uuid")
	assert.ErrorContains(t, err, "not a valid media ID")

	_, err = execute(t, "--config", configPath, "enqueue", uuid.NewString())
	assert.ErrorIs(t, err, internal.ErrQueueNotShared)
}
