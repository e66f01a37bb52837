package probe

import (
	"errors"
	"fmt"
)

// ErrProbeTimeout is returned when an ffprobe invocation is still running
// when its context expires. The process is killed and no output is used.
var ErrProbeTimeout = errors.New("ffprobe timed out")

// ProbeError is returned when ffprobe could not be launched, exited
// abnormally, or produced output that could not be parsed.
type ProbeError struct {
	Path     string
	ExitCode int
	Stderr   string
	Err      error

	// Signal names the signal which killed ffprobe, if it did not exit
	// by itself.
	Signal string

	launched bool
}

func (err *ProbeError) Error() string {
	if !err.launched {
		return fmt.Sprintf("failed to launch ffprobe for %s: %v", err.Path, err.Err)
	}

	if err.Signal != "" {
		return fmt.Sprintf("ffprobe crashed for %s (%s): %v", err.Path, err.Signal, err.Err)
	}

	if err.Stderr != "" {
		return fmt.Sprintf("ffprobe failed for %s (exit code %d): %v: %s", err.Path, err.ExitCode, err.Err, err.Stderr)
	}

	return fmt.Sprintf("ffprobe failed for %s (exit code %d): %v", err.Path, err.ExitCode, err.Err)
}

func (err *ProbeError) Unwrap() error { return err.Err }

// Launched reports whether ffprobe actually ran. A ProbeError which was
// not launched indicates an infrastructure problem (missing binary, bad
// permissions) rather than a problem with the file being probed.
func (err *ProbeError) Launched() bool { return err.launched }

// Crashed reports whether ffprobe was killed by a signal (segfault, OOM
// kill) rather than exiting.
func (err *ProbeError) Crashed() bool { return err.Signal != "" }
