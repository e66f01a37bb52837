package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/floostack/transcoder"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	"github.com/mitchellh/go-homedir"
)

var log = logger.Get("Probe")

const (
	showFormat  = "-show_format"
	showStreams = "-show_streams"

	// waitDelay bounds how long we wait for ffprobe's output pipes to
	// drain after the process has been killed.
	waitDelay = time.Second
)

// Prober wraps the ffprobe binary. Every invocation is bounded by the
// configured timeout, as well as by any deadline on the context supplied
// by the caller.
type Prober struct {
	config     Config
	binaryPath string
}

func New(config Config) (*Prober, error) {
	binaryPath, err := homedir.Expand(config.FfprobeBinaryPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe binary path '%s' is not valid: %w", config.FfprobeBinaryPath, err)
	}

	if config.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("probe timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return &Prober{config: config, binaryPath: binaryPath}, nil
}

// Verify ensures the configured ffprobe binary can be found and is
// executable.
func (prober *Prober) Verify() error {
	if _, err := exec.LookPath(prober.binaryPath); err != nil {
		return &ProbeError{Path: prober.binaryPath, ExitCode: -1, Err: err}
	}

	return nil
}

// BinaryPath returns the resolved path of the ffprobe binary.
func (prober *Prober) BinaryPath() string { return prober.binaryPath }

// IsValid reports whether the file at the path provided is media which ffprobe
// can make sense of. A missing/unreadable file, or a file ffprobe rejects, is
// NOT an error - false is returned. Errors are reserved for failures to operate
// ffprobe itself (including ffprobe crashing), and for timeouts.
func (prober *Prober) IsValid(ctx context.Context, path string) (bool, error) {
	if err := checkReadable(path); err != nil {
		log.Emit(logger.DEBUG, "File %s is not readable, treating as invalid: %v\n", path, err)
		return false, nil
	}

	result, err := prober.run(ctx, path, showFormat)
	if err != nil {
		var probeErr *ProbeError
		if errors.As(err, &probeErr) && probeErr.Launched() && !probeErr.Crashed() {
			log.Emit(logger.DEBUG, "ffprobe rejected %s, treating as invalid: %v\n", path, err)
			return false, nil
		}

		return false, err
	}

	return result.Valid, nil
}

// ProbeFormat returns the container level information for the file.
func (prober *Prober) ProbeFormat(ctx context.Context, path string) (transcoder.Format, error) {
	result, err := prober.run(ctx, path, showFormat)
	if err != nil {
		return nil, err
	}

	return result.Format, nil
}

// ProbeStreams returns every elementary stream in the file, in the order
// ffprobe discovered them. A file with no streams yields an empty slice.
func (prober *Prober) ProbeStreams(ctx context.Context, path string) ([]transcoder.Streams, error) {
	result, err := prober.run(ctx, path, showStreams)
	if err != nil {
		return nil, err
	}

	return result.Streams, nil
}

// Probe fetches both format and stream information in a single invocation.
func (prober *Prober) Probe(ctx context.Context, path string) (*Result, error) {
	return prober.run(ctx, path, showFormat, showStreams)
}

func (prober *Prober) run(parent context.Context, path string, sections ...string) (*Result, error) {
	ctx, cancel := context.WithTimeout(parent, prober.config.Timeout())
	defer cancel()

	args := prober.buildArgs(path, sections...)
	cmd := exec.CommandContext(ctx, prober.binaryPath, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Emit(logger.VERBOSE, "Running %s %s\n", prober.binaryPath, strings.Join(args, " "))
	started := time.Now()
	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: probing %s aborted after %s: %w", ErrProbeTimeout, path, time.Since(started).Round(time.Millisecond), ctxErr)
	}

	if runErr != nil {
		probeErr := &ProbeError{Path: path, ExitCode: -1, Stderr: strings.TrimSpace(stderr.String()), Err: runErr}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			probeErr.launched = true
			probeErr.ExitCode = exitErr.ExitCode()
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				probeErr.Signal = status.Signal().String()
			}
		}

		return nil, probeErr
	}

	result, err := ParseOutput(stdout.Bytes())
	if err != nil {
		return nil, &ProbeError{Path: path, Err: err, launched: true}
	}

	log.Emit(logger.VERBOSE, "ffprobe result for %s: %s", path, spew.Sdump(result))
	return result, nil
}

func (prober *Prober) buildArgs(path string, sections ...string) []string {
	args := []string{"-v", "error"}
	if prober.config.ThreadCount > 0 {
		args = append(args, "-threads", strconv.Itoa(prober.config.ThreadCount))
	}
	args = append(args, "-print_format", "json", "-show_error")
	args = append(args, sections...)

	return append(args, "-i", path)
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}

	return file.Close()
}
