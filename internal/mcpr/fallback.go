package mcpr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"replayvault/internal/logging"
)

// Executor abstracts command execution for testability.
type Executor interface {
	// Run executes the binary and returns its stdout and exit code. A non-nil
	// error means the command could not be run at all; a nonzero exit code is
	// reported through the int, not the error.
	Run(ctx context.Context, binary string, args []string) ([]byte, int, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, -1, err
	}
	return stdout.Bytes(), 0, nil
}

// Extractor reads replay metadata, falling back to external archive tools
// when the native zip reader cannot open a file. Some archives in the wild
// carry damaged central directories that 7z and unzip still recover.
type Extractor struct {
	exec   Executor
	logger *slog.Logger
}

// Option configures the extractor.
type Option func(*Extractor)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *Extractor) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// NewExtractor constructs a metadata extractor.
func NewExtractor(logger *slog.Logger, opts ...Option) *Extractor {
	extractor := &Extractor{
		exec:   commandExecutor{},
		logger: logging.NewComponentLogger(logger, "mcpr"),
	}
	for _, opt := range opts {
		opt(extractor)
	}
	return extractor
}

// Extract reads metadata from the archive at path. The native reader is
// tried first; if the file is unreadable as a zip, 7z and then unzip are
// asked to stream the metadata entry to stdout. unzip signals recoverable
// archive damage with exit code 2 while still producing the entry, so that
// code is tolerated when output was captured.
func (e *Extractor) Extract(ctx context.Context, path string) (*Metadata, error) {
	meta, err := Extract(path)
	if err == nil {
		return meta, nil
	}
	if !errors.Is(err, ErrNotArchive) {
		return nil, err
	}

	e.logger.Debug("native reader failed, trying external tools",
		logging.String("path", path),
		logging.Error(err))

	if data, ok := e.runTool(ctx, "7z", []string{"x", "-so", path, MetadataMember}, []int{0}); ok {
		return Parse(data)
	}
	if data, ok := e.runTool(ctx, "unzip", []string{"-p", path, MetadataMember}, []int{0, 2}); ok {
		return Parse(data)
	}
	return nil, err
}

func (e *Extractor) runTool(ctx context.Context, binary string, args []string, okCodes []int) ([]byte, bool) {
	stdout, code, err := e.exec.Run(ctx, binary, args)
	if err != nil {
		e.logger.Debug("extractor unavailable",
			logging.String("binary", binary),
			logging.Error(err))
		return nil, false
	}
	if len(stdout) == 0 {
		return nil, false
	}
	for _, ok := range okCodes {
		if code == ok {
			return stdout, true
		}
	}
	e.logger.Debug("extractor exited abnormally",
		logging.String("binary", binary),
		logging.Int("exit_code", code))
	return nil, false
}
