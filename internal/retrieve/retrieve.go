package retrieve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"replayvault/internal/fileutil"
	"replayvault/internal/store"
)

var (
	// ErrNotRecorded reports an ID the archive has never seen.
	ErrNotRecorded = errors.New("replay ID not recorded")
	// ErrAbsent reports an ID the source confirmed does not exist.
	ErrAbsent = errors.New("replay confirmed absent upstream")
	// ErrFileMissing reports a recorded replay whose file is gone from disk.
	ErrFileMissing = errors.New("replay file missing from content store")
	// ErrDestinationExists reports a copy target that already holds a file.
	ErrDestinationExists = errors.New("destination already exists")
)

// ReplayStore is the subset of the state store retrieval needs.
type ReplayStore interface {
	GetByID(ctx context.Context, replayID int64) (*store.Replay, error)
}

// ContentLocator resolves a stored replay file by its hash.
type ContentLocator interface {
	Lookup(sha256hex string) (string, bool)
}

// Resolved is a replay located on disk and ready to copy out.
type Resolved struct {
	ReplayID int64
	SHA256   string
	Path     string
	Size     *int64
}

// Service resolves archived replays by ID or content hash and copies them
// out of the store.
type Service struct {
	store   ReplayStore
	content ContentLocator
}

// New constructs a retrieval service.
func New(st ReplayStore, content ContentLocator) (*Service, error) {
	if st == nil || content == nil {
		return nil, errors.New("retrieval requires store and content store")
	}
	return &Service{store: st, content: content}, nil
}

// ByID resolves a replay through its crawl record.
func (s *Service) ByID(ctx context.Context, replayID int64) (Resolved, error) {
	replay, err := s.store.GetByID(ctx, replayID)
	if err != nil {
		return Resolved{}, fmt.Errorf("look up replay %d: %w", replayID, err)
	}
	if replay == nil {
		return Resolved{}, fmt.Errorf("replay %d: %w", replayID, ErrNotRecorded)
	}
	if replay.Absent() {
		return Resolved{}, fmt.Errorf("replay %d: %w", replayID, ErrAbsent)
	}
	path, ok := s.content.Lookup(replay.SHA256)
	if !ok {
		return Resolved{}, fmt.Errorf("replay %d (sha256 %s): %w", replayID, replay.SHA256, ErrFileMissing)
	}
	return Resolved{
		ReplayID: replayID,
		SHA256:   replay.SHA256,
		Path:     path,
		Size:     replay.Size,
	}, nil
}

// ByHash resolves a replay straight from the content store, bypassing the
// crawl record. Useful when only a hash is known.
func (s *Service) ByHash(sha256hex string) (Resolved, error) {
	path, ok := s.content.Lookup(sha256hex)
	if !ok {
		return Resolved{}, fmt.Errorf("sha256 %s: %w", sha256hex, ErrFileMissing)
	}
	return Resolved{SHA256: sha256hex, Path: path}, nil
}

// CopyTo copies a resolved replay to dest. A directory dest receives the
// stored file's base name. Existing targets are never overwritten.
func (s *Service) CopyTo(resolved Resolved, dest string) (string, error) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, filepath.Base(resolved.Path))
	}
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%s: %w", dest, ErrDestinationExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("check destination: %w", err)
	}
	if err := fileutil.CopyFile(resolved.Path, dest); err != nil {
		return "", fmt.Errorf("copy replay: %w", err)
	}
	return dest, nil
}
