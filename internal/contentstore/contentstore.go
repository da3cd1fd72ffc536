package contentstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"replayvault/internal/fileutil"
)

// DefaultExtension is the canonical replay file extension used when the
// source provides no usable filename hint.
const DefaultExtension = "mcpr"

// acceptedExtensions are tried in order by Lookup. The zip and bin variants
// stem from earlier pipeline versions that labeled downloads differently.
var acceptedExtensions = []string{"mcpr", "zip", "bin"}

// ErrPathOccupied indicates the hash-derived path holds a file whose content
// does not match the hash. That should never happen outside disk corruption
// and is reported loudly rather than silently overwritten.
var ErrPathOccupied = errors.New("content store path occupied by mismatching content")

// Store lays replay files out under root in a three-level shard structure
// derived from their SHA-256: aa/bb/<remainder>.<ext>. Files are written once
// and never mutated.
type Store struct {
	root string
}

// New constructs a content store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

// ShardPath returns the path a hash maps to, relative joining below root.
func (s *Store) ShardPath(sha256hex, ext string) (string, error) {
	if err := validateHash(sha256hex); err != nil {
		return "", err
	}
	ext = normalizeExtension(ext)
	return filepath.Join(s.root, sha256hex[0:2], sha256hex[2:4], sha256hex[4:]+"."+ext), nil
}

// TempFile creates a temporary file under root/tmp. Temp files share the
// store's filesystem so promotion into the shard layout is a rename, never a
// cross-device copy.
func (s *Store) TempFile(pattern string) (*os.File, error) {
	tmpDir := filepath.Join(s.root, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return os.CreateTemp(tmpDir, pattern)
}

// Place promotes a fully written temp file into the shard layout.
//
// When the derived path is free the temp file is renamed into place
// atomically. When it is already occupied this is a duplicate-content event:
// the occupant's hash is recomputed as defense against corruption, the temp
// file is discarded, and the existing path is returned. An occupant whose
// hash does not match fails with ErrPathOccupied; nothing is overwritten.
func (s *Store) Place(tempPath, sha256hex, ext string) (string, error) {
	finalPath, err := s.ShardPath(sha256hex, ext)
	if err != nil {
		return "", err
	}

	if existing, ok := s.Lookup(sha256hex); ok {
		actual, err := fileutil.HashFile(existing)
		if err != nil {
			return "", fmt.Errorf("verify existing %s: %w", existing, err)
		}
		if actual != sha256hex {
			return "", fmt.Errorf("%w: %s holds sha256 %s", ErrPathOccupied, existing, actual)
		}
		if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("discard duplicate temp: %w", err)
		}
		return existing, nil
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return "", fmt.Errorf("create shard directories: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		return "", fmt.Errorf("promote temp file: %w", err)
	}
	return finalPath, nil
}

// Lookup resolves a hash to its stored file, trying accepted extensions in
// preference order. It is a pure function of the shard derivation plus a
// directory probe.
func (s *Store) Lookup(sha256hex string) (string, bool) {
	if validateHash(sha256hex) != nil {
		return "", false
	}
	for _, ext := range acceptedExtensions {
		path := filepath.Join(s.root, sha256hex[0:2], sha256hex[2:4], sha256hex[4:]+"."+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func validateHash(sha256hex string) error {
	if len(sha256hex) != 64 {
		return fmt.Errorf("sha256 must be 64 hex chars, got %d", len(sha256hex))
	}
	for _, c := range sha256hex {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("sha256 must be lowercase hex, got %q", sha256hex)
		}
	}
	return nil
}

// normalizeExtension sanitizes a filename-derived extension and clamps it to
// the accepted set. Lookup only probes accepted extensions, so storing under
// anything else would strand the file at an unresolvable path.
func normalizeExtension(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	var b strings.Builder
	for _, c := range ext {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	cleaned := strings.ToLower(b.String())
	for _, accepted := range acceptedExtensions {
		if cleaned == accepted {
			return cleaned
		}
	}
	return DefaultExtension
}
