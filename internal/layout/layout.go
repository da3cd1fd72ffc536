package layout

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"replayvault/internal/contentstore"
	"replayvault/internal/fileutil"
	"replayvault/internal/logging"
)

// flatName matches the legacy single-directory layout: <id>_<sha256>.<ext>.
var flatName = regexp.MustCompile(`^(\d+)_([0-9a-f]{64})\.([A-Za-z0-9]+)$`)

// Report summarizes a layout migration.
type Report struct {
	Moved     int64
	Skipped   int64
	Cancelled bool
}

// Migrator rehouses legacy flat-layout replay files into the sharded store.
type Migrator struct {
	content *contentstore.Store
	logger  *slog.Logger
}

// New constructs a layout migrator over the given content store.
func New(content *contentstore.Store, logger *slog.Logger) *Migrator {
	return &Migrator{
		content: content,
		logger:  logging.NewComponentLogger(logger, "layout"),
	}
}

// MigrateFlat moves files named <id>_<sha256>.<ext> in the store root into
// the shard layout. Each file's content hash is recomputed and must match
// the hash in its name before it moves; mismatches and unparseable names are
// skipped with a warning, never deleted, so nothing is lost to a typo'd
// rename. Re-running after a partial migration is safe.
func (m *Migrator) MigrateFlat(ctx context.Context) (Report, error) {
	var report Report

	entries, err := os.ReadDir(m.content.Root())
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return report, fmt.Errorf("read store root: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			report.Cancelled = true
			return report, nil
		}
		if entry.IsDir() {
			continue
		}
		m.migrateOne(entry.Name(), &report)
	}

	m.logger.Info("layout migration complete",
		logging.Int64("moved", report.Moved),
		logging.Int64("skipped", report.Skipped))
	return report, nil
}

func (m *Migrator) migrateOne(name string, report *Report) {
	match := flatName.FindStringSubmatch(name)
	if match == nil {
		report.Skipped++
		m.logger.Warn("unrecognized file name, leaving in place",
			logging.String("name", name))
		return
	}
	hash, ext := match[2], match[3]
	flatPath := filepath.Join(m.content.Root(), name)

	actual, err := fileutil.HashFile(flatPath)
	if err != nil {
		report.Skipped++
		m.logger.Warn("cannot hash file, leaving in place",
			logging.String("name", name),
			logging.Error(err))
		return
	}
	if actual != hash {
		report.Skipped++
		m.logger.Warn("content does not match name, leaving in place",
			logging.String("name", name),
			logging.String("actual_sha256", actual))
		return
	}

	// Duplicate content already sharded: the flat copy is redundant.
	if existing, ok := m.content.Lookup(hash); ok {
		if err := os.Remove(flatPath); err != nil {
			report.Skipped++
			m.logger.Warn("cannot remove redundant copy",
				logging.String("name", name),
				logging.Error(err))
			return
		}
		report.Moved++
		m.logger.Info("removed redundant flat copy",
			logging.String("name", name),
			logging.String("existing", existing))
		return
	}

	finalPath, err := m.content.ShardPath(hash, ext)
	if err != nil {
		report.Skipped++
		m.logger.Warn("cannot derive shard path, leaving in place",
			logging.String("name", name),
			logging.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		report.Skipped++
		m.logger.Warn("cannot create shard directories",
			logging.String("name", name),
			logging.Error(err))
		return
	}
	if err := os.Rename(flatPath, finalPath); err != nil {
		report.Skipped++
		m.logger.Warn("cannot move file into shard layout",
			logging.String("name", name),
			logging.Error(err))
		return
	}

	report.Moved++
	m.logger.Info("migrated replay file",
		logging.String("name", name),
		logging.String("path", finalPath))
}
