package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const replayColumns = "replay_id, sha256, filesize, downloaded_at"

// MaxReplayID returns the highest replay ID ever recorded. The second return
// is false when the database holds no rows.
func (s *Store) MaxReplayID(ctx context.Context) (int64, bool, error) {
	ctx = ensureContext(ctx)
	var max sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(replay_id) FROM replays`).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("max replay id: %w", err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	return max.Int64, true, nil
}

// Has reports whether any record exists for the replay ID.
func (s *Store) Has(ctx context.Context, replayID int64) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM replays WHERE replay_id = ? LIMIT 1`, replayID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check replay: %w", err)
	}
	return true, nil
}

// MarkAbsent records that the source confirmed the replay ID does not exist.
// The insert is idempotent and never touches an existing record, so a
// resolved row can never be demoted to a negative placeholder.
func (s *Store) MarkAbsent(ctx context.Context, replayID int64) error {
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO replays (replay_id, sha256, filesize, downloaded_at)
         VALUES (?, NULL, NULL, ?)
         ON CONFLICT (replay_id) DO NOTHING`,
		replayID,
		timestamp(),
	); err != nil {
		return fmt.Errorf("mark absent: %w", err)
	}
	return nil
}

// UpsertResolved records a successful download, refreshing the download
// timestamp on every call.
func (s *Store) UpsertResolved(ctx context.Context, replayID int64, sha256hex string, size int64) error {
	if len(sha256hex) != 64 {
		return fmt.Errorf("upsert resolved: sha256 must be 64 hex chars, got %d", len(sha256hex))
	}
	if size < 0 {
		return fmt.Errorf("upsert resolved: negative size %d", size)
	}
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO replays (replay_id, sha256, filesize, downloaded_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (replay_id) DO UPDATE SET
             sha256 = excluded.sha256,
             filesize = excluded.filesize,
             downloaded_at = excluded.downloaded_at`,
		replayID,
		sha256hex,
		size,
		timestamp(),
	); err != nil {
		return fmt.Errorf("upsert resolved: %w", err)
	}
	return nil
}

// GetByID fetches a replay record, returning nil when no row exists.
func (s *Store) GetByID(ctx context.Context, replayID int64) (*Replay, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+replayColumns+` FROM replays WHERE replay_id = ?`, replayID)
	replay, err := scanReplay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get replay: %w", err)
	}
	return replay, nil
}

// StreamRange invokes fn for every record with startID <= replay_id <= endID
// in ascending order without materializing the whole range. An endID below
// zero means "up to the highest row present at call time"; the bound is
// snapshotted before iteration, not re-read while streaming.
func (s *Store) StreamRange(ctx context.Context, startID, endID int64, fn func(Replay) error) error {
	ctx = ensureContext(ctx)
	if endID < 0 {
		max, ok, err := s.MaxReplayID(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		endID = max
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+replayColumns+` FROM replays
         WHERE replay_id >= ? AND replay_id <= ?
         ORDER BY replay_id`,
		startID,
		endID,
	)
	if err != nil {
		return fmt.Errorf("stream range: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		replay, err := scanReplay(rows)
		if err != nil {
			return fmt.Errorf("scan replay: %w", err)
		}
		if err := fn(*replay); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Stats aggregates archive counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COUNT(sha256),
               COALESCE(SUM(CASE WHEN sha256 IS NULL AND downloaded_at IS NOT NULL THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(filesize), 0)
        FROM replays`,
	).Scan(&stats.Total, &stats.Resolved, &stats.Absent, &stats.TotalBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("replay stats: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM replay_metadata`).Scan(&stats.WithMetadata); err != nil {
		return Stats{}, fmt.Errorf("metadata stats: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM replay_metadata_players`).Scan(&stats.Players); err != nil {
		return Stats{}, fmt.Errorf("player stats: %w", err)
	}
	return stats, nil
}
