package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// HasMetadata reports whether a metadata record exists for the replay ID.
func (s *Store) HasMetadata(ctx context.Context, replayID int64) (bool, error) {
	ctx = ensureContext(ctx)
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM replay_metadata WHERE replay_id = ? LIMIT 1`, replayID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check metadata: %w", err)
	}
	return true, nil
}

// UpsertMetadata inserts or replaces the metadata record owned by a replay.
// The owning replay row must already exist (FK enforced).
func (s *Store) UpsertMetadata(ctx context.Context, replayID int64, meta Metadata) error {
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO replay_metadata (
            replay_id, singleplayer, server_name, generator,
            duration_ms, recorded_at_ms, mc_version, extracted_at
         ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (replay_id) DO UPDATE SET
             singleplayer = excluded.singleplayer,
             server_name = excluded.server_name,
             generator = excluded.generator,
             duration_ms = excluded.duration_ms,
             recorded_at_ms = excluded.recorded_at_ms,
             mc_version = excluded.mc_version,
             extracted_at = excluded.extracted_at`,
		replayID,
		nullableBool(meta.Singleplayer),
		nullableString(meta.ServerName),
		nullableString(meta.Generator),
		nullableInt64(meta.DurationMS),
		nullableInt64(meta.RecordedAtMS),
		nullableString(meta.MCVersion),
		timestamp(),
	); err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

// GetMetadata fetches the metadata record for a replay, returning nil when
// none exists.
func (s *Store) GetMetadata(ctx context.Context, replayID int64) (*Metadata, error) {
	ctx = ensureContext(ctx)
	var (
		singleplayer sql.NullInt64
		serverName   sql.NullString
		generator    sql.NullString
		durationMS   sql.NullInt64
		recordedAtMS sql.NullInt64
		mcVersion    sql.NullString
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT singleplayer, server_name, generator, duration_ms, recorded_at_ms, mc_version
         FROM replay_metadata WHERE replay_id = ?`,
		replayID,
	).Scan(&singleplayer, &serverName, &generator, &durationMS, &recordedAtMS, &mcVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}

	meta := &Metadata{
		ServerName: serverName.String,
		Generator:  generator.String,
		MCVersion:  mcVersion.String,
	}
	if singleplayer.Valid {
		value := singleplayer.Int64 != 0
		meta.Singleplayer = &value
	}
	if durationMS.Valid {
		value := durationMS.Int64
		meta.DurationMS = &value
	}
	if recordedAtMS.Valid {
		value := recordedAtMS.Int64
		meta.RecordedAtMS = &value
	}
	return meta, nil
}

// ReplacePlayers swaps the full player set for a replay in one transaction,
// so a re-run never leaves stale rows from a previously longer list.
func (s *Store) ReplacePlayers(ctx context.Context, replayID int64, players []string) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin players tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		if _, err := tx.ExecContext(ctx, `DELETE FROM replay_metadata_players WHERE replay_id = ?`, replayID); err != nil {
			return fmt.Errorf("clear players: %w", err)
		}
		for _, player := range players {
			if player == "" {
				continue
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT OR IGNORE INTO replay_metadata_players (replay_id, player_uuid) VALUES (?, ?)`,
				replayID,
				player,
			); err != nil {
				return fmt.Errorf("insert player: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit players: %w", err)
		}
		return nil
	})
}

// Players returns the stored player set for a replay, ordered for stable output.
func (s *Store) Players(ctx context.Context, replayID int64) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT player_uuid FROM replay_metadata_players WHERE replay_id = ? ORDER BY player_uuid`,
		replayID,
	)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []string
	for rows.Next() {
		var player string
		if err := rows.Scan(&player); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}
