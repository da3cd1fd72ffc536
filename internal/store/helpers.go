package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// queryExecer is satisfied by *sql.Tx and *sql.DB.
type queryExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanReplay(scanner interface{ Scan(dest ...any) error }) (*Replay, error) {
	var (
		replayID      int64
		sha           sql.NullString
		filesize      sql.NullInt64
		downloadedRaw sql.NullString
	)
	if err := scanner.Scan(&replayID, &sha, &filesize, &downloadedRaw); err != nil {
		return nil, err
	}

	replay := &Replay{
		ReplayID: replayID,
		SHA256:   sha.String,
	}
	if filesize.Valid {
		size := filesize.Int64
		replay.Size = &size
	}
	if downloadedRaw.Valid {
		if at, err := parseTimeString(downloadedRaw.String); err == nil {
			replay.DownloadedAt = &at
		}
	}
	return replay, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableBool(value *bool) any {
	if value == nil {
		return nil
	}
	if *value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
