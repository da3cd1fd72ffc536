package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"replayvault/internal/store"
)

// seedLegacyDatabase creates a database shaped like the pre-migration
// pipeline: a replays table without the filesize column and no migration
// tracking.
func seedLegacyDatabase(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE replays (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            replay_id INTEGER UNIQUE NOT NULL,
            sha256 TEXT,
            downloaded_at TEXT
        )`,
		`INSERT INTO replays (replay_id, sha256, downloaded_at)
         VALUES (12, '` + sampleHash + `', '2024-01-01T00:00:00Z')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed legacy db: %v", err)
		}
	}
}

func TestOpenUpgradesLegacyDatabaseInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replays.db")
	seedLegacyDatabase(t, path)

	st, err := store.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed on legacy database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	// Existing row survives and the added filesize column reads as null.
	replay, err := st.GetByID(ctx, 12)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if replay == nil || replay.SHA256 != sampleHash {
		t.Fatalf("legacy row lost: %#v", replay)
	}
	if replay.Size != nil {
		t.Fatalf("expected null size on legacy row, got %d", *replay.Size)
	}

	// The added column accepts writes and metadata tables exist.
	if err := st.UpsertResolved(ctx, 13, sampleHash, 77); err != nil {
		t.Fatalf("UpsertResolved failed after upgrade: %v", err)
	}
	if err := st.UpsertMetadata(ctx, 13, store.Metadata{ServerName: "srv"}); err != nil {
		t.Fatalf("UpsertMetadata failed after upgrade: %v", err)
	}
}

func TestOpenLegacyDatabaseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replays.db")
	seedLegacyDatabase(t, path)

	st, err := store.OpenPath(path)
	if err != nil {
		t.Fatalf("first OpenPath failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	st, err = store.OpenPath(path)
	if err != nil {
		t.Fatalf("second OpenPath failed: %v", err)
	}
	defer st.Close()
}

func TestMetadataCascadeDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replays.db")

	st, err := store.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.UpsertResolved(ctx, 1, sampleHash, 1); err != nil {
		t.Fatalf("UpsertResolved failed: %v", err)
	}
	if err := st.UpsertMetadata(ctx, 1, store.Metadata{ServerName: "srv"}); err != nil {
		t.Fatalf("UpsertMetadata failed: %v", err)
	}
	if err := st.ReplacePlayers(ctx, 1, []string{"aaaa"}); err != nil {
		t.Fatalf("ReplacePlayers failed: %v", err)
	}

	// The pipeline never deletes replays; exercise the cascade directly to
	// confirm the schema wiring.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if _, err := db.Exec("DELETE FROM replays WHERE replay_id = 1"); err != nil {
		t.Fatalf("delete replay: %v", err)
	}

	has, err := st.HasMetadata(ctx, 1)
	if err != nil {
		t.Fatalf("HasMetadata failed: %v", err)
	}
	if has {
		t.Fatal("expected metadata to cascade with its replay")
	}
	players, err := st.Players(ctx, 1)
	if err != nil {
		t.Fatalf("Players failed: %v", err)
	}
	if len(players) != 0 {
		t.Fatalf("expected players to cascade, got %v", players)
	}
}
