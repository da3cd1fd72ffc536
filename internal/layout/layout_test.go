package layout_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"replayvault/internal/contentstore"
	"replayvault/internal/fileutil"
	"replayvault/internal/layout"
	"replayvault/internal/logging"
)

const xHash = "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"

func newMigrator(t *testing.T) (*layout.Migrator, *contentstore.Store, string) {
	t.Helper()
	root := t.TempDir()
	cs := contentstore.New(root)
	return layout.New(cs, logging.NewNop()), cs, root
}

func writeFlat(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write flat file: %v", err)
	}
	return path
}

func TestMigrateFlatMovesWellFormedFiles(t *testing.T) {
	migrator, cs, root := newMigrator(t)
	flat := writeFlat(t, root, "17_"+xHash+".mcpr", "x")

	report, err := migrator.MigrateFlat(context.Background())
	if err != nil {
		t.Fatalf("MigrateFlat failed: %v", err)
	}
	if report.Moved != 1 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}

	if _, err := os.Stat(flat); !os.IsNotExist(err) {
		t.Fatal("flat file should be gone")
	}
	path, ok := cs.Lookup(xHash)
	if !ok {
		t.Fatal("migrated file not found in shard layout")
	}
	hash, err := fileutil.HashFile(path)
	if err != nil {
		t.Fatalf("hash migrated file: %v", err)
	}
	if hash != xHash {
		t.Fatalf("migrated content hash %s", hash)
	}
}

func TestMigrateFlatSkipsMismatchedContent(t *testing.T) {
	migrator, cs, root := newMigrator(t)
	flat := writeFlat(t, root, "3_"+xHash+".mcpr", "not x")

	report, err := migrator.MigrateFlat(context.Background())
	if err != nil {
		t.Fatalf("MigrateFlat failed: %v", err)
	}
	if report.Moved != 0 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if _, err := os.Stat(flat); err != nil {
		t.Fatalf("mismatched file must stay put: %v", err)
	}
	if _, ok := cs.Lookup(xHash); ok {
		t.Fatal("nothing should be sharded for mismatched content")
	}
}

func TestMigrateFlatSkipsUnrecognizedNames(t *testing.T) {
	migrator, _, root := newMigrator(t)
	writeFlat(t, root, "notes.txt", "unrelated")
	writeFlat(t, root, "12_shorthash.mcpr", "x")

	report, err := migrator.MigrateFlat(context.Background())
	if err != nil {
		t.Fatalf("MigrateFlat failed: %v", err)
	}
	if report.Moved != 0 || report.Skipped != 2 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "notes.txt")); err != nil {
		t.Fatalf("unrelated file must stay put: %v", err)
	}
}

func TestMigrateFlatRemovesRedundantCopies(t *testing.T) {
	migrator, cs, root := newMigrator(t)

	// Shard the content first, then plant a flat duplicate.
	temp := writeFlat(t, root, "seed.tmp", "x")
	if _, err := cs.Place(temp, xHash, "mcpr"); err != nil {
		t.Fatalf("place seed: %v", err)
	}
	flat := writeFlat(t, root, "9_"+xHash+".mcpr", "x")

	report, err := migrator.MigrateFlat(context.Background())
	if err != nil {
		t.Fatalf("MigrateFlat failed: %v", err)
	}
	// seed.tmp is unrecognized, the duplicate counts as moved.
	if report.Moved != 1 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if _, err := os.Stat(flat); !os.IsNotExist(err) {
		t.Fatal("redundant flat copy should be removed")
	}
	if _, ok := cs.Lookup(xHash); !ok {
		t.Fatal("sharded copy must survive")
	}
}

func TestMigrateFlatIsIdempotent(t *testing.T) {
	migrator, _, root := newMigrator(t)
	writeFlat(t, root, "17_"+xHash+".mcpr", "x")

	if _, err := migrator.MigrateFlat(context.Background()); err != nil {
		t.Fatalf("first MigrateFlat failed: %v", err)
	}
	report, err := migrator.MigrateFlat(context.Background())
	if err != nil {
		t.Fatalf("second MigrateFlat failed: %v", err)
	}
	if report.Moved != 0 || report.Skipped != 0 {
		t.Fatalf("second run should find nothing: %#v", report)
	}
}

func TestMigrateFlatCancellation(t *testing.T) {
	migrator, _, root := newMigrator(t)
	writeFlat(t, root, "1_"+xHash+".mcpr", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := migrator.MigrateFlat(ctx)
	if err != nil {
		t.Fatalf("cancelled MigrateFlat must not error: %v", err)
	}
	if !report.Cancelled {
		t.Fatal("expected cancelled report")
	}
	if report.Moved != 0 {
		t.Fatalf("nothing should move after cancellation: %#v", report)
	}
}
