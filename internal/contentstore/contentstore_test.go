package contentstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"replayvault/internal/contentstore"
)

// SHA-256 of the single byte "x".
const xHash = "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"

func writeTemp(t *testing.T, cs *contentstore.Store, contents string) string {
	t.Helper()
	f, err := cs.TempFile("download-*")
	if err != nil {
		t.Fatalf("TempFile failed: %v", err)
	}
	if _, err := f.WriteString(contents); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp: %v", err)
	}
	return f.Name()
}

func TestShardPath(t *testing.T) {
	cs := contentstore.New("/archive")
	path, err := cs.ShardPath(xHash, "mcpr")
	if err != nil {
		t.Fatalf("ShardPath failed: %v", err)
	}
	want := filepath.Join("/archive", "2d", "71", xHash[4:]+".mcpr")
	if path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
}

func TestShardPathRejectsBadHash(t *testing.T) {
	cs := contentstore.New(t.TempDir())
	if _, err := cs.ShardPath("short", "mcpr"); err == nil {
		t.Fatal("expected error for short hash")
	}
	if _, err := cs.ShardPath(string(make([]byte, 64)), "mcpr"); err == nil {
		t.Fatal("expected error for non-hex hash")
	}
}

func TestShardPathNormalizesExtension(t *testing.T) {
	cs := contentstore.New("/archive")
	cases := map[string]string{
		"":        ".mcpr",
		".":       ".mcpr",
		".MCPR":   ".mcpr",
		"zip":     ".zip",
		".BIN":    ".bin",
		"../evil": ".mcpr",
		"mcprx":   ".mcpr",
	}
	for ext, want := range cases {
		path, err := cs.ShardPath(xHash, ext)
		if err != nil {
			t.Fatalf("ShardPath(%q) failed: %v", ext, err)
		}
		if filepath.Ext(path) != want {
			t.Fatalf("ShardPath(%q): expected extension %s, got %s", ext, want, path)
		}
	}
}

func TestPlaceClampsUnknownExtensionToResolvable(t *testing.T) {
	cs := contentstore.New(t.TempDir())
	temp := writeTemp(t, cs, "x")

	// A source-supplied extension outside the accepted set must not strand
	// the file where Lookup cannot find it.
	final, err := cs.Place(temp, xHash, "MCPRx")
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	found, ok := cs.Lookup(xHash)
	if !ok {
		t.Fatal("placed file is not resolvable by hash")
	}
	if found != final {
		t.Fatalf("Lookup = %s, want %s", found, final)
	}
	if filepath.Ext(final) != ".mcpr" {
		t.Fatalf("expected clamped extension, got %s", final)
	}
}

func TestPlaceMovesTempIntoShards(t *testing.T) {
	cs := contentstore.New(t.TempDir())
	temp := writeTemp(t, cs, "x")

	final, err := cs.Place(temp, xHash, "mcpr")
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final file missing: %v", err)
	}
	if _, err := os.Stat(temp); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should be gone, stat err: %v", err)
	}

	found, ok := cs.Lookup(xHash)
	if !ok || found != final {
		t.Fatalf("Lookup = (%s, %v), want %s", found, ok, final)
	}
}

func TestPlaceDeduplicatesIdenticalContent(t *testing.T) {
	cs := contentstore.New(t.TempDir())

	first, err := cs.Place(writeTemp(t, cs, "x"), xHash, "mcpr")
	if err != nil {
		t.Fatalf("first Place failed: %v", err)
	}

	temp := writeTemp(t, cs, "x")
	second, err := cs.Place(temp, xHash, "mcpr")
	if err != nil {
		t.Fatalf("second Place failed: %v", err)
	}
	if second != first {
		t.Fatalf("expected dedup onto %s, got %s", first, second)
	}
	if _, err := os.Stat(temp); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("duplicate temp should be discarded, stat err: %v", err)
	}
}

func TestPlaceDeduplicatesAcrossExtensions(t *testing.T) {
	cs := contentstore.New(t.TempDir())

	first, err := cs.Place(writeTemp(t, cs, "x"), xHash, "zip")
	if err != nil {
		t.Fatalf("first Place failed: %v", err)
	}

	// Same content proposed under a different extension hits the existing file.
	second, err := cs.Place(writeTemp(t, cs, "x"), xHash, "mcpr")
	if err != nil {
		t.Fatalf("second Place failed: %v", err)
	}
	if second != first {
		t.Fatalf("expected dedup onto %s, got %s", first, second)
	}
}

func TestPlaceRefusesMismatchedOccupant(t *testing.T) {
	cs := contentstore.New(t.TempDir())

	// Simulate corruption: the derived path holds bytes that do not hash to xHash.
	occupied, err := cs.ShardPath(xHash, "mcpr")
	if err != nil {
		t.Fatalf("ShardPath failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(occupied), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(occupied, []byte("not x"), 0o644); err != nil {
		t.Fatalf("write occupant: %v", err)
	}

	temp := writeTemp(t, cs, "x")
	if _, err := cs.Place(temp, xHash, "mcpr"); !errors.Is(err, contentstore.ErrPathOccupied) {
		t.Fatalf("expected ErrPathOccupied, got %v", err)
	}

	// Occupant must not have been overwritten.
	data, err := os.ReadFile(occupied)
	if err != nil {
		t.Fatalf("read occupant: %v", err)
	}
	if string(data) != "not x" {
		t.Fatalf("occupant was overwritten: %q", data)
	}
}

func TestLookupMissing(t *testing.T) {
	cs := contentstore.New(t.TempDir())
	if _, ok := cs.Lookup(xHash); ok {
		t.Fatal("expected miss on empty store")
	}
	if _, ok := cs.Lookup("bogus"); ok {
		t.Fatal("expected miss on invalid hash")
	}
}
