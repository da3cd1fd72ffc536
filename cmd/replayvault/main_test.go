package main

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newReplayServer(t *testing.T, bodies map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Query().Get("id")]
		if !ok {
			http.Error(w, "no such replay", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="replay.mcpr"`)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func replayArchive(t *testing.T, metadata string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("metaData.json")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := entry.Write([]byte(metadata)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestCrawlExtractStatusRoundTrip(t *testing.T) {
	archive := replayArchive(t, `{"serverName": "mc.example.org", "mcversion": "1.12", "players": ["069a79f4-44e9-4726-a5be-fca90e38aaf5"]}`)
	server := newReplayServer(t, map[string][]byte{
		"1": archive,
		"3": []byte("not an archive"),
	})
	env := setupCLITestEnv(t, server.URL+"/download?id=$id$")

	out, _, err := runCLI(t, []string{"crawl"}, env.configPath)
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	requireContains(t, out, "2 fetched")
	requireContains(t, out, "1 absent")

	out, _, err = runCLI(t, []string{"extract"}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "1 extracted")

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Recorded IDs")
	requireContains(t, out, "3")
}

func TestFetchCopiesReplayOut(t *testing.T) {
	archive := replayArchive(t, `{"serverName": "mc.example.org"}`)
	server := newReplayServer(t, map[string][]byte{"1": archive})
	env := setupCLITestEnv(t, server.URL+"/download?id=$id$")

	if _, _, err := runCLI(t, []string{"crawl", "--start", "1", "--max", "1"}, env.configPath); err != nil {
		t.Fatalf("crawl: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "out.mcpr")
	out, _, err := runCLI(t, []string{"fetch", "1", dest}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "Copied")

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if !bytes.Equal(data, archive) {
		t.Fatal("copied file does not match downloaded archive")
	}

	// A second fetch to the same destination must refuse to overwrite.
	if _, _, err := runCLI(t, []string{"fetch", "1", dest}, env.configPath); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

func TestFetchBySHA256RejectsExtraArguments(t *testing.T) {
	server := newReplayServer(t, nil)
	env := setupCLITestEnv(t, server.URL+"/download?id=$id$")

	const hash = "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"
	_, _, err := runCLI(t, []string{"fetch", "--sha256", hash, "dest.mcpr", "stray"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for extra positional argument")
	}
}

func TestFetchUnknownID(t *testing.T) {
	server := newReplayServer(t, nil)
	env := setupCLITestEnv(t, server.URL+"/download?id=$id$")

	if _, _, err := runCLI(t, []string{"fetch", "42"}, env.configPath); err == nil {
		t.Fatal("expected error for unrecorded ID")
	}
}

func TestMigrateLayoutCommand(t *testing.T) {
	server := newReplayServer(t, nil)
	env := setupCLITestEnv(t, server.URL+"/download?id=$id$")

	// xHash is the digest of the one-byte body "x".
	const xHash = "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"
	replayDir := filepath.Join(env.dataDir, "replays")
	if err := os.MkdirAll(replayDir, 0o755); err != nil {
		t.Fatalf("mkdir replay dir: %v", err)
	}
	flat := filepath.Join(replayDir, "17_"+xHash+".mcpr")
	if err := os.WriteFile(flat, []byte("x"), 0o644); err != nil {
		t.Fatalf("write flat file: %v", err)
	}

	out, _, err := runCLI(t, []string{"migrate-layout"}, env.configPath)
	if err != nil {
		t.Fatalf("migrate-layout: %v", err)
	}
	requireContains(t, out, "Moved 1 files")

	if _, err := os.Stat(flat); !os.IsNotExist(err) {
		t.Fatal("flat file should have moved")
	}
	sharded := filepath.Join(replayDir, xHash[:2], xHash[2:4], xHash[4:]+".mcpr")
	if _, err := os.Stat(sharded); err != nil {
		t.Fatalf("expected sharded file: %v", err)
	}
}
