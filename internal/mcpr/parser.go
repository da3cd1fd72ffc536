package mcpr

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// MetadataMember is the archive entry holding the recording metadata.
const MetadataMember = "metaData.json"

var (
	// ErrNotArchive reports a file that cannot be opened as a zip archive.
	ErrNotArchive = errors.New("file is not a readable archive")
	// ErrMetadataMissing reports an archive without a metaData.json entry.
	ErrMetadataMissing = errors.New("archive has no " + MetadataMember + " entry")
)

// Metadata is the recording information embedded in a replay archive.
type Metadata struct {
	Singleplayer *bool
	ServerName   string
	Generator    string
	DurationMS   *int64
	RecordedAtMS *int64
	MCVersion    string
	Players      []string
}

type rawMetadata struct {
	Singleplayer *bool    `json:"singleplayer"`
	ServerName   string   `json:"serverName"`
	Generator    string   `json:"generator"`
	Duration     *int64   `json:"duration"`
	Date         *int64   `json:"date"`
	MCVersion    string   `json:"mcversion"`
	Players      []string `json:"players"`
}

// Extract reads the metadata entry from the replay archive at path using the
// native zip reader. Corrupt archives return ErrNotArchive so callers can
// decide whether to try an external extractor instead.
func Extract(path string) (*Metadata, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotArchive, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != MetadataMember {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", MetadataMember, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", MetadataMember, err)
		}
		return Parse(data)
	}
	return nil, ErrMetadataMissing
}

// Parse decodes a metaData.json payload.
func Parse(data []byte) (*Metadata, error) {
	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", MetadataMember, err)
	}
	return &Metadata{
		Singleplayer: raw.Singleplayer,
		ServerName:   strings.TrimSpace(raw.ServerName),
		Generator:    strings.TrimSpace(raw.Generator),
		DurationMS:   raw.Duration,
		RecordedAtMS: raw.Date,
		MCVersion:    strings.TrimSpace(raw.MCVersion),
		Players:      normalizePlayers(raw.Players),
	}, nil
}

// normalizePlayers canonicalizes player identifiers. Entries that parse as
// UUIDs are lowered to the standard hyphenated form; anything else is kept
// verbatim so older recordings with bare names survive. Duplicates collapse,
// first occurrence wins.
func normalizePlayers(players []string) []string {
	if len(players) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(players))
	out := make([]string, 0, len(players))
	for _, player := range players {
		player = strings.TrimSpace(player)
		if player == "" {
			continue
		}
		if id, err := uuid.Parse(player); err == nil {
			player = id.String()
		}
		if _, dup := seen[player]; dup {
			continue
		}
		seen[player] = struct{}{}
		out = append(out, player)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
