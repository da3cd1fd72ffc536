package store

import "time"

// Replay is the provenance record for one numbered replay ID.
//
// SHA256 empty with DownloadedAt set means the source confirmed the ID does
// not exist (a terminal negative result). SHA256 set implies Size is set and
// a file exists in the content store at the hash-derived path.
type Replay struct {
	ReplayID     int64
	SHA256       string
	Size         *int64
	DownloadedAt *time.Time
}

// Resolved reports whether content was successfully retrieved and stored.
func (r Replay) Resolved() bool {
	return r.SHA256 != ""
}

// Absent reports whether the source confirmed the ID does not exist.
func (r Replay) Absent() bool {
	return r.SHA256 == "" && r.DownloadedAt != nil
}

// Metadata is the flat record decoded from a replay's embedded metaData.json.
// Nil pointer fields mean the source document omitted the value.
type Metadata struct {
	Singleplayer *bool
	ServerName   string
	Generator    string
	MCVersion    string
	DurationMS   *int64
	RecordedAtMS *int64
}

// Stats aggregates archive counts for the status command.
type Stats struct {
	Total        int64
	Resolved     int64
	Absent       int64
	WithMetadata int64
	Players      int64
	TotalBytes   int64
}
