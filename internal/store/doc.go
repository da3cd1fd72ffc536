// Package store persists replay provenance in SQLite.
//
// The Store manages the replays table (one row per numbered remote ID,
// recording content hash, size, and download time), the 1:1 replay_metadata
// table, and the replay_metadata_players table; the metadata tables cascade
// with their owning replay row. Schema changes are expressed as ordered,
// embedded SQL migrations recorded in schema_migrations; databases created
// by the pre-migration pipeline are baselined in place, including adding the
// filesize column where it is missing.
//
// Every mutation commits before the call returns and the store assumes one
// writer per database file, so a killed process never loses a write that was
// already acknowledged.
package store
