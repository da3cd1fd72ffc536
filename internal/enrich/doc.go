// Package enrich backfills recording metadata for stored replays.
//
// The pass is a second, independent stage over the archive: it streams
// recorded replay IDs, opens each stored file, and persists whatever
// metadata the archive yields. Downloading and extraction stay decoupled
// so either can be re-run without the other.
package enrich
