// Package crawl drives the sequential download of numbered replays.
//
// The runner resumes one past the highest recorded ID, fetches one replay at
// a time (the source is rate-sensitive), routes each outcome to the content
// and state stores, and honours cooperative cancellation between iterations
// so an in-flight replay always lands completely or not at all.
package crawl
