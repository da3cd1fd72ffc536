// Package contentstore maps content hashes to files in a sharded on-disk
// layout.
//
// The first two and next two hex digits of a replay's SHA-256 become two
// directory levels, keeping any single directory's entry count bounded as
// the archive grows. Placement is an atomic rename from a temp file on the
// same filesystem; identical content downloaded under different replay IDs
// lands on one file.
package contentstore
