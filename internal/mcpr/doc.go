// Package mcpr reads metadata out of Minecraft replay archives.
//
// A replay file is a zip archive whose metaData.json entry describes the
// recording. The native reader handles well-formed files; damaged archives
// go through external 7z or unzip before the file is given up on.
package mcpr
