// Package retrieve copies archived replays back out of the store.
package retrieve
