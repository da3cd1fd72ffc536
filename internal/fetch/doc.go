// Package fetch retrieves replay files from the numbered remote source.
//
// One GET per replay ID against a templated URL; the response body streams
// straight into a temp file on the content store's filesystem while the
// SHA-256 accumulates chunk by chunk, so memory use stays flat regardless of
// replay size. The fetcher reports outcomes; persistence policy belongs to
// the crawl driver.
package fetch
