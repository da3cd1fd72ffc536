// Command replayvault archives numbered replay files from a remote source:
// crawl downloads them, extract backfills recording metadata, fetch copies
// archived files back out, and migrate-layout rehouses legacy flat stores.
package main
