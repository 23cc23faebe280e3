// Package scraper extracts the tracked organization's fixtures from a
// third-party results page.
//
// Extraction is a fallback chain of independent strategies tried in a fixed
// order: a scan of table rows, a linked calendar export, structured data
// embedded in scripts, and a line-by-line text scan. The first strategy that
// yields records wins and later strategies are never attempted. The package
// also provides the HTTP fetcher used to download pages and calendar exports.
package scraper
