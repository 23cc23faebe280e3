// Package match provides the record types produced by the extraction engine.
//
// A Record describes one fixture of the tracked organization: the two sides,
// the display date, and the optional score, venue and status. A Category is
// one tracked competition page and a Document is the JSON shape written for
// each category. Records are created fresh on every run and never merged with
// the output of a previous run.
package match
