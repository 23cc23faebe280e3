// Package storage writes the per-category output files.
//
// Each category gets its own directory under the output root, named after the
// category slug, holding partidos.json (the match document) and
// calendario.ics (the calendar feed). Both files are rewritten on every run;
// nothing is read back or merged with a previous run.
package storage
