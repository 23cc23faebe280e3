// Package cli implements the command-line interface for club-fixtures.
//
// The root command reads the category list, extracts every category's
// fixtures and writes partidos.json and calendario.ics per category, printing
// a run summary as text or JSON. With --schedule it keeps running and repeats
// the run on a cron schedule. The extract subcommand runs the extraction
// engine on a saved page and prints the resulting document.
package cli
