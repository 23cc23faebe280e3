package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/club-fixtures/internal/calendar"
	"github.com/pfrederiksen/club-fixtures/internal/match"
)

func main() {
	category := match.Category{Slug: "senior", Name: "Senior Masculino"}

	// Sample fixtures covering a played match, a timed fixture and an undated row
	records := []match.Record{
		{DateText: "24/01/2026", HomeTeam: "EAGLES", AwayTeam: "RHINOS", Score: "15-45", Venue: "Main Hall"},
		{DateText: "07/02/2026 | 18:30", HomeTeam: "RHINOS", AwayTeam: "BEARS", Status: "POR JUGAR"},
		{HomeTeam: "RHINOS", AwayTeam: "WOLVES", Status: "APLAZADO"},
	}

	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	emitter := &calendar.Emitter{Location: loc}
	icsContent := emitter.Generate(records, category.DisplayName(), category)

	// Write to file (owner read/write only)
	filename := "test-calendario.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nThe undated fixture is expected to be missing from the calendar.")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
