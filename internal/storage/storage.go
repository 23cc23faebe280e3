package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/club-fixtures/internal/match"
)

// Output file names inside each category directory
const (
	DocumentFile = "partidos.json"
	CalendarFile = "calendario.ics"
)

// Storage handles persistence of category outputs
type Storage struct {
	outputDir string
}

// New creates a new Storage instance rooted at outputDir
func New(outputDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(outputDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		outputDir = filepath.Join(home, outputDir[2:])
	}
	if outputDir == "" {
		outputDir = "."
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{
		outputDir: outputDir,
	}, nil
}

// Dir returns the output root
func (s *Storage) Dir() string {
	return s.outputDir
}

// CategoryDir returns the directory holding one category's files
func (s *Storage) CategoryDir(slug string) string {
	return filepath.Join(s.outputDir, slug)
}

// DocumentPath returns the path of a category's JSON document
func (s *Storage) DocumentPath(slug string) string {
	return filepath.Join(s.CategoryDir(slug), DocumentFile)
}

// CalendarPath returns the path of a category's calendar feed
func (s *Storage) CalendarPath(slug string) string {
	return filepath.Join(s.CategoryDir(slug), CalendarFile)
}

// Write stores both outputs of a category
func (s *Storage) Write(slug string, doc *match.Document, ics string) error {
	if err := s.WriteDocument(slug, doc); err != nil {
		return err
	}
	return s.WriteCalendar(slug, ics)
}

// WriteDocument writes the JSON document, indented, with non-ASCII text left
// as-is
func (s *Storage) WriteDocument(slug string, doc *match.Document) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	return s.writeFile(slug, DocumentFile, data)
}

// WriteCalendar writes the iCalendar feed
func (s *Storage) WriteCalendar(slug string, ics string) error {
	return s.writeFile(slug, CalendarFile, []byte(ics))
}

func (s *Storage) writeFile(slug, name string, data []byte) error {
	if slug == "" || slug != filepath.Base(slug) || slug == "." || slug == ".." {
		return fmt.Errorf("invalid category slug %q", slug)
	}

	dir := s.CategoryDir(slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating category directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// EncodeDocument renders a document the way it is stored on disk
func EncodeDocument(doc *match.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return buf.Bytes(), nil
}
