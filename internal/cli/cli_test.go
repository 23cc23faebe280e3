package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const resultsPage = `<html><body><table>
<tr><td>24/01/2026</td><td>EAGLES</td><td>RHINOS</td><td>15 - 45</td><td>Main Hall</td></tr>
<tr><td>31/01/2026</td><td>LIONS</td><td>TIGERS</td><td>20-20</td><td>Arena</td></tr>
<tr><td>VS EAGLES - RHINOS</td><td>Por jugar</td><td>14/02/2026 | 12:00</td><td>Main Hall</td></tr>
</table></body></html>`

func newResultsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/senior" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, resultsPage)
	}))
	t.Cleanup(server.Close)
	return server
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_WritesCategories(t *testing.T) {
	server := newResultsServer(t)
	dir := t.TempDir()

	configPath := filepath.Join(dir, "categories.yaml")
	config := fmt.Sprintf(`
organization: RHINOS
keywords: [rhinos]
timezone: UTC
categories:
  - slug: senior
    name: Senior
    url: %s/senior
  - slug: juvenil
    name: Juvenil
    url: %s/juvenil
`, server.URL, server.URL)
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	out, err := executeCommand(t, "--config", configPath, "--out", outDir, "--format", "json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid summary JSON: %v\n%s", err, out)
	}
	if result.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2", result.MatchCount)
	}
	if len(result.Categories) != 2 || result.Categories[1].FetchError == "" {
		t.Errorf("unexpected categories: %+v", result.Categories)
	}

	doc, err := os.ReadFile(filepath.Join(outDir, "senior", "partidos.json"))
	if err != nil {
		t.Fatalf("senior document not written: %v", err)
	}
	for _, want := range []string{`"categoria": "Senior"`, `"home_team": "EAGLES"`, `"date_text": "14/02/2026 | 12:00"`} {
		if !strings.Contains(string(doc), want) {
			t.Errorf("document missing %s:\n%s", want, doc)
		}
	}

	ics, err := os.ReadFile(filepath.Join(outDir, "senior", "calendario.ics"))
	if err != nil {
		t.Fatalf("senior calendar not written: %v", err)
	}
	if n := strings.Count(string(ics), "BEGIN:VEVENT"); n != 2 {
		t.Errorf("calendar holds %d events, want 2", n)
	}
	if !strings.Contains(string(ics), "DTSTART:20260214T120000Z") {
		t.Errorf("calendar missing UTC start:\n%s", ics)
	}

	empty, err := os.ReadFile(filepath.Join(outDir, "juvenil", "partidos.json"))
	if err != nil {
		t.Fatalf("juvenil document not written: %v", err)
	}
	if !strings.Contains(string(empty), `"matches": []`) {
		t.Errorf("juvenil document should be empty:\n%s", empty)
	}
	if _, err := os.Stat(filepath.Join(outDir, "juvenil", "calendario.ics")); err != nil {
		t.Errorf("juvenil calendar not written: %v", err)
	}
}

func TestRootCommand_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "categories.yaml")
	if err := os.WriteFile(configPath, []byte("- slug: senior\n  url: http://x\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"--config", configPath, "--keyword", "rhinos", "--format", "xml"}},
		{"bad sort", []string{"--config", configPath, "--keyword", "rhinos", "--sort", "title"}},
		{"no keywords", []string{"--config", configPath, "--out", dir}},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.yaml"), "--keyword", "rhinos"}},
		{"bad timezone", []string{"--config", configPath, "--keyword", "rhinos", "--timezone", "Nowhere/City"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "senior.html")
	if err := os.WriteFile(page, []byte(resultsPage), 0644); err != nil {
		t.Fatalf("Failed to write page: %v", err)
	}

	out, err := executeCommand(t, "extract", "--file", page, "--keyword", "rhinos", "--organization", "RHINOS", "--name", "Senior", "--sort", "date")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var doc struct {
		Category string `json:"categoria"`
		Matches  []struct {
			DateText string `json:"date_text"`
			HomeTeam string `json:"home_team"`
			AwayTeam string `json:"away_team"`
			Score    string `json:"score"`
		} `json:"matches"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid document: %v\n%s", err, out)
	}
	if doc.Category != "Senior" {
		t.Errorf("categoria = %q, want Senior", doc.Category)
	}
	if len(doc.Matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(doc.Matches), doc.Matches)
	}
	if doc.Matches[0].Score != "15-45" || doc.Matches[1].DateText != "14/02/2026 | 12:00" {
		t.Errorf("unexpected matches: %+v", doc.Matches)
	}
}

func TestExtractCommand_Calendar(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "senior.html")
	if err := os.WriteFile(page, []byte(resultsPage), 0644); err != nil {
		t.Fatalf("Failed to write page: %v", err)
	}

	out, err := executeCommand(t, "extract", "--file", page, "--keyword", "rhinos", "--timezone", "", "--calendar")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n") {
		t.Errorf("expected calendar output, got:\n%s", out)
	}
	if !strings.Contains(out, "X-WR-CALNAME:senior") {
		t.Errorf("calendar should be named after the file:\n%s", out)
	}
	if !strings.Contains(out, "DTSTART:20260124T000000\r\n") {
		t.Errorf("floating start time missing:\n%s", out)
	}
}

func TestExtractCommand_RequiresKeyword(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "senior.html")
	if err := os.WriteFile(page, []byte(resultsPage), 0644); err != nil {
		t.Fatalf("Failed to write page: %v", err)
	}

	if _, err := executeCommand(t, "extract", "--file", page); err == nil {
		t.Error("expected error without keywords")
	}
}
