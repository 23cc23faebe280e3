package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/club-fixtures/internal/classifier"
	"github.com/pfrederiksen/club-fixtures/internal/layout"
	"github.com/pfrederiksen/club-fixtures/internal/match"
)

const organization = "3COM Squad Valsequillo"

func newTestExtractor(f Fetcher) *Extractor {
	return New(Options{
		Classifier: classifier.New([]string{"rhinos", "3com"}),
		Resolver:   layout.NewResolver(organization),
		Fetcher:    f,
		Location:   time.UTC,
	})
}

func TestExtract_TableScenarios(t *testing.T) {
	html := `
		<html><body>
		<table>
			<tr><th>Partido</th><th>Resultado</th><th>Fecha</th><th>Lugar</th></tr>
			<tr><td>VS EAGLES - RHINOS</td><td>15 - 45</td><td>24/01/2026</td><td>Main Hall</td></tr>
			<tr><td>EAGLES - LIONS</td><td>20 - 10</td><td>24/01/2026</td><td>Main Hall</td></tr>
		</table>
		<table>
			<tr><td>24/01/2026</td><td>EAGLES</td><td>RHINOS</td><td>15-45</td></tr>
			<tr><td>15-45</td><td>EAGLES</td><td><span>24/01/2026</span><span>11:00</span></td><td>Main Hall</td></tr>
			<tr><td>Clasificación</td><td>RHINOS</td></tr>
		</table>
		</body></html>`

	result := newTestExtractor(nil).Extract(context.Background(), html, "https://example.com/results")

	if result.Strategy != StrategyTable {
		t.Fatalf("Strategy = %q, want %q", result.Strategy, StrategyTable)
	}

	want := []match.Record{
		{HomeTeam: "EAGLES", AwayTeam: "RHINOS", Score: "15-45", DateText: "24/01/2026", Venue: "Main Hall"},
		{HomeTeam: "EAGLES", AwayTeam: "RHINOS", Score: "15-45", DateText: "24/01/2026"},
		{HomeTeam: "EAGLES", AwayTeam: organization, Score: "15-45", DateText: "24/01/2026 | 11:00", Venue: "Main Hall"},
	}
	if len(result.Records) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(result.Records), len(want), result.Records)
	}
	for i := range want {
		if result.Records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, result.Records[i], want[i])
		}
	}
}

func TestExtract_ShortCircuits(t *testing.T) {
	called := map[string]int{}
	ok := func(name string) Strategy {
		return Strategy{Name: name, Extract: func(context.Context, *Page) ([]match.Record, error) {
			called[name]++
			return []match.Record{{HomeTeam: name}}, nil
		}}
	}
	crash := Strategy{Name: "crash", Extract: func(context.Context, *Page) ([]match.Record, error) {
		called["crash"]++
		panic("must not run")
	}}

	e := NewWithStrategies(ok("first"), crash, ok("third"))
	result := e.Extract(context.Background(), "<html></html>", "")

	if result.Strategy != "first" || len(result.Records) != 1 {
		t.Errorf("Extract() = %+v, want first strategy result", result)
	}
	if called["crash"] != 0 || called["third"] != 0 {
		t.Errorf("later strategies were invoked: %v", called)
	}
}

func TestExtract_ContainsFailures(t *testing.T) {
	failing := Strategy{Name: "failing", Extract: func(context.Context, *Page) ([]match.Record, error) {
		return nil, errors.New("boom")
	}}
	panicking := Strategy{Name: "panicking", Extract: func(context.Context, *Page) ([]match.Record, error) {
		panic("boom")
	}}
	empty := Strategy{Name: "empty", Extract: func(context.Context, *Page) ([]match.Record, error) {
		return []match.Record{}, nil
	}}
	last := Strategy{Name: "last", Extract: func(context.Context, *Page) ([]match.Record, error) {
		return []match.Record{{HomeTeam: "A", AwayTeam: "B"}}, nil
	}}

	result := NewWithStrategies(failing, panicking, empty, last).Extract(context.Background(), "", "")
	if result.Strategy != "last" {
		t.Errorf("Strategy = %q, want last", result.Strategy)
	}
}

func TestExtract_NothingFound(t *testing.T) {
	html := `<html><body>
		<table><tr><td>EAGLES - LIONS</td><td>20-10</td><td>24/01/2026</td><td>Main Hall</td></tr></table>
		<p>No hay partidos programados</p>
		<script>var config = {"theme": "dark"};</script>
	</body></html>`

	result := newTestExtractor(nil).Extract(context.Background(), html, "https://example.com")

	if result.Strategy != "" {
		t.Errorf("Strategy = %q, want empty", result.Strategy)
	}
	if result.Records == nil || len(result.Records) != 0 {
		t.Errorf("Records = %#v, want empty non-nil slice", result.Records)
	}
}

func TestExtract_FallsBackToTextScan(t *testing.T) {
	html := `<html><body>
		<div class="fixture">24/01/2026 11:00 EAGLES - RHINOS</div>
		<div class="fixture">31/01/2026 <b>RHINOS</b> vs <b>LIONS</b></div>
		<div class="fixture">31/01/2026 <b>RHINOS</b> vs <b>LIONS</b></div>
		<div>EAGLES - LIONS</div>
	</body></html>`

	result := newTestExtractor(nil).Extract(context.Background(), html, "https://example.com")

	if result.Strategy != StrategyTextScan {
		t.Fatalf("Strategy = %q, want %q", result.Strategy, StrategyTextScan)
	}
	want := []match.Record{
		{DateText: "24/01/2026 | 11:00", HomeTeam: "EAGLES", AwayTeam: "RHINOS"},
		{DateText: "31/01/2026", HomeTeam: "RHINOS", AwayTeam: "LIONS"},
	}
	if len(result.Records) != len(want) {
		t.Fatalf("got %+v, want %+v", result.Records, want)
	}
	for i := range want {
		if result.Records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, result.Records[i], want[i])
		}
	}
}

func TestExtract_CalendarExport(t *testing.T) {
	calendar := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:1@test",
		"DTSTAMP:20260101T000000Z",
		"DTSTART:20260124T100000Z",
		"SUMMARY:EAGLES vs RHINOS",
		"LOCATION:Main Hall",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:2@test",
		"DTSTAMP:20260101T000000Z",
		"DTSTART;VALUE=DATE:20260207",
		"SUMMARY:RHINOS - LIONS",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/export/rhinos.ics":
			w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
			w.Write([]byte(calendar))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	html := `<html><body>
		<p>Resultados</p>
		<a href="/noticias">Noticias</a>
		<a href="/export/rhinos.ics">Añadir al calendario</a>
	</body></html>`

	result := newTestExtractor(NewHTTPFetcher(5*time.Second, "")).Extract(context.Background(), html, server.URL+"/competicion")

	if result.Strategy != StrategyCalendarExport {
		t.Fatalf("Strategy = %q, want %q", result.Strategy, StrategyCalendarExport)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(result.Records), result.Records)
	}

	first := result.Records[0]
	if first.HomeTeam != "EAGLES" || first.AwayTeam != "RHINOS" || first.Venue != "Main Hall" {
		t.Errorf("first record = %+v", first)
	}
	if first.DateText != "24/01/2026 | 10:00" {
		t.Errorf("first DateText = %q, want 24/01/2026 | 10:00", first.DateText)
	}
	if got := result.Records[1].DateText; got != "07/02/2026" {
		t.Errorf("all-day DateText = %q, want 07/02/2026", got)
	}
}

func TestCalendarExport_SkippedWhenTableWins(t *testing.T) {
	html := `<table><tr><td>24/01/2026</td><td>EAGLES</td><td>RHINOS</td><td>15-45</td></tr></table>
		<a href="https://calendar.example.com/team.ics">ics</a>`

	f := &recordingFetcher{}
	result := newTestExtractor(f).Extract(context.Background(), html, "https://example.com")

	if result.Strategy != StrategyTable {
		t.Errorf("Strategy = %q, want table", result.Strategy)
	}
	if len(f.urls) != 0 {
		t.Errorf("calendar export fetched %v although table scan succeeded", f.urls)
	}
}

type recordingFetcher struct {
	urls []string
	body string
	err  error
}

func (f *recordingFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.body, f.err
}

func TestCalendarLinks_Order(t *testing.T) {
	html := `
		<a href="/calendario">Calendario</a>
		<a href="webcal://example.com/feed/team.ics">Suscribirse</a>
		<a href="mailto:info@example.com">Contacto</a>
		<a href="/files/team.ics?v=2">Descargar</a>
		<a href="/files/team.ics?v=2">Duplicado</a>`

	page := NewPage(html, "https://example.com/liga/")
	doc, err := page.Document()
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	got := calendarLinks(doc, page.Source)
	want := []string{
		"https://example.com/feed/team.ics",
		"https://example.com/files/team.ics?v=2",
		"https://example.com/calendario",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("calendarLinks() = %v, want %v", got, want)
	}
}

func TestCalendarExport_FetchFailure(t *testing.T) {
	f := &recordingFetcher{err: errors.New("connection refused")}
	s := CalendarExport(f, time.UTC)

	records, err := s.Extract(context.Background(), NewPage(`<a href="/a.ics">a</a>`, "https://example.com"))
	if err == nil {
		t.Error("Extract() should report the fetch failure")
	}
	if len(records) != 0 {
		t.Errorf("Extract() = %+v, want no records", records)
	}
}

func TestParseCalendarExport_Invalid(t *testing.T) {
	if _, err := ParseCalendarExport("<html>not a calendar</html>", nil); err == nil {
		t.Error("ParseCalendarExport() should fail on HTML")
	}
}
