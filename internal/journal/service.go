// Package journal implements the domain service over the entry store: it
// validates writes, normalizes stored rows into calendar types, and serves
// the read shapes the pages are built from (recent, by id, by year, and
// full-text search).
package journal

import (
	"errors"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/kalambet/daybook/internal/dates"
	"github.com/kalambet/daybook/internal/storage"
)

// Entry is one immutable journal post.
type Entry struct {
	ID        int64
	Date      time.Time // calendar day the entry was written, server local
	CreatedAt time.Time // precise creation instant, UTC
	Body      string    // raw markdown, exactly as written
}

// YearSummary is the number of entries in one calendar year.
type YearSummary struct {
	Year  int
	Count int
}

// YearView groups one year's entries by calendar month. Months with no
// entries are absent from the map.
type YearView struct {
	Year   int
	Months map[time.Month][]Entry
	Total  int
}

// SearchResult is one full-text match. Snippet is HTML-escaped excerpt
// text with "..." truncation markers; it is safe to embed without further
// escaping.
type SearchResult struct {
	EntryID   int64
	CreatedAt time.Time
	Snippet   string
}

// Service is the stateless query and write surface over a Store. The
// clock is injected so creation time is controlled by the host process.
type Service struct {
	store *storage.Store
	now   func() time.Time
}

// New builds a Service around store. If now is nil, time.Now is used.
func New(store *storage.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// Create validates and persists a new entry, returning its id. The
// created date is the server-local calendar day; the creation instant is
// stored as UTC epoch seconds. Saving an entry clears any pending draft.
func (s *Service) Create(body string) (int64, error) {
	if strings.TrimSpace(body) == "" {
		return 0, errf(KindValidation, nil, "entry body is empty")
	}

	now := s.now()
	createdAt := now.UTC().Unix()
	createdDate := now.Local().Format(dates.DateLayout)

	id, err := s.store.CreateEntry(createdAt, createdDate, body)
	if err != nil {
		slog.Error("creating entry", "error", err)
		return 0, errf(KindStorage, err, "creating entry")
	}
	return id, nil
}

// Entry fetches one entry by id.
func (s *Service) Entry(id int64) (Entry, error) {
	raw, err := s.store.GetEntry(id)
	if errors.Is(err, storage.ErrNotFound) {
		return Entry{}, errf(KindNotFound, err, "entry %d", id)
	}
	if err != nil {
		slog.Error("fetching entry", "id", id, "error", err)
		return Entry{}, errf(KindStorage, err, "fetching entry %d", id)
	}
	return normalize(raw)
}

// Recent returns at most limit entries, newest first. A limit of zero is
// an empty result, not an error.
func (s *Service) Recent(limit int) ([]Entry, error) {
	raw, err := s.store.RecentEntries(limit)
	if err != nil {
		slog.Error("listing recent entries", "error", err)
		return nil, errf(KindStorage, err, "listing recent entries")
	}
	return normalizeAll(raw)
}

// YearCounts returns per-year entry counts, newest year first. Years
// without entries are never emitted.
func (s *Service) YearCounts() ([]YearSummary, error) {
	counts, err := s.store.YearCounts()
	if err != nil {
		slog.Error("counting entries by year", "error", err)
		return nil, errf(KindStorage, err, "counting entries by year")
	}
	summaries := make([]YearSummary, len(counts))
	for i, c := range counts {
		summaries[i] = YearSummary{Year: c.Year, Count: c.Count}
	}
	return summaries, nil
}

// Year returns the given year's entries grouped by calendar month,
// entries oldest-first within each month. An implausible year yields an
// empty view, not an error.
func (s *Service) Year(year int) (YearView, error) {
	raw, err := s.store.EntriesForYear(year)
	if err != nil {
		slog.Error("listing entries for year", "year", year, "error", err)
		return YearView{}, errf(KindStorage, err, "listing entries for year %d", year)
	}

	view := YearView{Year: year, Months: make(map[time.Month][]Entry)}
	for _, r := range raw {
		e, err := normalize(r)
		if err != nil {
			return YearView{}, err
		}
		m := e.Date.Month()
		view.Months[m] = append(view.Months[m], e)
		view.Total++
	}
	return view, nil
}

// Search runs a full-text query and returns every matching entry, newest
// first. An
// empty or all-whitespace query is an empty result and never touches the
// index: blank input is not "match everything".
func (s *Service) Search(query string) ([]SearchResult, error) {
	match := ftsMatch(query)
	if match == "" {
		return nil, nil
	}

	hits, err := s.store.SearchEntries(match)
	if err != nil {
		slog.Error("searching entries", "query", query, "error", err)
		return nil, errf(KindStorage, err, "searching for %q", query)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		at, err := dates.FromUnix(h.CreatedAt)
		if err != nil {
			slog.Error("corrupt timestamp on search hit", "entry", h.EntryID, "error", err)
			return nil, errf(KindTimestamp, err, "entry %d", h.EntryID)
		}
		results = append(results, SearchResult{
			EntryID:   h.EntryID,
			CreatedAt: at,
			// Escape the raw excerpt so it can be embedded as-is.
			Snippet: html.EscapeString(h.Snippet),
		})
	}
	return results, nil
}

// SaveDraft replaces the pending draft with body.
func (s *Service) SaveDraft(body string) error {
	if err := s.store.SaveDraft(body, s.now().UTC().Unix()); err != nil {
		slog.Error("saving draft", "error", err)
		return errf(KindStorage, err, "saving draft")
	}
	return nil
}

// Draft returns the pending draft body, with ok false when none exists.
func (s *Service) Draft() (string, bool, error) {
	body, ok, err := s.store.GetDraft()
	if err != nil {
		slog.Error("reading draft", "error", err)
		return "", false, errf(KindStorage, err, "reading draft")
	}
	return body, ok, nil
}

// ClearDraft discards the pending draft; clearing an empty slot is fine.
func (s *Service) ClearDraft() error {
	if err := s.store.ClearDraft(); err != nil {
		slog.Error("clearing draft", "error", err)
		return errf(KindStorage, err, "clearing draft")
	}
	return nil
}

// ftsMatch turns free-form user input into an FTS5 match string. Each
// term is quoted so punctuation cannot be read as match syntax; embedded
// quotes are doubled per SQL string rules. Terms that carry no letters or
// digits tokenize to nothing and are dropped. Returns "" when nothing
// searchable remains.
func ftsMatch(query string) string {
	var quoted []string
	for _, t := range strings.Fields(query) {
		if !strings.ContainsFunc(t, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

func normalize(raw storage.Entry) (Entry, error) {
	date, err := dates.ParseDate(raw.CreatedDate)
	if err != nil {
		slog.Error("corrupt stored date", "entry", raw.ID, "error", err)
		return Entry{}, errf(KindFormat, err, "entry %d", raw.ID)
	}
	at, err := dates.FromUnix(raw.CreatedAt)
	if err != nil {
		slog.Error("corrupt stored timestamp", "entry", raw.ID, "error", err)
		return Entry{}, errf(KindTimestamp, err, "entry %d", raw.ID)
	}
	return Entry{ID: raw.ID, Date: date, CreatedAt: at, Body: raw.Body}, nil
}

func normalizeAll(raw []storage.Entry) ([]Entry, error) {
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		e, err := normalize(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
