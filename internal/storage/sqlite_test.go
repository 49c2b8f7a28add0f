package storage

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, createdAt int64, date, body string) int64 {
	t.Helper()
	id, err := s.CreateEntry(createdAt, date, body)
	if err != nil {
		t.Fatalf("CreateEntry(%q) failed: %v", body, err)
	}
	return id
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the migration is not re-applied.
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

// TestSchemaTables verifies the migration creates the canonical table, the
// search index, and the draft table.
func TestSchemaTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"entries", "entry_search_index", "draft"} {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = ?", table).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s missing", table)
		}
	}
}

func TestCreateAndGetEntryRoundTrip(t *testing.T) {
	s := openTestStore(t)

	const body = "First *entry* with some markdown."
	id := mustCreate(t, s, 1672900000, "2023-01-05", body)

	e, err := s.GetEntry(id)
	if err != nil {
		t.Fatalf("GetEntry(%d): %v", id, err)
	}
	if e.Body != body {
		t.Errorf("body round-trip: got %q, want %q", e.Body, body)
	}
	if e.CreatedAt != 1672900000 || e.CreatedDate != "2023-01-05" {
		t.Errorf("metadata round-trip: got %+v", e)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetEntry(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEntry on empty store: err = %v, want ErrNotFound", err)
	}
}

func TestEntryIDsNeverReused(t *testing.T) {
	s := openTestStore(t)

	a := mustCreate(t, s, 100, "2023-01-01", "one")
	b := mustCreate(t, s, 200, "2023-01-02", "two")
	if b <= a {
		t.Errorf("ids not strictly increasing: %d then %d", a, b)
	}
}

func TestRecentEntries(t *testing.T) {
	s := openTestStore(t)

	for i := 1; i <= 5; i++ {
		mustCreate(t, s, int64(i*1000), "2023-03-01", fmt.Sprintf("entry %d", i))
	}

	entries, err := s.RecentEntries(3)
	if err != nil {
		t.Fatalf("RecentEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt > entries[i-1].CreatedAt {
			t.Errorf("entries not in descending order: %v", entries)
		}
	}
	if entries[0].Body != "entry 5" {
		t.Errorf("newest entry first: got %q", entries[0].Body)
	}
}

func TestRecentEntriesZeroLimit(t *testing.T) {
	s := openTestStore(t)
	mustCreate(t, s, 100, "2023-01-01", "one")

	entries, err := s.RecentEntries(0)
	if err != nil {
		t.Fatalf("RecentEntries(0): %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("RecentEntries(0) = %d entries, want 0", len(entries))
	}
}

func TestYearCounts(t *testing.T) {
	s := openTestStore(t)

	mustCreate(t, s, 1672900000, "2023-01-05", "Alpha one")
	mustCreate(t, s, 1686700000, "2023-06-14", "Beta two")
	mustCreate(t, s, 1640000000, "2021-12-20", "older")

	counts, err := s.YearCounts()
	if err != nil {
		t.Fatalf("YearCounts: %v", err)
	}
	want := []YearCount{{Year: 2023, Count: 2}, {Year: 2021, Count: 1}}
	if len(counts) != len(want) {
		t.Fatalf("got %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %v, want %v", i, counts[i], want[i])
		}
	}
}

func TestEntriesForYear(t *testing.T) {
	s := openTestStore(t)

	mustCreate(t, s, 1686700000, "2023-06-14", "Beta two")
	mustCreate(t, s, 1672900000, "2023-01-05", "Alpha one")
	mustCreate(t, s, 1640000000, "2021-12-20", "older")

	entries, err := s.EntriesForYear(2023)
	if err != nil {
		t.Fatalf("EntriesForYear: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Oldest first within the year.
	if entries[0].Body != "Alpha one" || entries[1].Body != "Beta two" {
		t.Errorf("wrong order: %q then %q", entries[0].Body, entries[1].Body)
	}
}

func TestEntriesForYearImplausible(t *testing.T) {
	s := openTestStore(t)
	mustCreate(t, s, 1686700000, "2023-06-14", "Beta two")

	entries, err := s.EntriesForYear(99999)
	if err != nil {
		t.Fatalf("EntriesForYear(99999): %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("implausible year matched %d entries", len(entries))
	}
}

func TestSearchEntries(t *testing.T) {
	s := openTestStore(t)

	wantID := mustCreate(t, s, 1672900000, "2023-01-05", "Alpha one")
	mustCreate(t, s, 1686700000, "2023-06-14", "Beta two")

	hits, err := s.SearchEntries(`"Alpha"`)
	if err != nil {
		t.Fatalf("SearchEntries: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].EntryID != wantID {
		t.Errorf("hit references entry %d, want %d", hits[0].EntryID, wantID)
	}
	if !strings.Contains(hits[0].Snippet, "Alpha one") {
		t.Errorf("snippet %q does not contain match context", hits[0].Snippet)
	}
}

func TestSearchEntriesOrderedByRecency(t *testing.T) {
	s := openTestStore(t)

	mustCreate(t, s, 100, "2023-01-01", "needle in the first")
	mustCreate(t, s, 300, "2023-01-03", "needle in the third")
	mustCreate(t, s, 200, "2023-01-02", "needle in the second")

	hits, err := s.SearchEntries(`"needle"`)
	if err != nil {
		t.Fatalf("SearchEntries: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].CreatedAt > hits[i-1].CreatedAt {
			t.Errorf("hits not newest-first: %v", hits)
		}
	}
}

func TestSearchEntriesReturnsEveryMatch(t *testing.T) {
	s := openTestStore(t)

	const total = 150
	for i := 0; i < total; i++ {
		mustCreate(t, s, int64(1000+i), "2023-01-01", fmt.Sprintf("needle entry %d", i))
	}

	hits, err := s.SearchEntries(`"needle"`)
	if err != nil {
		t.Fatalf("SearchEntries: %v", err)
	}
	if len(hits) != total {
		t.Fatalf("got %d hits for %d matching entries", len(hits), total)
	}
}

// TestDualWriteAtomicity forces the index insert to fail and verifies the
// canonical insert is rolled back with it.
func TestDualWriteAtomicity(t *testing.T) {
	s := openTestStore(t)

	keepID := mustCreate(t, s, 100, "2023-01-01", "survivor")

	if _, err := s.db.Exec("DROP TABLE entry_search_index"); err != nil {
		t.Fatalf("dropping search index: %v", err)
	}

	if _, err := s.CreateEntry(200, "2023-01-02", "doomed"); err == nil {
		t.Fatal("CreateEntry succeeded with no search index")
	}

	// No orphaned canonical row: the failed id must not resolve.
	if _, err := s.GetEntry(keepID + 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("orphaned canonical row after failed index write: err = %v", err)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		t.Fatalf("counting entries: %v", err)
	}
	if count != 1 {
		t.Errorf("canonical table changed by failed write: %d rows, want 1", count)
	}
}

func TestDraftLifecycle(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.GetDraft(); err != nil || ok {
		t.Fatalf("GetDraft on fresh store: body present=%v err=%v", ok, err)
	}

	if err := s.SaveDraft("half a thought", 100); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	body, ok, err := s.GetDraft()
	if err != nil || !ok || body != "half a thought" {
		t.Fatalf("GetDraft = (%q, %v, %v)", body, ok, err)
	}

	// Overwrite, not append.
	if err := s.SaveDraft("a whole thought", 200); err != nil {
		t.Fatalf("SaveDraft overwrite: %v", err)
	}
	body, _, _ = s.GetDraft()
	if body != "a whole thought" {
		t.Errorf("draft not overwritten: %q", body)
	}
	var rows int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM draft").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("draft table holds %d rows, want at most 1", rows)
	}

	if err := s.ClearDraft(); err != nil {
		t.Fatalf("ClearDraft: %v", err)
	}
	if _, ok, _ := s.GetDraft(); ok {
		t.Error("draft survived ClearDraft")
	}
	// Idempotent.
	if err := s.ClearDraft(); err != nil {
		t.Errorf("second ClearDraft: %v", err)
	}
}

func TestCreateEntryClearsDraft(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveDraft("work in progress", 100); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	mustCreate(t, s, 200, "2023-01-02", "work in progress, finished")

	if _, ok, err := s.GetDraft(); err != nil {
		t.Fatalf("GetDraft: %v", err)
	} else if ok {
		t.Error("draft survived entry creation")
	}
}
