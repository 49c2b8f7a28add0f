package storage

import (
	"database/sql"
	"fmt"
	"strconv"
)

// CreateEntry inserts the canonical row and its search-index row as one
// transaction and clears any pending draft. The index row reuses the
// canonical rowid, which is what keys the two tables together. If any step
// fails the transaction rolls back and neither table changes.
func (s *Store) CreateEntry(createdAt int64, createdDate, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning create transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO entries (created_at, created_date, body)
		VALUES (?, ?, ?)`,
		createdAt, createdDate, body,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new entry id: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO entry_search_index (rowid, body)
		VALUES (?, ?)`,
		id, body,
	); err != nil {
		return 0, fmt.Errorf("indexing entry %d: %w", id, err)
	}

	// Saving an entry consumes the draft it grew out of.
	if _, err := tx.Exec(`DELETE FROM draft WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("clearing draft: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing entry %d: %w", id, err)
	}
	return id, nil
}

// GetEntry fetches one entry by id, or ErrNotFound.
func (s *Store) GetEntry(id int64) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e Entry
	err := s.db.QueryRow(`
		SELECT id, created_at, created_date, body
		FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.CreatedAt, &e.CreatedDate, &e.Body)
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("fetching entry %d: %w", id, err)
	}
	return e, nil
}

// RecentEntries returns at most limit entries, newest first. A limit of
// zero (or less) is an empty result, not an error.
func (s *Store) RecentEntries(limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, created_at, created_date, body
		FROM entries
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// YearCounts aggregates entry counts per calendar year of created_date,
// newest year first. Only years with at least one entry appear.
func (s *Store) YearCounts() ([]YearCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT strftime('%Y', created_date) AS year, COUNT(*) AS cnt
		FROM entries
		GROUP BY year
		ORDER BY year DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying year counts: %w", err)
	}
	defer rows.Close()

	var counts []YearCount
	for rows.Next() {
		var year string
		var cnt int
		if err := rows.Scan(&year, &cnt); err != nil {
			return nil, fmt.Errorf("scanning year count: %w", err)
		}
		y, err := strconv.Atoi(year)
		if err != nil {
			return nil, fmt.Errorf("parsing year %q: %w", year, err)
		}
		counts = append(counts, YearCount{Year: y, Count: cnt})
	}
	return counts, rows.Err()
}

// EntriesForYear returns all entries whose created_date falls in year,
// oldest first. An implausible year matches nothing and returns an empty
// result.
func (s *Store) EntriesForYear(year int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, created_at, created_date, body
		FROM entries
		WHERE CAST(strftime('%Y', created_date) AS INTEGER) = ?
		ORDER BY created_at ASC, id ASC`, year,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entries for year %d: %w", year, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.CreatedDate, &e.Body); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
