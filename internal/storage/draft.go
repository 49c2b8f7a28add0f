package storage

import (
	"database/sql"
	"fmt"
)

// SaveDraft replaces the pending draft with body. The draft table's fixed
// primary key makes "at most one row" a schema guarantee, so this is a
// plain upsert.
func (s *Store) SaveDraft(body string, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO draft (id, body, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		body, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// GetDraft returns the pending draft body, with ok false when none exists.
func (s *Store) GetDraft() (body string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.QueryRow(`SELECT body FROM draft WHERE id = 1`).Scan(&body)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading draft: %w", err)
	}
	return body, true, nil
}

// ClearDraft removes any pending draft. Clearing an empty slot is fine.
func (s *Store) ClearDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM draft WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}
