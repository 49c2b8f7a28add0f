package storage

import "fmt"

// snippetTokens bounds the excerpt returned for each match; FTS5 caps this
// argument at 64.
const snippetTokens = 32

// SearchEntries runs an FTS5 MATCH over the search index and joins back to
// the canonical table, returning one hit per matching entry. The match
// string must already be quoted for FTS5 (see journal.Search). Results are
// newest first; equal timestamps fall back to insertion order.
//
// The snippet is raw body text around the best match, truncated with "..."
// at cut boundaries and carrying no highlight markup.
func (s *Store) SearchEntries(match string) ([]SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT entries.id, entries.created_at,
		       snippet(entry_search_index, 0, '', '', '...', ?)
		FROM entry_search_index
		JOIN entries ON entry_search_index.rowid = entries.id
		WHERE entry_search_index MATCH ?
		ORDER BY entries.created_at DESC, entries.id ASC`,
		snippetTokens, match,
	)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", match, err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.EntryID, &h.CreatedAt, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
