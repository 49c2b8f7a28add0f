package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Entry is a canonical journal row as persisted. CreatedAt is epoch
// seconds (UTC); CreatedDate is the YYYY-MM-DD calendar day the entry was
// written, in server local time. Normalization into calendar types happens
// in the journal package.
type Entry struct {
	ID          int64
	CreatedAt   int64
	CreatedDate string
	Body        string
}

// YearCount is the number of entries written in a calendar year.
type YearCount struct {
	Year  int
	Count int
}

// SearchHit is one full-text match: the entry it references and a short
// excerpt of body text around the matched terms.
type SearchHit struct {
	EntryID   int64
	CreatedAt int64
	Snippet   string
}
