// Package pagination implements opaque seek cursors. A cursor encodes the
// sort key and id of the last row a client has seen; the next page holds the
// rows strictly after it in (sort key desc, id desc) order.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidCursor is returned for cursors that cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// CursorRequest holds seek parameters parsed from query strings.
type CursorRequest struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit"`
}

// Normalize clamps the limit to 1..MaxLimit, defaulting to DefaultLimit.
func (r *CursorRequest) Normalize() {
	switch {
	case r.Limit <= 0:
		r.Limit = DefaultLimit
	case r.Limit > MaxLimit:
		r.Limit = MaxLimit
	}
}

// Cursor is the decoded position of the last row of a page.
type Cursor struct {
	SortKey time.Time `json:"k"`
	ID      string    `json:"id"`
}

// Encode returns the base64url JSON form of the cursor.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses an encoded cursor. An empty string decodes to nil.
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.ID == "" || c.SortKey.IsZero() {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// Seek returns a GORM scope that orders by (column desc, id desc), skips
// everything up to and including the cursor and fetches one row beyond the
// limit so that Page can tell whether more rows follow.
func Seek(column, idColumn string, after *Cursor, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if after != nil {
			key := after.SortKey.UTC()
			db = db.Where(
				fmt.Sprintf("(%s < ? OR (%s = ? AND %s < ?))", column, column, idColumn),
				key, key, after.ID,
			)
		}
		return db.Order(column + " DESC").Order(idColumn + " DESC").Limit(limit + 1)
	}
}

// Page is one page of a seek listing.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// NewPage trims the extra row fetched by Seek and derives the next cursor
// from the last kept row.
func NewPage[T any](rows []T, limit int, key func(T) Cursor) Page[T] {
	page := Page[T]{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.HasMore = true
		next := key(page.Items[len(page.Items)-1]).Encode()
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}
