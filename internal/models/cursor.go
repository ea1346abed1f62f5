package models

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cursor is the position after the last row of a page. The next page holds
// the rows ordered strictly after (CreatedAt, ID), so rows committed between
// two requests can neither repeat nor push a row off a page boundary.
type Cursor struct {
	AsOf      time.Time `json:"a"` // Snapshot bound of the first page
	CreatedAt time.Time `json:"c"` // created_at of the last row returned
	ID        uuid.UUID `json:"i"` // id of the last row returned
	Page      int       `json:"p"` // Number of the page the cursor leads to
}

// Encode returns the opaque URL-safe form handed to clients.
func (c Cursor) Encode() string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor parses a value produced by Cursor.Encode.
func DecodeCursor(value string) (Cursor, error) {
	var c Cursor
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Cursor{}, ErrInvalidInput
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, ErrInvalidInput
	}
	if c.AsOf.IsZero() || c.CreatedAt.IsZero() || c.ID == uuid.Nil || c.Page < 2 {
		return Cursor{}, ErrInvalidInput
	}
	return c, nil
}

// Admits reports whether txn is ordered after the cursor, newest first, that
// is (created_at, id) < (c.CreatedAt, c.ID).
func (c Cursor) Admits(txn Transaction) bool {
	if !txn.CreatedAt.Equal(c.CreatedAt) {
		return txn.CreatedAt.Before(c.CreatedAt)
	}
	return bytes.Compare(txn.ID[:], c.ID[:]) < 0
}

