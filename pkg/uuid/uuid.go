// Package uuid issues time-ordered identifiers for stored rows and events.
// Ids are UUID v7, so they sort by creation time and keep SQLite index inserts append-only.
package uuid

import (
	"github.com/google/uuid"
)

// NewV7 returns a UUID v7 in canonical string form. If the random source fails it falls back
// to a v4 id, which is still unique but no longer time-ordered.
func NewV7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
