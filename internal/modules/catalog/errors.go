package catalog

import (
	"errors"
	"strings"
)

// Error taxonomy reported by the catalog service. Callers match with
// errors.Is; the wrapped message carries the detail.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// isDuplicateKey returns true when the error is a unique constraint violation
// from either store backend (SQLite or PostgreSQL).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
