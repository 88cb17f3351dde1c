// Package directory tracks the most recent login as a single
// server-side record. The record is diagnostic, not authoritative: the
// real session lives in the browser, and concurrent logins simply
// overwrite each other (last write wins).
package directory

import (
	"context"
	"errors"
	"time"
)

// CurrentUserKey is the slot the HTTP handlers read and write. The
// store itself is keyed so a multi-user backend can be substituted
// without touching handler logic.
const CurrentUserKey = "current"

// ErrEmptyKey indicates a store operation was attempted without a key.
var ErrEmptyKey = errors.New("directory.store.empty_key")

// Record describes the last user who logged in.
type Record struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	GoogleID  string    `json:"googleId"`
	LoginTime time.Time `json:"loginTime"`
}

// Store is a keyed record store. Get reports presence explicitly; a
// missing key is not an error.
type Store interface {
	Put(ctx context.Context, key string, record Record) error
	Get(ctx context.Context, key string) (Record, bool, error)
	Delete(ctx context.Context, key string) error
}
