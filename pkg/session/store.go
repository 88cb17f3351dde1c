package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now returns the current UTC timestamp.
func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// Store is a single named client-storage slot holding the serialized
// session. Browser platforms back it with localStorage; tests back it
// with a map.
type Store interface {
	Read() (value string, ok bool)
	Write(value string)
	Clear()
}

// ReadStored returns the stored session when it is present, well formed,
// and unexpired. The slot holds plain JSON; the percent-encoded form is
// wire-only. Expiry is lazy: an expired session is removed from the
// store at read time, never swept in the background.
func ReadStored(store Store, clock Clock) (Session, bool) {
	if store == nil {
		return Session{}, false
	}
	if clock == nil {
		clock = systemClock{}
	}
	raw, ok := store.Read()
	if !ok || raw == "" {
		return Session{}, false
	}
	var stored Session
	if unmarshalErr := json.Unmarshal([]byte(raw), &stored); unmarshalErr != nil {
		return Session{}, false
	}
	if stored.Expired(clock.Now()) {
		store.Clear()
		return Session{}, false
	}
	return stored, true
}

// WriteStored serializes the session into the store as plain JSON.
func WriteStored(store Store, current Session) error {
	payload, marshalErr := json.Marshal(current)
	if marshalErr != nil {
		return fmt.Errorf("session.store.write: %w", marshalErr)
	}
	store.Write(string(payload))
	return nil
}
