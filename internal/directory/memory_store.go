package directory

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a mutex-guarded map store for local runs and tests.
// Process restart loses all state, which the contract tolerates.
type MemoryStore struct {
	mutex   sync.Mutex
	records map[string]Record
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put overwrites the record under key.
func (store *MemoryStore) Put(ctx context.Context, key string, record Record) error {
	if key == "" {
		return fmt.Errorf("directory.memory.put: %w", ErrEmptyKey)
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.records[key] = record
	return nil
}

// Get returns the record under key and whether it exists.
func (store *MemoryStore) Get(ctx context.Context, key string) (Record, bool, error) {
	if key == "" {
		return Record{}, false, fmt.Errorf("directory.memory.get: %w", ErrEmptyKey)
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	record, ok := store.records[key]
	return record, ok, nil
}

// Delete removes the record under key. Deleting a missing key is a
// no-op.
func (store *MemoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("directory.memory.delete: %w", ErrEmptyKey)
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.records, key)
	return nil
}
