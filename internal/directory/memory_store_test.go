package directory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func sampleRecord() Record {
	return Record{
		ID:        "rec-1",
		Email:     "a@x.com",
		Name:      "A",
		Picture:   "http://p",
		GoogleID:  "g1",
		LoginTime: time.Unix(1700000000, 0).UTC(),
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	if _, ok, err := store.Get(context.Background(), CurrentUserKey); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	record := sampleRecord()
	if putErr := store.Put(context.Background(), CurrentUserKey, record); putErr != nil {
		t.Fatalf("put error: %v", putErr)
	}

	loaded, ok, getErr := store.Get(context.Background(), CurrentUserKey)
	if getErr != nil || !ok {
		t.Fatalf("expected record, got ok=%v err=%v", ok, getErr)
	}
	if loaded != record {
		t.Fatalf("record mismatch: %+v != %+v", loaded, record)
	}

	if deleteErr := store.Delete(context.Background(), CurrentUserKey); deleteErr != nil {
		t.Fatalf("delete error: %v", deleteErr)
	}
	if _, ok, _ := store.Get(context.Background(), CurrentUserKey); ok {
		t.Fatalf("expected record gone after delete")
	}

	// Deleting again is a no-op.
	if deleteErr := store.Delete(context.Background(), CurrentUserKey); deleteErr != nil {
		t.Fatalf("repeat delete error: %v", deleteErr)
	}
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	first := sampleRecord()
	second := sampleRecord()
	second.ID = "rec-2"
	second.Email = "b@x.com"

	if err := store.Put(context.Background(), CurrentUserKey, first); err != nil {
		t.Fatalf("put error: %v", err)
	}
	if err := store.Put(context.Background(), CurrentUserKey, second); err != nil {
		t.Fatalf("put error: %v", err)
	}

	loaded, ok, _ := store.Get(context.Background(), CurrentUserKey)
	if !ok || loaded != second {
		t.Fatalf("expected second write to win, got %+v", loaded)
	}
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if err := store.Put(context.Background(), "", sampleRecord()); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey from put, got %v", err)
	}
	if _, _, err := store.Get(context.Background(), ""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey from get, got %v", err)
	}
	if err := store.Delete(context.Background(), ""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey from delete, got %v", err)
	}
}
