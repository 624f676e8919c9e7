package testsupport

import (
	"context"
	"testing"

	"kbpkit/internal/config"
	"kbpkit/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun inserts a run for file with the given status and returns it.
func RecordRun(t testing.TB, store *history.Store, file string, status history.Status) *history.Run {
	t.Helper()

	run := &history.Run{File: file, Status: status}
	if err := store.Record(context.Background(), run); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return run
}
