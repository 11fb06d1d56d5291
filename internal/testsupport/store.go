package testsupport

import (
	"context"
	"testing"

	"loudlimit/internal/config"
	"loudlimit/internal/history"
	"loudlimit/internal/normalize"
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

// RecordSummary stores summary in store and fails the test on error.
func RecordSummary(t testing.TB, store *history.Store, summary normalize.Summary) {
	t.Helper()

	if err := store.Record(context.Background(), summary); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
}
