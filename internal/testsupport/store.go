package testsupport

import (
	"testing"

	"mediaflow/internal/config"
	"mediaflow/internal/metastore"
)

// MustOpenStore opens a metastore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *metastore.Store {
	t.Helper()

	store, err := metastore.Open(cfg)
	if err != nil {
		t.Fatalf("metastore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
