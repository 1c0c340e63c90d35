package testsupport

import (
	"context"
	"testing"

	"marquee/internal/config"
	"marquee/internal/store"
)

// MustWriteStore writes snap to the config's store path and opens it. The
// store is closed when the test finishes.
func MustWriteStore(t testing.TB, cfg *config.Config, snap store.Snapshot) *store.Store {
	t.Helper()
	ctx := context.Background()
	if err := store.Write(ctx, cfg.StorePath(), snap); err != nil {
		t.Fatalf("store.Write: %v", err)
	}
	return MustOpenStore(t, cfg)
}

// MustOpenStore opens the config's existing store and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), cfg.StorePath())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}
