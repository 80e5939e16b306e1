package settings

import (
	"path/filepath"
	"testing"

	"github.com/cfilipov/dockge/internal/dbx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := dbx.Open(filepath.Join(t.TempDir(), "settings-test.db"))
	if err != nil {
		t.Fatalf("dbx.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestGetBoolMissingFallsBack(t *testing.T) {
	s := newTestStore(t)
	if !s.GetBool("imageUpdateCheckEnabled", true) {
		t.Error("GetBool on a missing key should return the fallback")
	}
}

func TestSetAndGetTypedValues(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("imageUpdateCheckEnabled", false, "bool"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if s.GetBool("imageUpdateCheckEnabled", true) {
		t.Error("GetBool should reflect the stored value")
	}

	if err := s.Set("imageUpdateCheckInterval", uint64(12), "number"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := s.GetUint64("imageUpdateCheckInterval", 6); got != 12 {
		t.Errorf("GetUint64 = %d, want 12", got)
	}

	if err := s.Set("primaryHostname", "dockge.example.com", "string"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := s.GetString("primaryHostname", ""); got != "dockge.example.com" {
		t.Errorf("GetString = %q", got)
	}
}

func TestSetOverwritesAndInvalidatesCache(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("hideVersion", true, "bool"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !s.GetBool("hideVersion", false) {
		t.Fatal("expected true after first Set")
	}
	if err := s.Set("hideVersion", false, "bool"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if s.GetBool("hideVersion", true) {
		t.Error("GetBool should reflect the overwritten value, not a stale cache entry")
	}
}

func TestAll(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("a", "1", "string"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("b", "2", "string"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
}

func TestClearCache(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("a", "1", "string"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.GetString("a", "")
	s.ClearCache()
	s.mu.RLock()
	n := len(s.cache)
	s.mu.RUnlock()
	if n != 0 {
		t.Errorf("cache should be empty after ClearCache, has %d entries", n)
	}
}
