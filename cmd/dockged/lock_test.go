package main

import (
	"path/filepath"
	"testing"

	"github.com/cfilipov/dockge/internal/dbx"
	"github.com/cfilipov/dockge/internal/settings"
)

func TestAcquireLockExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dockged.lock")

	unlock1, err := acquireLock(path)
	if err != nil {
		t.Fatalf("first acquireLock failed: %v", err)
	}

	if _, err := acquireLock(path); err == nil {
		t.Error("a second acquireLock on the same path should fail while the first holds it")
	}

	unlock1()

	unlock2, err := acquireLock(path)
	if err != nil {
		t.Fatalf("acquireLock after unlock failed: %v", err)
	}
	unlock2()
}

func newTestSettingsStore(t *testing.T) *settings.Store {
	t.Helper()
	db, err := dbx.Open(filepath.Join(t.TempDir(), "lock-test.db"))
	if err != nil {
		t.Fatalf("dbx.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return settings.New(db)
}

func TestLoadOrCreateJWTSecretGeneratesAndPersists(t *testing.T) {
	store := newTestSettingsStore(t)

	first, err := loadOrCreateJWTSecret(store)
	if err != nil {
		t.Fatalf("loadOrCreateJWTSecret failed: %v", err)
	}
	if len(first) != 32 {
		t.Errorf("len(secret) = %d, want 32", len(first))
	}

	second, err := loadOrCreateJWTSecret(store)
	if err != nil {
		t.Fatalf("loadOrCreateJWTSecret (second call) failed: %v", err)
	}
	if string(first) != string(second) {
		t.Error("loadOrCreateJWTSecret should return the same secret once persisted")
	}
}
