package dbx

import (
	"path/filepath"
	"testing"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "dbx-test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"setting", "user", "agent", "image_update_cache"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q to exist after migrations: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbx-test.db")
	db1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	db1.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open on an already-migrated database failed: %v", err)
	}
	db2.Close()
}

func TestNullStringRoundTrip(t *testing.T) {
	if ns := NullString(""); ns.Valid {
		t.Error("NullString(\"\") should be invalid")
	}
	ns := NullString("hello")
	if !ns.Valid || ns.String != "hello" {
		t.Errorf("NullString(\"hello\") = %+v", ns)
	}
	if StringOrEmpty(ns) != "hello" {
		t.Errorf("StringOrEmpty = %q, want hello", StringOrEmpty(ns))
	}
	if StringOrEmpty(NullString("")) != "" {
		t.Error("StringOrEmpty on an invalid NullString should be empty")
	}
}
