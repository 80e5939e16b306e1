package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"syscall"

	"github.com/cfilipov/dockge/internal/settings"
)

// acquireLock flock()s path, the same single-instance invariant
// mux_server.go's unix socket enforced for the sandbox daemon: no
// ecosystem library in the example pack wraps flock, so this is a
// deliberate stdlib-only exception.
func acquireLock(path string) (unlock func(), err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return func() {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
	}, nil
}

// loadOrCreateJWTSecret returns the server's persistent JWT signing
// key, generating and storing a random one on first run so tokens
// survive a restart but never a fresh database.
func loadOrCreateJWTSecret(store *settings.Store) ([]byte, error) {
	if existing := store.GetString("jwtSecret", ""); existing != "" {
		return base64.StdEncoding.DecodeString(existing)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	if err := store.Set("jwtSecret", encoded, "string"); err != nil {
		return nil, err
	}
	return raw, nil
}
