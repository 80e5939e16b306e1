// Package config holds the dockged server's runtime configuration,
// parsed from flags, an optional YAML file, and environment variables
// by the CLI entrypoint in cmd/dockged.
package config

import (
	"os"
	"path/filepath"
)

// Config mirrors the option surface of the original dockge server,
// generalized to Kong's flag/env/config-file resolution order.
type Config struct {
	Port     int    `help:"HTTP/WS listen port." default:"5001" env:"DOCKGE_PORT"`
	Hostname string `help:"Bind address; empty binds all interfaces." env:"DOCKGE_HOSTNAME"`

	DataDir   string `help:"Directory for the sqlite database and logs." default:"./data/" env:"DOCKGE_DATA_DIR"`
	StacksDir string `help:"Directory containing compose stack subdirectories." default:"/opt/stacks" env:"DOCKGE_STACKS_DIR"`

	SSLKey           string `help:"Path to a TLS private key." env:"DOCKGE_SSL_KEY"`
	SSLCert          string `help:"Path to a TLS certificate." env:"DOCKGE_SSL_CERT"`
	SSLKeyPassphrase string `help:"Passphrase for the TLS private key." env:"DOCKGE_SSL_KEY_PASSPHRASE"`

	EnableConsole bool `help:"Expose a host-shell terminal over the event channel." env:"DOCKGE_ENABLE_CONSOLE"`

	TurnstileSiteKey   string `help:"Cloudflare Turnstile site key." env:"DOCKGE_TURNSTILE_SITE_KEY"`
	TurnstileSecretKey string `help:"Cloudflare Turnstile secret key." env:"DOCKGE_TURNSTILE_SECRET_KEY"`

	LogFile  string `help:"Path to the rotated log file." env:"DOCKGE_LOG_FILE"`
	LogLevel string `help:"debug, info, warn, or error." default:"info" env:"DOCKGE_LOG_LEVEL"`
}

// DBPath returns the sqlite database file location under DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "dockge.db")
}

// LogFilePath returns the resolved log file path, defaulting under
// DataDir when LogFile isn't set explicitly.
func (c *Config) LogFilePath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "dockged.log")
}

// LockFilePath is the flock-guarded singleton lock for the server
// process, preventing two instances from sharing one sqlite file.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.DataDir, "dockged.lock")
}

// IsDev reports whether the server is running in development mode.
// Only affects the CORS policy; Turnstile verification runs
// unconditionally whenever a secret key is configured, dev or not.
func (c *Config) IsDev() bool {
	return os.Getenv("NODE_ENV") == "development"
}

// TurnstileEnabled reports whether login should be gated on a
// Turnstile challenge.
func (c *Config) TurnstileEnabled() bool {
	return c.TurnstileSiteKey != "" && c.TurnstileSecretKey != ""
}

func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(c.StacksDir, 0o755)
}
