// Package agent implements remote-endpoint registration and CRUD,
// grounded on models/agent.rs. Unlike the reference's
// addAgent/removeAgent/updateAgent (stubs that reply "not yet
// supported"), these are fully implemented here — see SPEC_FULL.md
// §C.1.
package agent

import (
	"database/sql"
	"strings"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/dbx"
	sshconfig "github.com/kevinburke/ssh_config"
)

type Agent struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
	Name     string `json:"name,omitempty"`
	Active   bool   `json:"active"`
}

// Endpoint strips the scheme from URL and returns the host segment
// before the first '/', matching models/agent.rs's endpoint().
func (a *Agent) Endpoint() string {
	url := strings.TrimPrefix(a.URL, "https://")
	url = strings.TrimPrefix(url, "http://")
	if idx := strings.Index(url, "/"); idx >= 0 {
		return url[:idx]
	}
	return url
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindAll() ([]*Agent, error) {
	rows, err := s.db.Query(`SELECT id, url, username, password, name, active FROM agent`)
	if err != nil {
		return nil, apperr.Wrap(apperr.Db, err)
	}
	defer rows.Close()

	var out []*Agent
	for rows.Next() {
		var a Agent
		var username, password, name sql.NullString
		if err := rows.Scan(&a.ID, &a.URL, &username, &password, &name, &a.Active); err != nil {
			return nil, apperr.Wrap(apperr.Db, err)
		}
		a.Username = dbx.StringOrEmpty(username)
		a.Password = dbx.StringOrEmpty(password)
		a.Name = dbx.StringOrEmpty(name)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *Store) FindByURL(url string) (*Agent, error) {
	var a Agent
	var username, password, name sql.NullString
	err := s.db.QueryRow(`SELECT id, url, username, password, name, active FROM agent WHERE url = ?`, url).
		Scan(&a.ID, &a.URL, &username, &password, &name, &a.Active)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("agent %q not found", url)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Db, err)
	}
	a.Username = dbx.StringOrEmpty(username)
	a.Password = dbx.StringOrEmpty(password)
	a.Name = dbx.StringOrEmpty(name)
	return &a, nil
}

// ResolveHostAlias expands an SSH-config host alias into a URL using
// the operator's ~/.ssh/config, so `addAgent` can accept an alias
// instead of a bare URL.
func ResolveHostAlias(alias string) (string, error) {
	cfg, err := sshconfig.NewUserSettings().GetStrict(alias, "HostName")
	if err != nil || cfg == "" {
		return "", apperr.Validationf("no ssh config entry for host %q", alias)
	}
	port, _ := sshconfig.NewUserSettings().GetStrict(alias, "Port")
	if port == "" {
		port = "22"
	}
	return "https://" + cfg + ":" + port, nil
}

func (s *Store) Create(a *Agent) (*Agent, error) {
	res, err := s.db.Exec(`INSERT INTO agent (url, username, password, name, active) VALUES (?, ?, ?, ?, 1)`,
		a.URL, dbx.NullString(a.Username), dbx.NullString(a.Password), dbx.NullString(a.Name))
	if err != nil {
		return nil, apperr.Wrap(apperr.Db, err)
	}
	id, _ := res.LastInsertId()
	a.ID = id
	a.Active = true
	return a, nil
}

func (s *Store) Delete(url string) error {
	res, err := s.db.Exec(`DELETE FROM agent WHERE url = ?`, url)
	if err != nil {
		return apperr.Wrap(apperr.Db, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("agent %q not found", url)
	}
	return nil
}

func (s *Store) UpdateName(url, name string) error {
	res, err := s.db.Exec(`UPDATE agent SET name = ? WHERE url = ?`, name, url)
	if err != nil {
		return apperr.Wrap(apperr.Db, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("agent %q not found", url)
	}
	return nil
}
