// Package auth implements the user model, password hashing, JWT
// issuance/verification, TOTP two-factor checks, and Turnstile
// verification, grounded on models/user.rs and handlers/auth.rs.
package auth

import (
	"database/sql"
	"regexp"
	"unicode"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/dbx"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID             int64
	Username       string
	PasswordHash   string
	Active         bool
	Timezone       string
	TwoFASecret    string
	TwoFAStatus    bool
	TwoFALastToken string
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM user`).Scan(&n); err != nil {
		return 0, apperr.Wrap(apperr.Db, err)
	}
	return n, nil
}

func (s *Store) FindByUsername(username string) (*User, error) {
	return s.scanOne(`SELECT id, username, password, active, timezone, twofa_secret, twofa_status, twofa_last_token
		FROM user WHERE username = ? COLLATE NOCASE`, username)
}

func (s *Store) FindByID(id int64) (*User, error) {
	return s.scanOne(`SELECT id, username, password, active, timezone, twofa_secret, twofa_status, twofa_last_token
		FROM user WHERE id = ?`, id)
}

func (s *Store) FindFirst() (*User, error) {
	return s.scanOne(`SELECT id, username, password, active, timezone, twofa_secret, twofa_status, twofa_last_token
		FROM user ORDER BY id LIMIT 1`)
}

func (s *Store) scanOne(query string, args ...any) (*User, error) {
	var u User
	var timezone, secret, lastToken sql.NullString
	err := s.db.QueryRow(query, args...).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Active, &timezone, &secret, &u.TwoFAStatus, &lastToken,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Db, err)
	}
	u.Timezone = dbx.StringOrEmpty(timezone)
	u.TwoFASecret = dbx.StringOrEmpty(secret)
	u.TwoFALastToken = dbx.StringOrEmpty(lastToken)
	return &u, nil
}

func (s *Store) Create(username, password string) (*User, error) {
	hash, err := GeneratePasswordHash(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err)
	}
	res, err := s.db.Exec(`INSERT INTO user (username, password, active) VALUES (?, ?, 1)`, username, hash)
	if err != nil {
		return nil, apperr.Wrap(apperr.Db, err)
	}
	id, _ := res.LastInsertId()
	return s.FindByID(id)
}

func (s *Store) UpdatePassword(userID int64, password string) error {
	hash, err := GeneratePasswordHash(password)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err)
	}
	_, err = s.db.Exec(`UPDATE user SET password = ? WHERE id = ?`, hash, userID)
	if err != nil {
		return apperr.Wrap(apperr.Db, err)
	}
	return nil
}

func (u *User) VerifyPassword(password string) bool {
	return VerifyPasswordHash(password, u.PasswordHash)
}

func GeneratePasswordHash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func VerifyPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var passwordAlphaRe = regexp.MustCompile(`[A-Za-z]`)

// CheckPasswordStrength requires at least 6 characters containing both
// a letter and a digit.
func CheckPasswordStrength(password string) error {
	if len(password) < 6 {
		return apperr.Validationf("password must be at least 6 characters")
	}
	hasAlpha := passwordAlphaRe.MatchString(password)
	hasDigit := false
	for _, r := range password {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasAlpha || !hasDigit {
		return apperr.Validationf("password must contain both letters and digits")
	}
	return nil
}
