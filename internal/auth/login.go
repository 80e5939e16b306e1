// Login/setup/change-password flow, grounded on handlers/auth.rs's
// handle_setup/handle_login/handle_change_password/handle_login_by_token.
package auth

import (
	"context"

	"github.com/cfilipov/dockge/internal/apperr"
)

type Service struct {
	Users     *Store
	JWTSecret []byte
	Turnstile func(ctx context.Context, token, remoteIP string) error // nil when Turnstile is disabled
}

func NewService(users *Store, jwtSecret []byte, turnstile func(context.Context, string, string) error) *Service {
	return &Service{Users: users, JWTSecret: jwtSecret, Turnstile: turnstile}
}

func (s *Service) NeedsSetup() (bool, error) {
	n, err := s.Users.Count()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Setup creates the first (and only) user account.
func (s *Service) Setup(username, password string) (*User, error) {
	if needs, err := s.NeedsSetup(); err != nil {
		return nil, err
	} else if !needs {
		return nil, apperr.Validationf("setup already completed")
	}
	if err := CheckPasswordStrength(password); err != nil {
		return nil, err
	}
	return s.Users.Create(username, password)
}

type LoginRequest struct {
	Username       string
	Password       string
	Token          string // TOTP token, optional unless the account has 2FA enabled
	TurnstileToken string
	RemoteIP       string
}

// Login validates credentials, Turnstile, and 2FA, returning a signed
// JWT on success.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, *User, error) {
	if s.Turnstile != nil {
		if err := s.Turnstile(ctx, req.TurnstileToken, req.RemoteIP); err != nil {
			return "", nil, err
		}
	}

	user, err := s.Users.FindByUsername(req.Username)
	if err != nil {
		return "", nil, apperr.Authf("incorrect username or password")
	}
	if !user.Active {
		return "", nil, apperr.Authf("account disabled")
	}
	if !user.VerifyPassword(req.Password) {
		return "", nil, apperr.Authf("incorrect username or password")
	}
	if user.TwoFAStatus {
		if req.Token == "" || !VerifyTOTP(user.TwoFASecret, req.Token) {
			return "", nil, apperr.Authf("invalid two-factor token")
		}
	}

	token, err := CreateJWT(s.JWTSecret, user.Username, user.PasswordHash)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Internal, err)
	}
	return token, user, nil
}

// LoginByToken re-validates a previously issued JWT against the
// user's current password hash, so a password change invalidates it.
func (s *Service) LoginByToken(token string) (*User, error) {
	claims, err := VerifyJWT(s.JWTSecret, token)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.FindByUsername(claims.Username)
	if err != nil {
		return nil, apperr.Authf("invalid token")
	}
	if ShakeHex(user.PasswordHash, 16) != claims.H {
		return nil, apperr.Authf("token no longer valid")
	}
	return user, nil
}

func (s *Service) ChangePassword(userID int64, currentPassword, newPassword string) error {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(currentPassword) {
		return apperr.Authf("incorrect current password")
	}
	if err := CheckPasswordStrength(newPassword); err != nil {
		return err
	}
	return s.Users.UpdatePassword(userID, newPassword)
}
