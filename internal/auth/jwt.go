// JWT issuance and verification. No JWT library appears anywhere in
// the example pack, so this is a deliberately small HMAC-SHA256
// compact-serialization codec rather than a fabricated dependency; see
// DESIGN.md Open Question 5 for why this is the one ambient-adjacent
// piece built on the standard library.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/cfilipov/dockge/internal/apperr"
	"golang.org/x/crypto/sha3"
)

const jwtExpiry = 30 * 24 * time.Hour

// Claims matches the reference's JwtClaims shape: username, a
// SHAKE256-truncated binding to the current password hash, and an
// OPTIONAL expiry. The reference's default JWT validation treats exp
// as required; this implementation never does, per spec.md §6.
type Claims struct {
	Username string `json:"username"`
	H        string `json:"h"`
	Exp      *int64 `json:"exp,omitempty"`
}

var jwtHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

// ShakeHex returns the hex-encoded SHAKE256 digest of data truncated
// to n bytes of output, matching crypto.createHash("shake256",
// {outputLength:n}) in the reference's host runtime.
func ShakeHex(data string, n int) string {
	h := sha3.NewShake256()
	h.Write([]byte(data))
	out := make([]byte, n)
	h.Read(out)
	return encodeHex(out)
}

func encodeHex(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}

// CreateJWT signs a token binding username to the user's current
// password hash, so changing the password invalidates outstanding
// tokens.
func CreateJWT(secret []byte, username, passwordHash string) (string, error) {
	exp := time.Now().Add(jwtExpiry).Unix()
	claims := Claims{
		Username: username,
		H:        ShakeHex(passwordHash, 16),
		Exp:      &exp,
	}
	return sign(secret, claims)
}

func sign(secret []byte, claims Claims) (string, error) {
	body, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(body)
	signingInput := jwtHeader + "." + payload
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return signingInput + "." + sig, nil
}

// VerifyJWT checks the signature and, when present, the exp claim. A
// token with no exp claim never expires, per spec.md §6's requirement
// that exp validation be optional.
func VerifyJWT(secret []byte, token string) (*Claims, error) {
	parts := splitToken(token)
	if len(parts) != 3 {
		return nil, apperr.Authf("malformed token")
	}
	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[2])) != 1 {
		return nil, apperr.Authf("invalid token signature")
	}

	body, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, apperr.Authf("invalid token payload")
	}
	var claims Claims
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, apperr.Authf("invalid token claims")
	}
	if claims.Exp != nil && time.Now().Unix() > *claims.Exp {
		return nil, apperr.Authf("token expired")
	}
	return &claims, nil
}

func splitToken(token string) []string {
	var parts []string
	start := 0
	for i, c := range token {
		if c == '.' {
			parts = append(parts, token[start:i])
			start = i + 1
		}
	}
	parts = append(parts, token[start:])
	return parts
}
