// RFC 4226 HOTP and RFC 6238 TOTP, real two-factor verification
// replacing the reference's always-reject login-time stub (see
// SPEC_FULL.md §C.3). The HOTP/TOTP algorithms themselves mirror
// verify_totp/generate_hotp in models/user.rs.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	totpStep   = 30 * time.Second
	totpDigits = 6
)

// GenerateHOTP computes an RFC 4226 HOTP value for the given counter.
func GenerateHOTP(secret []byte, counter uint64) string {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, counter)

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf)
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	code := (uint32(sum[offset])&0x7f)<<24 |
		(uint32(sum[offset+1])&0xff)<<16 |
		(uint32(sum[offset+2])&0xff)<<8 |
		(uint32(sum[offset+3]) & 0xff)

	mod := uint32(1)
	for i := 0; i < totpDigits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", totpDigits, code%mod)
}

// VerifyTOTP checks token against the current time step and the
// adjacent steps on either side, tolerating clock drift the way the
// reference's ±1 step window does.
func VerifyTOTP(base32Secret, token string) bool {
	secret, err := decodeBase32Secret(base32Secret)
	if err != nil {
		return false
	}
	counter := uint64(time.Now().Unix()) / uint64(totpStep.Seconds())
	for _, offset := range []int64{0, -1, 1} {
		c := int64(counter) + offset
		if c < 0 {
			continue
		}
		if GenerateHOTP(secret, uint64(c)) == token {
			return true
		}
	}
	return false
}

func decodeBase32Secret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	secret = strings.TrimRight(secret, "=")
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return enc.DecodeString(secret)
}

const secretCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// GenSecret returns a random base32 charset string suitable for a TOTP
// secret, matching the reference's gen_secret.
func GenSecret(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range raw {
		out[i] = secretCharset[int(b)%len(secretCharset)]
	}
	return string(out), nil
}
