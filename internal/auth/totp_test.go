package auth

import "testing"

func TestHOTPKnownVector(t *testing.T) {
	// RFC 4226 Appendix D test vector for secret "12345678901234567890".
	secret := []byte("12345678901234567890")
	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}
	for i, w := range want {
		if got := GenerateHOTP(secret, uint64(i)); got != w {
			t.Errorf("HOTP(%d) = %s, want %s", i, got, w)
		}
	}
}

func TestVerifyTOTPRejectsGarbage(t *testing.T) {
	if VerifyTOTP("not-valid-base32!!", "123456") {
		t.Fatal("expected VerifyTOTP to reject an undecodable secret")
	}
}
