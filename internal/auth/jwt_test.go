package auth

import "testing"

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := CreateJWT(secret, "alice", "hashed-password")
	if err != nil {
		t.Fatalf("CreateJWT: %v", err)
	}

	claims, err := VerifyJWT(secret, token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if claims.Exp == nil {
		t.Error("expected exp claim to be set")
	}
}

func TestVerifyJWTNoExpNeverExpires(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{Username: "bob", H: ShakeHex("hash", 16)}
	token, err := sign(secret, claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyJWT(secret, token); err != nil {
		t.Fatalf("VerifyJWT should accept a token with no exp claim: %v", err)
	}
}

func TestVerifyJWTRejectsTamperedSignature(t *testing.T) {
	secret := []byte("test-secret")
	token, _ := CreateJWT(secret, "alice", "hashed-password")
	tampered := token[:len(token)-1] + "x"
	if _, err := VerifyJWT(secret, tampered); err == nil {
		t.Fatal("expected tampered signature to be rejected")
	}
}
