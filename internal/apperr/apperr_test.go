package apperr

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		Internal:   "internal",
		Validation: "validation",
		Auth:       "auth",
		NotFound:   "not_found",
		Db:         "db",
		Kind(99):   "internal",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	plain := New(Validation, "bad input")
	if plain.Error() != "validation: bad input" {
		t.Errorf("Error() = %q", plain.Error())
	}

	wrapped := Wrap(Db, errors.New("disk full"))
	if wrapped.Error() != "db: disk full: disk full" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, wrapped.Err) {
		t.Error("Unwrap should expose the underlying error")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(Db, nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(Db, nil, "x") != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestWrapPreservesExistingKind(t *testing.T) {
	original := New(NotFound, "stack missing")
	rewrapped := Wrap(Internal, original)
	if rewrapped.Kind != NotFound {
		t.Errorf("Wrap should preserve the original Kind, got %v", rewrapped.Kind)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(New(Auth, "x")) != Auth {
		t.Error("KindOf should extract the *Error's Kind")
	}
	if KindOf(errors.New("plain")) != Internal {
		t.Error("KindOf should default unmapped errors to Internal")
	}
}

func TestToAck(t *testing.T) {
	if ack := ToAck(nil); ack.Status != "ok" {
		t.Errorf("ToAck(nil) = %+v, want status ok", ack)
	}

	ack := ToAck(New(Validation, "missing field"))
	if ack.Status != "error" || ack.Kind != "validation" || ack.Msg != "missing field" {
		t.Errorf("ToAck(*Error) = %+v", ack)
	}

	plainAck := ToAck(errors.New("boom"))
	if plainAck.Status != "error" || plainAck.Kind != "internal" || plainAck.Msg != "boom" {
		t.Errorf("ToAck(plain error) = %+v", plainAck)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	if Validationf("need %s", "x").Kind != Validation {
		t.Error("Validationf should produce Validation kind")
	}
	if Authf("nope").Kind != Auth {
		t.Error("Authf should produce Auth kind")
	}
	if NotFoundf("gone").Kind != NotFound {
		t.Error("NotFoundf should produce NotFound kind")
	}
	if Internalf("oops").Kind != Internal {
		t.Error("Internalf should produce Internal kind")
	}
}
