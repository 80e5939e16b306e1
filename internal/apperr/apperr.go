// Package apperr defines the error taxonomy every event handler and
// background worker reports through: validation failures, auth
// failures, missing resources, internal faults, and database faults.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Auth
	NotFound
	Db
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Auth:
		return "auth"
	case NotFound:
		return "not_found"
	case Db:
		return "db"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}

func Wrapf(kind Kind, err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Validationf(format string, args ...any) *Error { return Newf(Validation, format, args...) }
func Authf(format string, args ...any) *Error       { return Newf(Auth, format, args...) }
func NotFoundf(format string, args ...any) *Error   { return Newf(NotFound, format, args...) }
func Internalf(format string, args ...any) *Error   { return Newf(Internal, format, args...) }

// KindOf converts any error into its reportable kind, defaulting to
// Internal for errors that weren't constructed through this package so
// that unexpected failures never leak unmapped detail to a client.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// AckPayload is the shape every WS ack error carries, per the event
// surface's error contract.
type AckPayload struct {
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Msg    string `json:"msg,omitempty"`
}

func ToAck(err error) AckPayload {
	if err == nil {
		return AckPayload{Status: "ok"}
	}
	var e *Error
	if errors.As(err, &e) {
		return AckPayload{Status: "error", Kind: e.Kind.String(), Msg: e.Msg}
	}
	return AckPayload{Status: "error", Kind: Internal.String(), Msg: err.Error()}
}
