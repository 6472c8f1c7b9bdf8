package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCode        = errors.New("invalid verification code")

	// ErrUnsupportedMediaType marks documents outside the accepted
	// image/PDF set. It is an intake-class failure, so the caller maps
	// it to a client error.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrEmptyDocument marks an upload with a zero-length body.
	ErrEmptyDocument = errors.New("empty document")
)

// ExtractionError is a stage-one failure: the document itself could
// not be decoded. Distinct from a valid document with no recognizable
// text, which yields an empty string and no error.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StructuringError is a stage-two failure: the completion service
// errored or replied with something that is not a JSON array. RawReply
// carries the model's reply verbatim for diagnostics; it is empty when
// the call itself failed.
type StructuringError struct {
	RawReply string
	Err      error
}

func (e *StructuringError) Error() string {
	if e.RawReply != "" {
		return fmt.Sprintf("entry structuring failed: %v (raw reply: %s)", e.Err, e.RawReply)
	}
	return fmt.Sprintf("entry structuring failed: %v", e.Err)
}

func (e *StructuringError) Unwrap() error { return e.Err }
