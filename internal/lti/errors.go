package lti

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a launch attempt was rejected. The kind is logged
// server-side; HTTP responses stay generic.
type ErrorKind string

const (
	ErrMissingParameter    ErrorKind = "missing_parameter"
	ErrStateMismatch       ErrorKind = "state_mismatch"
	ErrSignatureValidation ErrorKind = "signature_validation"
	ErrClaimValidation     ErrorKind = "claim_validation"
	ErrKeyResolution       ErrorKind = "key_resolution"
)

// ValidationError is terminal for the current attempt; nothing is retried and
// no session data is established.
type ValidationError struct {
	Kind ErrorKind
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func reject(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the ErrorKind from err, or empty when err is not a
// ValidationError.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
