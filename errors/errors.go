package errors

import (
	"errors"
	"fmt"
)

// Credential and session start.
var (
	ErrNoCredential        = fmt.Errorf("no credential")
	ErrMalformedCredential = fmt.Errorf("malformed credential")
	ErrAuthRequired        = fmt.Errorf("authentication required")
)

// Channel lifecycle.
var (
	ErrChannelOpen          = fmt.Errorf("channel open failure")
	ErrUnexpectedDisconnect = fmt.Errorf("unexpected disconnect")
	ErrChannelAlreadyOpen   = fmt.Errorf("channel already open")
	ErrChannelClosed        = fmt.Errorf("channel closed")
	ErrIllegalTransition    = fmt.Errorf("illegal state transition")
	ErrSessionClosed        = fmt.Errorf("session closed")
	ErrDuplicateHandler     = fmt.Errorf("handler already bound for event kind")
)

// Local validation, never fatal.
var (
	ErrEmptyText   = fmt.Errorf("empty message text")
	ErrNoRoom      = fmt.Errorf("no confirmed room")
	ErrInvalidForm = fmt.Errorf("invalid form")
)

// Inbound payloads and backend calls.
var (
	ErrMalformedRecord = fmt.Errorf("malformed record")
	ErrBackend         = fmt.Errorf("backend error")
)

// IsValidation reports whether err belongs to the local, recoverable tier.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyText) || errors.Is(err, ErrNoRoom) || errors.Is(err, ErrInvalidForm)
}

// Is mirrors the standard library so callers importing this package
// do not need a second, aliased errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
