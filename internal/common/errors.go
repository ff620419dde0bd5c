// Package common defines shared constants and sentinel errors used across
// the client and relay layers of ClientPro. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth/activation errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrAccountLocked    = errors.New("account locked")
	ErrNotActivated     = errors.New("device not activated")
	ErrActivationDenied = errors.New("activation denied")

	// Master-key lifecycle errors.
	ErrWrongPIN        = errors.New("wrong pin")
	ErrWrongEmployeeID = errors.New("employee id does not match")
	ErrForeignData     = errors.New("local data belongs to another employee")
	ErrInvalidPIN      = errors.New("pin must be 4 digits")
	ErrLocked          = errors.New("store is locked")

	// Transfer/backup errors.
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrPayloadTooLarge  = errors.New("backup too large for inline transfer")
	ErrPlaintextLeak    = errors.New("payload looks unencrypted, refusing to send")
	ErrBackupUnchanged  = errors.New("data unchanged since last backup")
	ErrRelayUnavailable = errors.New("relay unavailable")
)
