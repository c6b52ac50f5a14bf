package domain

import "time"

// LoginResult is the outcome of a password login that passed credential
// checks. Exactly one of the concrete types below is returned; invalid
// credentials are reported as an error instead.
type LoginResult interface {
	loginResult()
}

// Authenticated carries the tokens of a completed login.
type Authenticated struct {
	Tokens TokenPair
}

// EmailConfirmationRequired means the password was right but the address
// has not been confirmed yet. No tokens are issued.
type EmailConfirmationRequired struct{}

// TwoFactorRequired means the password was right and a one-time code must be
// verified before tokens are issued.
type TwoFactorRequired struct {
	// CodeSent reports whether a code was dispatched as part of this login.
	CodeSent bool
	// ExpiresAt is the deadline of the dispatched code, zero when none was sent.
	ExpiresAt time.Time
}

func (Authenticated) loginResult()             {}
func (EmailConfirmationRequired) loginResult() {}
func (TwoFactorRequired) loginResult()         {}
