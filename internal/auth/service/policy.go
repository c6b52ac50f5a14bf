package service

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
)

// Dispatch selects where two-factor codes are generated.
type Dispatch string

const (
	// DispatchOnLogin generates and sends a code as part of Login.
	DispatchOnLogin Dispatch = "login"
	// DispatchExternal leaves code issuance to IssueTwoFactorChallenge.
	DispatchExternal Dispatch = "external"
)

// TwoFactorPolicy configures two-factor challenges.
type TwoFactorPolicy struct {
	Dispatch    Dispatch
	CodeTTL     time.Duration
	Digits      otp.Digits
	MaxAttempts int
}

// DefaultTwoFactorPolicy sends six-digit codes on login, valid for five
// minutes and five attempts.
func DefaultTwoFactorPolicy() TwoFactorPolicy {
	return TwoFactorPolicy{
		Dispatch:    DispatchOnLogin,
		CodeTTL:     5 * time.Minute,
		Digits:      otp.DigitsSix,
		MaxAttempts: 5,
	}
}

// Validate reports configuration mistakes as ErrConfiguration.
func (p TwoFactorPolicy) Validate() error {
	switch p.Dispatch {
	case DispatchOnLogin, DispatchExternal:
	default:
		return fmt.Errorf("%w: unknown two-factor dispatch %q", ErrConfiguration, p.Dispatch)
	}
	if p.CodeTTL <= 0 {
		return fmt.Errorf("%w: two-factor code ttl must be positive", ErrConfiguration)
	}
	if p.Digits != otp.DigitsSix && p.Digits != otp.DigitsEight {
		return fmt.Errorf("%w: two-factor codes must have 6 or 8 digits", ErrConfiguration)
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("%w: two-factor max attempts must be positive", ErrConfiguration)
	}
	return nil
}
