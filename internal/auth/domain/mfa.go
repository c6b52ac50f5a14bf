package domain

import "time"

// TwoFactorChallenge is an outstanding one-time code awaiting verification.
// The code and its expiry only ever exist together.
type TwoFactorChallenge struct {
	CodeHash  string
	ExpiresAt time.Time
	Attempts  int // failed verifications so far
}

// Expired reports whether the code can no longer be used at now.
func (c TwoFactorChallenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
