package domain

import "time"

// TokenPair is what a successful login, two-factor verification or refresh
// returns: the short-lived access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string // always "Bearer"
	ExpiresIn    time.Duration
}

// RefreshSession is the single refresh token an account may hold. Rotating it
// overwrites the previous one, so at most one refresh token is ever valid.
type RefreshSession struct {
	TokenHash string
	ExpiresAt time.Time
}

// Expired reports whether the session can no longer be used at now.
func (s RefreshSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
