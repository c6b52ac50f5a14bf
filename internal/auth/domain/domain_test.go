package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	now := time.Now().UTC()
	a := NewAccount("alice", "alice@example.com", "$argon2id$...", "fingerprint", now)

	require.False(t, a.EmailConfirmed)
	require.False(t, a.TwoFactorEnabled)
	require.NotNil(t, a.ConfirmationTokenHash)
	require.Equal(t, "fingerprint", *a.ConfirmationTokenHash)
	require.Nil(t, a.TwoFactor)
	require.Nil(t, a.Refresh)
}

func TestExpiry(t *testing.T) {
	now := time.Now()

	require.False(t, TwoFactorChallenge{ExpiresAt: now.Add(time.Second)}.Expired(now))
	require.True(t, TwoFactorChallenge{ExpiresAt: now}.Expired(now), "expiry equal to now is expired")
	require.True(t, RefreshSession{ExpiresAt: now.Add(-time.Second)}.Expired(now))
	require.True(t, RefreshSession{ExpiresAt: now}.Expired(now))
}

func TestLoginResult_Exhaustive(t *testing.T) {
	results := []LoginResult{Authenticated{}, EmailConfirmationRequired{}, TwoFactorRequired{}}

	var kinds []string
	for _, r := range results {
		switch r.(type) {
		case Authenticated:
			kinds = append(kinds, "authenticated")
		case EmailConfirmationRequired:
			kinds = append(kinds, "confirm")
		case TwoFactorRequired:
			kinds = append(kinds, "2fa")
		}
	}
	require.Equal(t, []string{"authenticated", "confirm", "2fa"}, kinds)
}
