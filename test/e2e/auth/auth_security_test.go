//go:build integration

package auth_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies that an unknown user and a wrong password
// are indistinguishable to the caller.
func TestInvalidCredentials(t *testing.T) {
	svc := setupAuthService(t)
	username, _ := svc.registerConfirmed(t, "sec")

	_, err := svc.client.Login(t.Context(), username, "wrong-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	_, err = svc.client.Login(t.Context(), newUsername("ghost"), testPassword)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
}

// TestInvalidAccessToken verifies that bearer routes reject tokens the
// service did not sign.
func TestInvalidAccessToken(t *testing.T) {
	svc := setupAuthService(t)
	username, _ := svc.registerConfirmed(t, "forge")

	claims := jwt.MapClaims{
		"sub": username,
		"iss": "accounts-e2e",
		"aud": "accounts-e2e-api",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-service-key-0123456789abcd"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":   "invalid-token-12345",
		"alg none":  unsigned,
		"other key": otherKey,
	} {
		t.Run(name, func(t *testing.T) {
			session := svc.client.NewSessionFromTokens(token, "", 3600)
			_, err := session.GetProfile(t.Context())
			require.ErrorIs(t, err, authsdk.ErrInvalidToken)
		})
	}
}

// TestCannotToggleAnotherAccount verifies a bearer token only reaches its
// own account.
func TestCannotToggleAnotherAccount(t *testing.T) {
	svc := setupAuthService(t)
	attacker, _ := svc.registerConfirmed(t, "mallory")
	victim, _ := svc.registerConfirmed(t, "bob")

	session := svc.performLogin(t, attacker)
	err := session.EnableTwoFactor(t.Context(), victim)
	require.ErrorIs(t, err, authsdk.ErrForbidden)
}

// TestConfirmationTokenSingleUse verifies a confirmation token cannot be replayed.
func TestConfirmationTokenSingleUse(t *testing.T) {
	svc := setupAuthService(t)
	ctx := t.Context()

	username := newUsername("once")
	email := username + "@example.com"
	require.NoError(t, svc.client.Register(ctx, username, email, testPassword))

	token := svc.mail.confirmation(email)
	require.NoError(t, svc.client.ConfirmEmail(ctx, email, token))

	err := svc.client.ConfirmEmail(ctx, email, token)
	require.ErrorIs(t, err, authsdk.ErrInvalidConfirmation)
}
