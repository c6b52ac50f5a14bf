//go:build integration

package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterConfirmLoginRefresh walks the basic account lifecycle.
func TestRegisterConfirmLoginRefresh(t *testing.T) {
	svc := setupAuthService(t)
	ctx := t.Context()

	username := newUsername("alice")
	email := username + "@example.com"
	require.NoError(t, svc.client.Register(ctx, username, email, testPassword))

	// No tokens before the address is confirmed.
	res, err := svc.client.Login(ctx, username, testPassword)
	require.NoError(t, err)
	require.True(t, res.EmailConfirmationRequired)
	require.Empty(t, res.AccessToken)

	require.NoError(t, svc.client.ConfirmEmail(ctx, email, svc.mail.confirmation(email)))

	res, err = svc.client.Login(ctx, username, testPassword)
	require.NoError(t, err)
	require.False(t, res.TwoFactorRequired)
	assertTokenResponse(t, &res.TokenResponse)

	rotated, err := svc.client.Refresh(ctx, res.AccessToken, res.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, rotated)
	require.NotEqual(t, res.RefreshToken, rotated.RefreshToken)

	_, err = svc.client.Refresh(ctx, res.AccessToken, res.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "replaying a consumed refresh token must fail")
}

// TestDuplicateRegistration verifies usernames and emails are unique.
func TestDuplicateRegistration(t *testing.T) {
	svc := setupAuthService(t)
	ctx := t.Context()

	username := newUsername("dup")
	require.NoError(t, svc.client.Register(ctx, username, username+"@example.com", testPassword))

	err := svc.client.Register(ctx, username, "other-"+username+"@example.com", testPassword)
	require.ErrorIs(t, err, authsdk.ErrConflict)
}

// TestTwoFactorLogin enables two-factor and completes a login with the code.
func TestTwoFactorLogin(t *testing.T) {
	svc := setupAuthService(t)
	ctx := t.Context()

	username, email := svc.registerConfirmed(t, "mfa")
	session := svc.performLogin(t, username)
	require.NoError(t, session.EnableTwoFactor(ctx, username))

	res, err := svc.client.Login(ctx, username, testPassword)
	require.NoError(t, err)
	require.True(t, res.TwoFactorRequired)
	require.Empty(t, res.AccessToken)
	require.Empty(t, res.RefreshToken)

	code := svc.mail.code(email)
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}
	_, err = svc.client.VerifyTwoFactor(ctx, username, wrong)
	require.ErrorIs(t, err, authsdk.ErrInvalidCode)

	pair, err := svc.client.VerifyTwoFactor(ctx, username, code)
	require.NoError(t, err)
	assertTokenResponse(t, pair)

	profile, err := svc.client.NewSessionFromTokens(pair.AccessToken, pair.RefreshToken, pair.ExpiresIn).GetProfile(ctx)
	require.NoError(t, err)
	require.True(t, profile.TwoFactorEnabled)
}

// TestLogoutEndsRefreshSession verifies logout revokes the refresh token.
func TestLogoutEndsRefreshSession(t *testing.T) {
	svc := setupAuthService(t)
	ctx := t.Context()

	username, _ := svc.registerConfirmed(t, "logout")
	session := svc.performLogin(t, username)
	access, refresh := session.AccessToken(), session.RefreshToken()

	require.NoError(t, session.Logout(ctx))

	_, err := svc.client.Refresh(ctx, access, refresh)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
}

// TestProfileRename verifies a rename ends the refresh session and keeps
// the new name usable for login.
func TestProfileRename(t *testing.T) {
	svc := setupAuthService(t)
	ctx := t.Context()

	username, _ := svc.registerConfirmed(t, "rename")
	session := svc.performLogin(t, username)

	renamed := newUsername("renamed")
	profile, err := session.UpdateProfile(ctx, renamed, renamed+"@example.com")
	require.NoError(t, err)
	require.Equal(t, renamed, profile.Username)

	_, err = svc.client.Refresh(ctx, session.AccessToken(), session.RefreshToken())
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	svc.performLogin(t, renamed)
}
