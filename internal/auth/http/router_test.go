package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	authhttp "github.com/aussiebroadwan/accounts/internal/auth/http"
	"github.com/aussiebroadwan/accounts/internal/auth/metrics"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery-staple"

type mailbox struct {
	mu            sync.Mutex
	confirmations map[string]string
	codes         map[string]string
}

func (m *mailbox) SendEmailConfirmation(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations[email] = token
	return nil
}

func (m *mailbox) SendTwoFactorCode(_ context.Context, email, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

func (m *mailbox) confirmation(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmations[email]
}

func (m *mailbox) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type testServer struct {
	URL    string
	client *authsdk.SDKClient
	mail   *mailbox
}

var generousLimits = authhttp.RateLimits{
	Credential: httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
	Account:    httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
	System:     httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
}

func newTestServer(t *testing.T, limits authhttp.RateLimits) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := service.NewTokenIssuer(service.TokenConfig{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "accounts",
		Audience:   "accounts-api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	mail := &mailbox{confirmations: map[string]string{}, codes: map[string]string{}}
	logger := slog.New(slog.DiscardHandler)

	router := authhttp.NewRouter(tokens, "test", st, reg, logger)
	router.Limits = limits
	router.AuthService = &service.AuthService{
		Store:    st,
		Hasher:   cryptox.NewPasswordHasher("test-pepper"),
		Tokens:   tokens,
		Notifier: mail,
		Policy:   service.DefaultTwoFactorPolicy(),
		Metrics:  m,
	}
	router.ProfileService = &service.ProfileService{Store: st, Metrics: m}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, client: authsdk.NewSDKClient(srv.URL), mail: mail}
}

// signUp registers and confirms username, then logs in.
func (s *testServer) signUp(t *testing.T, username string) *authsdk.Session {
	t.Helper()
	ctx := t.Context()
	email := username + "@example.com"

	require.NoError(t, s.client.Register(ctx, username, email, testPassword))
	require.NoError(t, s.client.ConfirmEmail(ctx, email, s.mail.confirmation(email)))

	session, _, err := s.client.LoginSession(ctx, username, testPassword)
	require.NoError(t, err)
	return session
}

func TestLogin_PendingOutcomesOmitTokenFields(t *testing.T) {
	s := newTestServer(t, generousLimits)
	require.NoError(t, s.client.Register(t.Context(), "alice", "alice@example.com", testPassword))

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, s.URL+"/v1/auth/login",
		strings.NewReader(`{"username":"alice","password":"`+testPassword+`"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, true, body["email_confirmation_required"])
	require.Equal(t, false, body["two_factor_required"])
	for _, key := range []string{"access_token", "refresh_token", "token_type", "expires_in"} {
		require.NotContains(t, body, key)
	}
}

func TestRegisterConfirmLogin(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()

	require.NoError(t, s.client.Register(ctx, "alice", "alice@example.com", testPassword))

	res, err := s.client.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.True(t, res.EmailConfirmationRequired)
	require.False(t, res.Authenticated())
	require.Empty(t, res.AccessToken)
	require.Empty(t, res.RefreshToken)

	token := s.mail.confirmation("alice@example.com")
	require.NotEmpty(t, token)
	require.NoError(t, s.client.ConfirmEmail(ctx, "alice@example.com", token))

	err = s.client.ConfirmEmail(ctx, "alice@example.com", token)
	require.ErrorIs(t, err, authsdk.ErrInvalidConfirmation, "a token confirms at most once")

	session, res, err := s.client.LoginSession(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.Equal(t, "Bearer", res.TokenType)
	require.Equal(t, 900, res.ExpiresIn)

	profile, err := session.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Username)
	require.Equal(t, "alice@example.com", profile.Email)
	require.True(t, profile.EmailConfirmed)
	require.False(t, profile.TwoFactorEnabled)
}

func TestRegister_Errors(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()

	require.NoError(t, s.client.Register(ctx, "alice", "alice@example.com", testPassword))

	tests := []struct {
		name     string
		username string
		email    string
		password string
		want     error
	}{
		{"duplicate username", "alice", "other@example.com", testPassword, authsdk.ErrConflict},
		{"duplicate email", "bob", "alice@example.com", testPassword, authsdk.ErrConflict},
		{"missing username", "", "carol@example.com", testPassword, authsdk.ErrInvalidRequest},
		{"malformed email", "carol", "not-an-email", testPassword, authsdk.ErrInvalidRequest},
		{"short password", "carol", "carol@example.com", "short", authsdk.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.client.Register(ctx, tt.username, tt.email, tt.password)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfirmEmail_Errors(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()

	require.NoError(t, s.client.Register(ctx, "alice", "alice@example.com", testPassword))

	require.ErrorIs(t, s.client.ConfirmEmail(ctx, "alice@example.com", ""), authsdk.ErrInvalidRequest)
	require.ErrorIs(t, s.client.ConfirmEmail(ctx, "alice@example.com", "wrong"), authsdk.ErrInvalidConfirmation)
	require.ErrorIs(t, s.client.ConfirmEmail(ctx, "nobody@example.com", "wrong"), authsdk.ErrInvalidConfirmation)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()
	s.signUp(t, "alice")

	_, err := s.client.Login(ctx, "alice", "wrong-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	_, err = s.client.Login(ctx, "nobody", testPassword)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	_, err = s.client.Login(ctx, "", "")
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
}

func TestRefresh_RotatesAndRejectsReplay(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()
	session := s.signUp(t, "alice")

	oldAccess, oldRefresh := session.AccessToken(), session.RefreshToken()
	require.NoError(t, session.Refresh(ctx))
	require.NotEqual(t, oldRefresh, session.RefreshToken())

	_, err := s.client.Refresh(ctx, oldAccess, oldRefresh)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "a consumed refresh token cannot be replayed")

	_, err = s.client.Refresh(ctx, "not.a.jwt", session.RefreshToken())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	// The current pair still works after the failed attempts.
	_, err = s.client.Refresh(ctx, session.AccessToken(), session.RefreshToken())
	require.NoError(t, err)
}

func TestTwoFactorFlow(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()
	session := s.signUp(t, "alice")

	require.NoError(t, session.EnableTwoFactor(ctx, "alice"))

	res, err := s.client.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.True(t, res.TwoFactorRequired)
	require.Empty(t, res.AccessToken)

	code := s.mail.code("alice@example.com")
	require.NotEmpty(t, code)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = s.client.VerifyTwoFactor(ctx, "alice", wrong)
	require.ErrorIs(t, err, authsdk.ErrInvalidCode)

	pair, err := s.client.VerifyTwoFactor(ctx, "alice", code)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	_, err = s.client.VerifyTwoFactor(ctx, "alice", code)
	require.ErrorIs(t, err, authsdk.ErrInvalidCode, "a code mints tokens at most once")

	verified := s.client.NewSessionFromTokens(pair.AccessToken, pair.RefreshToken, pair.ExpiresIn)
	require.NoError(t, verified.DisableTwoFactor(ctx, "alice"))

	res, err = s.client.Login(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.True(t, res.Authenticated())
}

func TestTwoFactorToggle_OnlyOwnAccount(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()
	alice := s.signUp(t, "alice")
	s.signUp(t, "bob")

	require.ErrorIs(t, alice.EnableTwoFactor(ctx, "bob"), authsdk.ErrForbidden)
	require.ErrorIs(t, alice.DisableTwoFactor(ctx, "bob"), authsdk.ErrForbidden)
}

func TestBearerRequired(t *testing.T) {
	s := newTestServer(t, generousLimits)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/v1/profile"},
		{http.MethodPut, "/v1/profile"},
		{http.MethodPost, "/v1/auth/logout"},
		{http.MethodPost, "/v1/auth/2fa/enable"},
		{http.MethodPost, "/v1/auth/2fa/disable"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req, err := http.NewRequestWithContext(t.Context(), tc.method, s.URL+tc.path, strings.NewReader(`{}`))
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer garbage")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")
		})
	}
}

func TestLogout(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()
	session := s.signUp(t, "alice")

	access, refresh := session.AccessToken(), session.RefreshToken()
	require.NoError(t, session.Logout(ctx))

	_, err := s.client.Refresh(ctx, access, refresh)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()
	alice := s.signUp(t, "alice")
	s.signUp(t, "bob")

	_, err := alice.UpdateProfile(ctx, "bob", "alice@example.com")
	require.ErrorIs(t, err, authsdk.ErrConflict)

	_, err = alice.UpdateProfile(ctx, "alice", "bad-email")
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	profile, err := alice.UpdateProfile(ctx, "alice2", "alice2@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice2", profile.Username)
	require.Equal(t, "alice2@example.com", profile.Email)

	_, _, err = s.client.LoginSession(ctx, "alice2", testPassword)
	require.NoError(t, err)

	// The old token names a username that no longer exists.
	_, err = alice.GetProfile(ctx)
	require.ErrorIs(t, err, authsdk.ErrNotFound)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, generousLimits)
	ctx := t.Context()

	live, err := s.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := s.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)

	_, err = s.client.Login(ctx, "nobody", testPassword)
	require.Error(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL+"/metrics", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `accounts_auth_operations_total{operation="login",outcome="invalid_credentials"} 1`)
}

func TestCredentialRoutesAreRateLimited(t *testing.T) {
	limits := generousLimits
	limits.Credential = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	s := newTestServer(t, limits)
	ctx := t.Context()

	for range 2 {
		_, err := s.client.Login(ctx, "nobody", testPassword)
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	}

	_, err := s.client.Login(ctx, "nobody", testPassword)
	require.ErrorIs(t, err, authsdk.ErrRateLimited)

	// Other routes keep their own budget.
	_, err = s.client.GetLiveness(ctx)
	require.NoError(t, err)
}
