//go:build integration

package auth_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/app"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for accounts service end-to-end tests.
 * One PostgreSQL container is shared by the whole package; every test gets
 * its own in-process service and its own usernames.
 */

const testPassword = "Secret1!-long-enough"

var (
	databaseURL string
	userSeq     atomic.Int64
)

// TestMain starts PostgreSQL once before all tests and terminates it after.
func TestMain(m *testing.M) {
	ctx := context.Background()

	fmt.Fprintf(os.Stdout, "Starting PostgreSQL container...")
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("accounts_e2e"),
		tcpostgres.WithUsername("accounts"),
		tcpostgres.WithPassword("accounts"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to start PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	databaseURL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read connection string: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Terminating PostgreSQL container...")
	_ = container.Terminate(ctx)
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// mailbox captures what would have been emailed.
type mailbox struct {
	mu            sync.Mutex
	confirmations map[string]string
	codes         map[string]string
}

func newMailbox() *mailbox {
	return &mailbox{confirmations: map[string]string{}, codes: map[string]string{}}
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

type authService struct {
	client *authsdk.SDKClient
	mail   *mailbox
	url    string
}

// setupAuthService starts the service with relaxed rate limits. Tests often
// make many rapid requests which would otherwise hit the production limits.
func setupAuthService(t *testing.T) *authService {
	return setupAuthServiceWithEnv(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	})
}

// setupAuthServiceWithDefaultRateLimits keeps the production limits. It is
// meant for testing that rate limiting actually works.
func setupAuthServiceWithDefaultRateLimits(t *testing.T) *authService {
	return setupAuthServiceWithEnv(t, nil)
}

func setupAuthServiceWithEnv(t *testing.T, extra map[string]string) *authService {
	t.Helper()

	environ := map[string]string{
		"AUTH_JWT_KEY":            "e2e-signing-key-0123456789abcdef0123",
		"AUTH_JWT_ISSUER":         "accounts-e2e",
		"AUTH_JWT_AUDIENCE":       "accounts-e2e-api",
		"AUTH_ACCESS_TTL_MINUTES": "15",
		"AUTH_REFRESH_TTL_DAYS":   "7",
		"AUTH_DATABASE_DRIVER":    "postgres",
		"AUTH_DATABASE_URL":       databaseURL,
		"AUTH_PEPPER_FILE":        filepath.Join(t.TempDir(), "pepper"),
		"ENV":                     "test",
		"LOG_LEVEL":               "warn",
		"LOG_FORMAT":              "json",
	}
	for k, v := range extra {
		environ[k] = v
	}

	cfg, err := app.LoadConfigFrom(environ)
	require.NoError(t, err)

	mail := newMailbox()
	application, err := app.New(t.Context(), cfg, app.WithNotifier(mail))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	return &authService{client: authsdk.NewSDKClient(srv.URL), mail: mail, url: srv.URL}
}

// newUsername returns a username no other test in this run uses.
func newUsername(prefix string) string {
	return fmt.Sprintf("%s%d_%d", prefix, time.Now().UnixNano()%1_000_000, userSeq.Add(1))
}

// registerConfirmed registers a fresh account and confirms its email.
func (s *authService) registerConfirmed(t *testing.T, prefix string) (username, email string) {
	t.Helper()
	ctx := t.Context()

	username = newUsername(prefix)
	email = username + "@example.com"

	require.NoError(t, s.client.Register(ctx, username, email, testPassword))
	token := s.mail.confirmation(email)
	require.NotEmpty(t, token, "confirmation token should have been sent")
	require.NoError(t, s.client.ConfirmEmail(ctx, email, token))

	return username, email
}

// performLogin logs in a confirmed account without two-factor.
func (s *authService) performLogin(t *testing.T, username string) *authsdk.Session {
	t.Helper()

	session, res, err := s.client.LoginSession(t.Context(), username, testPassword)
	require.NoError(t, err, "Login should succeed")
	assertTokenResponse(t, &res.TokenResponse)
	return session
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
	require.Equal(t, 15*60, resp.ExpiresIn)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
