package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	environ := baseEnv()
	environ["LOG_LEVEL"] = "error"
	environ["PORT"] = "0"
	environ["AUTH_DATABASE_FILE"] = filepath.Join(t.TempDir(), "auth.db")
	environ["AUTH_PEPPER_FILE"] = filepath.Join(t.TempDir(), "pepper")

	cfg, err := LoadConfigFrom(environ)
	require.NoError(t, err)
	return cfg
}

func TestNew_ServesRoutes(t *testing.T) {
	app, err := New(t.Context(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	client := authsdk.NewSDKClient(srv.URL)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	require.NoError(t, client.Register(t.Context(), "alice", "alice@example.com", "correct-horse-battery-staple"))

	res, err := client.Login(t.Context(), "alice", "correct-horse-battery-staple")
	require.NoError(t, err)
	require.True(t, res.EmailConfirmationRequired)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNew_RejectsWeakSigningKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.SigningKey = "short"

	_, err := New(t.Context(), cfg)
	require.ErrorIs(t, err, service.ErrConfiguration)
}

func TestNew_SMTPRequiresSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifier = "smtp"

	_, err := New(t.Context(), cfg)
	require.ErrorIs(t, err, service.ErrConfiguration)
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := New(t.Context(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
