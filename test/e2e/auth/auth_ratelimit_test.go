//go:build integration

package auth_test

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies that /v1/auth/login is rate limited.
// Credential endpoints have strict limits (5 req/min) to slow password guessing.
func TestRateLimitLoginEndpoint(t *testing.T) {
	svc := setupAuthServiceWithDefaultRateLimits(t)
	ctx := t.Context()

	var lastErr error
	for i := range 6 {
		_, err := svc.client.Login(ctx, "wronguser", "wrongpass")
		if i < 5 {
			require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "request %d should not be rate limited yet", i+1)
		} else {
			lastErr = err
		}
	}

	require.ErrorIs(t, lastErr, authsdk.ErrRateLimited, "should be rate limited after 5 requests")
}

// TestRateLimitVerifyEndpoint verifies that code guessing shares the strict limit.
func TestRateLimitVerifyEndpoint(t *testing.T) {
	svc := setupAuthServiceWithDefaultRateLimits(t)
	ctx := t.Context()

	var lastErr error
	for range 6 {
		_, lastErr = svc.client.VerifyTwoFactor(ctx, "nobody", "123456")
		require.Error(t, lastErr)
	}
	require.ErrorIs(t, lastErr, authsdk.ErrRateLimited)
}

// TestRateLimitHealthEndpoints verifies health check endpoints have lenient limits.
// Monitoring systems poll these frequently, so they need higher limits.
func TestRateLimitHealthEndpoints(t *testing.T) {
	svc := setupAuthServiceWithDefaultRateLimits(t)

	for i := range 30 {
		health, err := svc.client.GetLiveness(t.Context())
		require.NoError(t, err, "Liveness request %d should not be rate limited", i+1)
		require.Equal(t, "ok", health.Status)

		health, err = svc.client.GetReadiness(t.Context())
		require.NoError(t, err, "Readiness request %d should not be rate limited", i+1)
		require.Equal(t, "ok", health.Status)
	}
}

// TestRateLimitHeadersPresent verifies that a rate limit response carries
// the retry and limit headers.
func TestRateLimitHeadersPresent(t *testing.T) {
	svc := setupAuthServiceWithDefaultRateLimits(t)
	body := []byte(`{"username":"wronguser","password":"wrongpass"}`)

	send := func() *http.Response {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, svc.url+"/v1/auth/login", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	for range 5 {
		resp := send()
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	resp := send()
	defer resp.Body.Close()

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	require.Equal(t, "5", resp.Header.Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", resp.Header.Get("X-RateLimit-Window"))
}
