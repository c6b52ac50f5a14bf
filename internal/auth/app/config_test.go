package app

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/pquerna/otp"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"AUTH_JWT_KEY":            "0123456789abcdef0123456789abcdef",
		"AUTH_JWT_ISSUER":         "accounts",
		"AUTH_JWT_AUDIENCE":       "accounts-api",
		"AUTH_ACCESS_TTL_MINUTES": "15",
		"AUTH_REFRESH_TTL_DAYS":   "7",
	}
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, "log", cfg.Notifier)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)

	tokens := cfg.TokenConfig()
	require.Equal(t, 15*time.Minute, tokens.AccessTTL)
	require.Equal(t, 7*24*time.Hour, tokens.RefreshTTL)
	require.Equal(t, "accounts", tokens.Issuer)
	require.Equal(t, "accounts-api", tokens.Audience)

	require.Equal(t, service.DefaultTwoFactorPolicy(), cfg.TwoFactorPolicy())

	credential, account, _ := cfg.RateLimits()
	require.Equal(t, 5, credential.RequestsPerWindow)
	require.Equal(t, 20, account.RequestsPerWindow)
}

func TestLoadConfigFrom_MissingRequired(t *testing.T) {
	for _, key := range []string{
		"AUTH_JWT_KEY",
		"AUTH_JWT_ISSUER",
		"AUTH_JWT_AUDIENCE",
		"AUTH_ACCESS_TTL_MINUTES",
		"AUTH_REFRESH_TTL_DAYS",
	} {
		t.Run(key, func(t *testing.T) {
			environ := baseEnv()
			delete(environ, key)

			_, err := LoadConfigFrom(environ)
			require.ErrorIs(t, err, service.ErrConfiguration)
		})
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
	}{
		{"zero access ttl", map[string]string{"AUTH_ACCESS_TTL_MINUTES": "0"}},
		{"negative refresh ttl", map[string]string{"AUTH_REFRESH_TTL_DAYS": "-1"}},
		{"unparsable ttl", map[string]string{"AUTH_ACCESS_TTL_MINUTES": "soon"}},
		{"unknown driver", map[string]string{"AUTH_DATABASE_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"AUTH_DATABASE_DRIVER": "postgres"}},
		{"unknown notifier", map[string]string{"AUTH_NOTIFIER": "pigeon"}},
		{"unknown dispatch", map[string]string{"AUTH_2FA_DISPATCH": "sms"}},
		{"seven digits", map[string]string{"AUTH_2FA_DIGITS": "7"}},
		{"empty issuer", map[string]string{"AUTH_JWT_ISSUER": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := baseEnv()
			for k, v := range tt.set {
				environ[k] = v
			}

			_, err := LoadConfigFrom(environ)
			require.ErrorIs(t, err, service.ErrConfiguration)
		})
	}
}

func TestLoadConfigFrom_Overrides(t *testing.T) {
	environ := baseEnv()
	environ["AUTH_DATABASE_DRIVER"] = "postgres"
	environ["AUTH_DATABASE_URL"] = "postgres://accounts@localhost/accounts"
	environ["AUTH_2FA_DISPATCH"] = "external"
	environ["AUTH_2FA_DIGITS"] = "8"
	environ["AUTH_2FA_CODE_TTL"] = "2m"
	environ["AUTH_NOTIFIER"] = "smtp"
	environ["SMTP_HOST"] = "mail.example.com"
	environ["SMTP_FROM"] = "noreply@example.com"
	environ["RATELIMIT_STRICT_REQUESTS"] = "1000"

	cfg, err := LoadConfigFrom(environ)
	require.NoError(t, err)

	policy := cfg.TwoFactorPolicy()
	require.Equal(t, service.DispatchExternal, policy.Dispatch)
	require.Equal(t, otp.DigitsEight, policy.Digits)
	require.Equal(t, 2*time.Minute, policy.CodeTTL)

	require.Equal(t, "mail.example.com", cfg.SMTP.Host)
	require.Equal(t, 587, cfg.SMTP.Port)

	credential, _, _ := cfg.RateLimits()
	require.Equal(t, 1000, credential.RequestsPerWindow)
}

func TestConfig_Warnings(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		count int
	}{
		{"dev with log notifier", map[string]string{}, 0},
		{"prod with log notifier", map[string]string{"ENV": "prod"}, 1},
		{"prod with smtp", map[string]string{"ENV": "prod", "AUTH_NOTIFIER": "smtp"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := baseEnv()
			for k, v := range tt.env {
				environ[k] = v
			}

			cfg, err := LoadConfigFrom(environ)
			require.NoError(t, err)

			warnings := cfg.Warnings()
			require.Len(t, warnings, tt.count)
			if tt.count > 0 {
				require.Contains(t, warnings[0], "AUTH_NOTIFIER=log")
			}
		})
	}
}
