package app

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/notify"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/caarlos0/env/v11"
	"github.com/pquerna/otp"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	// Token settings. All are required; the key is removed from the
	// environment once read.
	SigningKey       string `env:"AUTH_JWT_KEY,required,notEmpty,unset"`
	Issuer           string `env:"AUTH_JWT_ISSUER,required,notEmpty"`
	Audience         string `env:"AUTH_JWT_AUDIENCE,required,notEmpty"`
	AccessTTLMinutes int    `env:"AUTH_ACCESS_TTL_MINUTES,required"`
	RefreshTTLDays   int    `env:"AUTH_REFRESH_TTL_DAYS,required"`

	DatabaseDriver string `env:"AUTH_DATABASE_DRIVER" envDefault:"sqlite"` // sqlite or postgres
	DatabaseFile   string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	DatabaseURL    string `env:"AUTH_DATABASE_URL,unset"`
	PepperFile     string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`

	TwoFactor TwoFactorConfig `envPrefix:"AUTH_2FA_"`

	// Notifier is log or smtp. The log notifier never records the secret,
	// so outside development it needs out-of-band delivery.
	Notifier string            `env:"AUTH_NOTIFIER" envDefault:"log"`
	SMTP     notify.SMTPConfig `envPrefix:"SMTP_"`

	RateLimit RateLimitConfig `envPrefix:"RATELIMIT_"`

	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
	StartupRetries       uint64        `env:"STARTUP_RETRIES" envDefault:"5"`
}

type TwoFactorConfig struct {
	Dispatch    string        `env:"DISPATCH" envDefault:"login"`
	CodeTTL     time.Duration `env:"CODE_TTL" envDefault:"5m"`
	Digits      int           `env:"DIGITS" envDefault:"6"`
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"5"`
}

// RateLimitConfig overrides the built-in limiter profiles.
type RateLimitConfig struct {
	StrictRequests   int           `env:"STRICT_REQUESTS" envDefault:"5"`
	StrictWindow     time.Duration `env:"STRICT_WINDOW" envDefault:"1m"`
	StrictBurst      int           `env:"STRICT_BURST" envDefault:"5"`
	ModerateRequests int           `env:"MODERATE_REQUESTS" envDefault:"20"`
	ModerateWindow   time.Duration `env:"MODERATE_WINDOW" envDefault:"1m"`
	ModerateBurst    int           `env:"MODERATE_BURST" envDefault:"20"`
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

// LoadConfigFrom reads environ instead of the process environment.
func LoadConfigFrom(environ map[string]string) (Config, error) {
	return parseConfig(env.Options{Environment: environ})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("%w: %w", service.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules the env tags cannot express.
func (c Config) Validate() error {
	if c.AccessTTLMinutes <= 0 {
		return fmt.Errorf("%w: AUTH_ACCESS_TTL_MINUTES must be positive", service.ErrConfiguration)
	}
	if c.RefreshTTLDays <= 0 {
		return fmt.Errorf("%w: AUTH_REFRESH_TTL_DAYS must be positive", service.ErrConfiguration)
	}

	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: AUTH_DATABASE_URL is required for postgres", service.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", service.ErrConfiguration, c.DatabaseDriver)
	}

	switch c.Notifier {
	case "log", "smtp":
	default:
		return fmt.Errorf("%w: unknown notifier %q", service.ErrConfiguration, c.Notifier)
	}

	if c.HousekeepingInterval <= 0 {
		return fmt.Errorf("%w: HOUSEKEEPING_INTERVAL must be positive", service.ErrConfiguration)
	}

	return c.TwoFactorPolicy().Validate()
}

// Warnings lists settings that load but leave the service unusable for
// real users. They are logged at startup.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Notifier == "log" && c.Env != "dev" {
		warnings = append(warnings,
			"AUTH_NOTIFIER=log discards confirmation tokens and two-factor codes; accounts cannot be confirmed unless another channel delivers them")
	}
	return warnings
}

func (c Config) TokenConfig() service.TokenConfig {
	return service.TokenConfig{
		SigningKey: []byte(c.SigningKey),
		Issuer:     c.Issuer,
		Audience:   c.Audience,
		AccessTTL:  time.Duration(c.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(c.RefreshTTLDays) * 24 * time.Hour,
	}
}

func (c Config) TwoFactorPolicy() service.TwoFactorPolicy {
	return service.TwoFactorPolicy{
		Dispatch:    service.Dispatch(c.TwoFactor.Dispatch),
		CodeTTL:     c.TwoFactor.CodeTTL,
		Digits:      otp.Digits(c.TwoFactor.Digits),
		MaxAttempts: c.TwoFactor.MaxAttempts,
	}
}

// RateLimits maps the configured profiles onto route classes. Health and
// metrics routes keep the lenient default.
func (c Config) RateLimits() (credential, account, system httpx.RateLimitConfig) {
	credential = httpx.RateLimitConfig{
		RequestsPerWindow: c.RateLimit.StrictRequests,
		Window:            c.RateLimit.StrictWindow,
		Burst:             c.RateLimit.StrictBurst,
	}
	account = httpx.RateLimitConfig{
		RequestsPerWindow: c.RateLimit.ModerateRequests,
		Window:            c.RateLimit.ModerateWindow,
		Burst:             c.RateLimit.ModerateBurst,
	}
	return credential, account, httpx.LenientLimit
}
