package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/accounts/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits groups the limiter profiles applied per route class.
type RateLimits struct {
	// Credential applies per IP to routes that accept passwords, codes or tokens.
	Credential httpx.RateLimitConfig
	// Account applies per subject to bearer-authenticated routes.
	Account httpx.RateLimitConfig
	// System applies per IP to health and metrics routes.
	System httpx.RateLimitConfig
}

// DefaultRateLimits returns the built-in limiter profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Credential: httpx.StrictLimit,
		Account:    httpx.ModerateLimit,
		System:     httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	gatherer     prometheus.Gatherer

	store          store.Store
	AuthService    *service.AuthService
	ProfileService *service.ProfileService

	// Limits must be set before ApplyRoutes.
	Limits RateLimits
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		gatherer:     gatherer,
		logger:       logger,
		Limits:       DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerProfile()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Authentication Service API
//	@version		0.1.0
//	@description	Account registration, email confirmation, password login with optional
//	@description	two-factor codes, and rotating refresh sessions.
//	@description
//	@description				Access tokens are HS256 JWTs. Refresh tokens are opaque and single use.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential routes are limited per IP to slow down guessing.
	credential := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(r.Limits.Credential))
	}

	r.Mux.Handle("POST /v1/auth/register", credential(h.HandleRegister))
	r.Mux.Handle("POST /v1/auth/login", credential(h.HandleLogin))
	r.Mux.Handle("GET /v1/auth/confirm-email", credential(h.HandleConfirmEmail))
	r.Mux.Handle("POST /v1/auth/refresh", credential(h.HandleRefresh))

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.Limits.Account),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Code guessing is bounded per challenge as well, see TwoFactorPolicy.MaxAttempts.
	r.Mux.Handle("POST /v1/auth/2fa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyTwoFactor),
			httpx.RateLimitByIP(r.Limits.Credential),
		),
	)

	r.Mux.Handle("POST /v1/auth/2fa/enable",
		httpx.Chain(http.HandlerFunc(h.HandleEnableTwoFactor),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.Limits.Account),
		),
	)
	r.Mux.Handle("POST /v1/auth/2fa/disable",
		httpx.Chain(http.HandlerFunc(h.HandleDisableTwoFactor),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.Limits.Account),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.Limits.Account),
		),
	)
	r.Mux.Handle("PUT /v1/profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.Limits.Account),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.System),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.Limits.System),
		),
	)

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}),
				httpx.RateLimitByIP(r.Limits.System),
			),
		)
	}
}
