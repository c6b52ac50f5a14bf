package authsdk

// ============================================================================
// Request Types
// ============================================================================

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=254" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=8,max=1024" example:"correct-horse-battery-staple"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required,max=1024" example:"correct-horse-battery-staple"`
}

// RefreshRequest is the body of POST /v1/auth/refresh. The access token may
// already be expired.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// VerifyTwoFactorRequest is the body of POST /v1/auth/2fa/verify.
type VerifyTwoFactorRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Code     string `json:"code" validate:"required,numeric,max=10" example:"123456"`
}

// TwoFactorToggleRequest is the body of the 2fa enable and disable routes.
type TwoFactorToggleRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
}

// UpdateProfileRequest is the body of PUT /v1/profile.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,max=64" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=254" example:"alice@example.com"`
}

// ============================================================================
// Response Types
// ============================================================================

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	// AccessToken is the HS256 JWT used as the bearer token
	AccessToken string `json:"access_token,omitempty"`

	// RefreshToken is the opaque single-use refresh token
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type,omitempty" example:"Bearer"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in,omitempty" example:"900"`
}

// LoginResponse is returned by a login whose credentials were accepted. The
// token fields are omitted unless both flags are false.
type LoginResponse struct {
	TokenResponse

	// TwoFactorRequired means a code must be verified before tokens are issued
	TwoFactorRequired bool `json:"two_factor_required"`

	// EmailConfirmationRequired means the address has not been confirmed yet
	EmailConfirmationRequired bool `json:"email_confirmation_required"`
}

// Authenticated reports whether the login completed and carries tokens.
func (r *LoginResponse) Authenticated() bool {
	return !r.TwoFactorRequired && !r.EmailConfirmationRequired && r.AccessToken != ""
}

// Profile is the self-service view of an account.
type Profile struct {
	ID               int64  `json:"id" example:"1"`
	Username         string `json:"username" example:"alice"`
	Email            string `json:"email" example:"alice@example.com"`
	EmailConfirmed   bool   `json:"email_confirmed"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

// StatusResponse is the body of simple successful mutations.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`
}
