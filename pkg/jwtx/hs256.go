package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256KeyLength is the smallest accepted shared secret, matching the
// 256-bit output of the HMAC.
const MinHS256KeyLength = 32

// HS256 signs and verifies tokens with a shared HMAC-SHA256 secret. Only
// tokens whose header names HS256 are ever accepted.
type HS256 struct {
	key      []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// HS256Option configures optional behaviour of an HS256 instance.
type HS256Option func(*HS256)

// WithLeeway allows small clock skew when validating exp/nbf.
func WithLeeway(d time.Duration) HS256Option {
	return func(h *HS256) { h.leeway = d }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) HS256Option {
	return func(h *HS256) { h.now = now }
}

// NewHS256 creates an HS256 signer/verifier bound to an issuer and audience.
func NewHS256(key []byte, issuer, audience string, opts ...HS256Option) (*HS256, error) {
	if len(key) < MinHS256KeyLength {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrWeakKey, MinHS256KeyLength, len(key))
	}
	if issuer == "" {
		return nil, fmt.Errorf("%w: issuer is required", ErrInvalidClaim)
	}
	if audience == "" {
		return nil, fmt.Errorf("%w: audience is required", ErrInvalidClaim)
	}

	h := &HS256{
		key:      append([]byte(nil), key...),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Alg returns the JWS algorithm name.
func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Issuer returns the configured "iss" value.
func (h *HS256) Issuer() string { return h.issuer }

// Audience returns the configured "aud" value.
func (h *HS256) Audience() string { return h.audience }

// Sign serialises claims into a compact HS256 JWS.
func (h *HS256) Sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(h.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify validates the signature, issuer, audience and lifetime of the token.
func (h *HS256) Verify(tokenStr string) (Claims, error) {
	claims, err := h.ValidateExpiredAllowed(tokenStr)
	if err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(h.now(), h.leeway); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// ValidateExpiredAllowed validates the signature, issuer and audience but
// ignores the token lifetime. It is only meant for identifying the account
// behind an access token that is being refreshed.
func (h *HS256) ValidateExpiredAllowed(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return h.key, nil
	})
	if err != nil {
		return Claims{}, classifyParseError(err)
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(h.audience); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidClaim)
	}
	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		// WithValidMethods reports a disallowed alg as a signature failure.
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
