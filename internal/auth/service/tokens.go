package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// TokenType is the token_type reported with every issued pair.
const TokenType = "Bearer"

// TokenConfig is the immutable token configuration loaded at startup.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenIssuer creates HS256 access tokens and opaque refresh tokens.
type TokenIssuer struct {
	hs         *jwtx.HS256
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer validates cfg. Every failure wraps ErrConfiguration.
func NewTokenIssuer(cfg TokenConfig, opts ...jwtx.HS256Option) (*TokenIssuer, error) {
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("%w: access token ttl must be positive", ErrConfiguration)
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: refresh token ttl must be positive", ErrConfiguration)
	}

	hs, err := jwtx.NewHS256(cfg.SigningKey, cfg.Issuer, cfg.Audience, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return &TokenIssuer{hs: hs, accessTTL: cfg.AccessTTL, refreshTTL: cfg.RefreshTTL}, nil
}

// AccessTTL is the lifetime of issued access tokens.
func (t *TokenIssuer) AccessTTL() time.Duration { return t.accessTTL }

// IssueAccessToken signs an access token for a at now.
func (t *TokenIssuer) IssueAccessToken(a domain.Account, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(a.Username, a.ID, t.accessTTL, t.hs.Issuer(), t.hs.Audience(), now)
	return t.hs.Sign(claims)
}

// IssueRefreshToken returns a new opaque refresh token and the session that
// stores its fingerprint.
func (t *TokenIssuer) IssueRefreshToken(now time.Time) (string, domain.RefreshSession, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.RefreshSession{}, err
	}
	return raw, domain.RefreshSession{
		TokenHash: cryptox.FingerprintToken(raw),
		ExpiresAt: now.Add(t.refreshTTL).UTC(),
	}, nil
}

// Verify fully validates an access token, including its lifetime.
func (t *TokenIssuer) Verify(token string) (jwtx.Claims, error) {
	return t.hs.Verify(token)
}

// ValidateExpiredAllowed validates everything but the lifetime of token.
func (t *TokenIssuer) ValidateExpiredAllowed(token string) (jwtx.Claims, error) {
	return t.hs.ValidateExpiredAllowed(token)
}
