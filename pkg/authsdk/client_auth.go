package authsdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Register creates an account. The confirmation link is delivered by email.
func (c *SDKClient) Register(ctx context.Context, username, email, password string) error {
	resp, err := c.postJSON(ctx, "/v1/auth/register", RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// ConfirmEmail follows the confirmation link for email and token.
func (c *SDKClient) ConfirmEmail(ctx context.Context, email, token string) error {
	q := url.Values{"email": {email}, "token": {token}}
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/auth/confirm-email?"+q.Encode(), nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// Login checks username and password. Inspect the flags of the response to
// learn whether tokens were issued.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/login", LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrLoginIncomplete is returned by LoginSession when the login needs email
// confirmation or a second factor.
var ErrLoginIncomplete = errors.New("authsdk: login did not issue tokens")

// LoginSession logs in and wraps the tokens in a Session. The LoginResponse
// is returned alongside ErrLoginIncomplete so callers can tell which step
// is missing.
func (c *SDKClient) LoginSession(ctx context.Context, username, password string) (*Session, *LoginResponse, error) {
	res, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}
	if !res.Authenticated() {
		return nil, res, ErrLoginIncomplete
	}
	return newSession(c, &res.TokenResponse), res, nil
}

// VerifyTwoFactor exchanges a two-factor code for a token pair.
func (c *SDKClient) VerifyTwoFactor(ctx context.Context, username, code string) (*TokenResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/2fa/verify", VerifyTwoFactorRequest{Username: username, Code: code})
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a token pair for a new one. On success the presented
// refresh token is no longer valid.
func (c *SDKClient) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/refresh", RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
