package authsdk

import (
	"context"
	"net/http"
)

// EnableTwoFactor turns two-factor on for username, which must be the
// session's own account.
func (s *Session) EnableTwoFactor(ctx context.Context, username string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/2fa/enable", TwoFactorToggleRequest{Username: username})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// DisableTwoFactor turns two-factor off for username, which must be the
// session's own account.
func (s *Session) DisableTwoFactor(ctx context.Context, username string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/2fa/disable", TwoFactorToggleRequest{Username: username})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// Logout ends the session server-side. The session cannot be refreshed afterwards.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// GetProfile fetches the session's own profile.
func (s *Session) GetProfile(ctx context.Context) (*Profile, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/profile", nil)
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := decodeJSON(resp, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile changes the username and email of the session's account.
// Changing the username ends the refresh session, so log in again afterwards.
func (s *Session) UpdateProfile(ctx context.Context, username, email string) (*Profile, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/profile", UpdateProfileRequest{Username: username, Email: email})
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := decodeJSON(resp, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}
