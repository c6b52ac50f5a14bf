package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister godoc
//
//	@Summary		Register an account
//	@Description	Creates an unconfirmed account and emails a confirmation link.
//	@Description	Login is refused until the address is confirmed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Registration details"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		409		{object}	authsdk.APIError	"conflict"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}

// HandleConfirmEmail godoc
//
//	@Summary		Confirm an email address
//	@Description	Consumes the confirmation token sent at registration. A token confirms at most once.
//	@Tags			Auth
//	@Produce		json
//	@Param			email	query		string	true	"Registered email address"
//	@Param			token	query		string	true	"Confirmation token"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request or invalid_token"
//	@Router			/v1/auth/confirm-email [get].
func (h *AuthHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	token := r.URL.Query().Get("token")
	if email == "" || token == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ConfirmEmail(r.Context(), email, token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrNotFound) {
			authsdk.ErrInvalidConfirmation.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}

// HandleLogin godoc
//
//	@Summary		Log in with a password
//	@Description	Checks the password. Tokens are issued only when the email is confirmed
//	@Description	and two-factor authentication is off; otherwise the matching flag is set.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"invalid_credentials"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var resp authsdk.LoginResponse
	switch res := result.(type) {
	case domain.Authenticated:
		resp.TokenResponse = tokenResponse(res.Tokens)
	case domain.EmailConfirmationRequired:
		resp.EmailConfirmationRequired = true
	case domain.TwoFactorRequired:
		resp.TwoFactorRequired = true
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleVerifyTwoFactor godoc
//
//	@Summary		Verify a two-factor code
//	@Description	Completes a login that reported two_factor_required. A code mints tokens at most once.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyTwoFactorRequest	true	"Username and code"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"invalid_code"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/2fa/verify [post].
func (h *AuthHandler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyTwoFactorRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.AuthService.VerifyTwoFactor(r.Context(), req.Username, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRefresh godoc
//
//	@Summary		Rotate the refresh token
//	@Description	Exchanges an access token, which may be expired, and the current refresh
//	@Description	token for a new pair. The presented refresh token stops working.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Current token pair"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"invalid_token or invalid_credentials"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.AuthService.RefreshToken(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleEnableTwoFactor godoc
//
//	@Summary		Enable two-factor authentication
//	@Tags			Two-Factor
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.TwoFactorToggleRequest	true	"Account to update, must be the caller"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		401		{object}	authsdk.APIError	"invalid_token"
//	@Failure		403		{object}	authsdk.APIError	"forbidden"
//	@Failure		404		{object}	authsdk.APIError	"not_found"
//	@Router			/v1/auth/2fa/enable [post].
func (h *AuthHandler) HandleEnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.toggleTwoFactor(w, r, h.AuthService.EnableTwoFactor)
}

// HandleDisableTwoFactor godoc
//
//	@Summary		Disable two-factor authentication
//	@Description	Also discards any outstanding challenge.
//	@Tags			Two-Factor
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.TwoFactorToggleRequest	true	"Account to update, must be the caller"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		401		{object}	authsdk.APIError	"invalid_token"
//	@Failure		403		{object}	authsdk.APIError	"forbidden"
//	@Failure		404		{object}	authsdk.APIError	"not_found"
//	@Router			/v1/auth/2fa/disable [post].
func (h *AuthHandler) HandleDisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.toggleTwoFactor(w, r, h.AuthService.DisableTwoFactor)
}

func (h *AuthHandler) toggleTwoFactor(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, username string) error,
) {
	var req authsdk.TwoFactorToggleRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	// Callers may only change their own account.
	sub, ok := httpx.SubjectFromContext(r.Context())
	if !ok || sub != req.Username {
		authsdk.ErrForbidden.WriteError(w)
		return
	}

	if err := apply(r.Context(), req.Username); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}

// HandleLogout godoc
//
//	@Summary		End the refresh session
//	@Description	The outstanding refresh token stops working. Access tokens stay valid until they expire.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	authsdk.APIError	"invalid_token"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sub, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), sub); err != nil {
		// The account behind a still-valid token may have been renamed.
		if errors.Is(err, service.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func tokenResponse(p domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int(p.ExpiresIn.Seconds()),
	}
}
