package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
}

// HandleGet godoc
//
//	@Summary		Get the caller's profile
//	@Tags			Profile
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.Profile
//	@Failure		401	{object}	authsdk.APIError	"invalid_token"
//	@Failure		404	{object}	authsdk.APIError	"not_found"
//	@Router			/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sub, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	p, err := h.ProfileService.GetProfile(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileResponse(p))
}

// HandleUpdate godoc
//
//	@Summary		Update the caller's username and email
//	@Description	Renaming ends the current refresh session; log in again afterwards.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"New username and email"
//	@Success		200		{object}	authsdk.Profile
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"invalid_token"
//	@Failure		404		{object}	authsdk.APIError	"not_found"
//	@Failure		409		{object}	authsdk.APIError	"conflict"
//	@Router			/v1/profile [put].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sub, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p, err := h.ProfileService.UpdateProfile(r.Context(), sub, req.Username, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileResponse(p))
}

func profileResponse(p domain.Profile) authsdk.Profile {
	return authsdk.Profile{
		ID:               p.ID,
		Username:         p.Username,
		Email:            p.Email,
		EmailConfirmed:   p.EmailConfirmed,
		TwoFactorEnabled: p.TwoFactorEnabled,
	}
}
