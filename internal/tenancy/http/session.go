package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// Response bodies of the session endpoints. Clients match on these.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidRefresh     = "Invalid or revoked refresh token"
	msgRevokeFailed       = "Failed to revoke token"
	msgBadRequest         = "Invalid request body"
	msgInternal           = "Internal server error"
)

type SessionHandler struct {
	SessionService *service.SessionService
}

// HandleLogin serves POST /login.
//
//	@Summary		Log in
//	@Description	Checks email and password and issues an access token and a refresh token.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{string}	string	"Malformed body"
//	@Failure		401		{string}	string	"Invalid credentials"
//	@Failure		429		{string}	string	"Rate limit exceeded"
//	@Router			/login [post]
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	pair, err := h.SessionService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteText(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		slogx.FromContext(ctx).Error("login failed", "error", err)
		httpx.WriteText(w, http.StatusInternalServerError, msgInternal)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleRefresh serves POST /refresh_token.
//
//	@Summary		Refresh the access token
//	@Description	The refresh token is not rotated.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.RefreshResponse
//	@Failure		401		{string}	string	"Invalid, expired or revoked refresh token"
//	@Router			/refresh_token [post]
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	access, err := h.SessionService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			httpx.WriteText(w, http.StatusUnauthorized, msgInvalidRefresh)
			return
		}
		slogx.FromContext(ctx).Error("refresh failed", "error", err)
		httpx.WriteText(w, http.StatusInternalServerError, msgInternal)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{AccessToken: access})
}

// HandleLogout serves POST /logout. Both outcomes are JSON strings.
//
//	@Summary	Log out
//	@Tags		Session
//	@Accept		json
//	@Produce	json
//	@Param		request	body		authsdk.LogoutRequest	true	"Refresh token"
//	@Success	200		{string}	string	"Logged out successfully"
//	@Failure	500		{string}	string	"Revocation failed"
//	@Router		/logout [post]
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LogoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	if err := h.SessionService.Logout(ctx, req.RefreshToken); err != nil {
		slogx.FromContext(ctx).Error("logout failed", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, msgRevokeFailed)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutMessage)
}
