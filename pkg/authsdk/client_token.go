package authsdk

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a token pair and wraps it in a Session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	pair, err := c.LoginTokens(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, pair.AccessToken, pair.RefreshToken), nil
}

// LoginTokens calls POST /login and returns the raw token pair.
func (c *SDKClient) LoginTokens(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login", LoginRequest{Email: email, Password: password}, "")
	if err != nil {
		return nil, err
	}

	var pair LoginResponse
	if err := decodeJSON(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh calls POST /refresh_token and returns a new access token.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/refresh_token", RefreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return "", err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Logout calls POST /logout. Revoking an unknown or already revoked token
// succeeds.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/logout", LogoutRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return err
	}

	var msg string
	if err := decodeJSON(resp, &msg, http.StatusOK); err != nil {
		return err
	}
	if msg != LogoutMessage {
		return fmt.Errorf("authsdk: unexpected logout response %q", msg)
	}
	return nil
}
