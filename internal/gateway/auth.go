package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nmorane/flowdeck/pkg/domain"
)

// Session is the authenticated state handed back by the password grant.
// It is serialized as-is to the session file.
type Session struct {
	AccessToken string         `json:"access_token"`
	User        domain.UserRef `json:"user"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// Expired reports whether the session's access token is past its exp claim.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// SetSession installs a previously saved session on the client.
func (c *Client) SetSession(s *Session) {
	c.session = s
}

// Session returns the installed session, or nil.
func (c *Client) Session() *Session {
	return c.session
}

// CurrentUser returns the signed-in user, or nil when there is no live
// session. An expired token counts as signed out.
func (c *Client) CurrentUser() *domain.UserRef {
	if c.session == nil || c.session.Expired() {
		return nil
	}
	u := c.session.User
	return &u
}

// SignInWithPassword performs the password grant and installs the
// resulting session on the client.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("gateway.SignInWithPassword: marshal: %w", err)
	}

	var resp struct {
		AccessToken string         `json:"access_token"`
		ExpiresIn   int            `json:"expires_in"`
		User        domain.UserRef `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", bytes.NewReader(payload), &resp); err != nil {
		return nil, fmt.Errorf("gateway.SignInWithPassword: %w", err)
	}

	s := &Session{
		AccessToken: resp.AccessToken,
		User:        resp.User,
		ExpiresAt:   tokenExpiry(resp.AccessToken),
	}
	if s.ExpiresAt.IsZero() && resp.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	c.session = s
	c.log.Info().Str("user", resp.User.Email).Msg("signed in")
	return s, nil
}

// SignOut revokes the session server-side (best effort) and clears it
// locally either way.
func (c *Client) SignOut(ctx context.Context) {
	if c.session != nil && c.session.AccessToken != "" {
		if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", nil, nil); err != nil {
			c.log.Warn().Err(err).Msg("sign-out request failed")
		}
	}
	c.session = nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client has no signing key, it only wants to know when to re-login.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
