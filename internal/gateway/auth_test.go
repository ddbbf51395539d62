package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsignedJWT builds a syntactically valid token with the given exp claim.
// The client never verifies signatures, so "sig" is fine.
func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]any{"exp": exp.Unix()})
	return fmt.Sprintf("%s.%s.sig", header, claims)
}

func TestSignInWithPasswordInstallsSession(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := unsignedJWT(t, exp)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.co", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"expires_in":   3600,
			"user":         map[string]string{"email": "a@b.co"},
		})
	})

	s, err := c.SignInWithPassword(context.Background(), "a@b.co", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, token, s.AccessToken)
	assert.Equal(t, "a@b.co", s.User.Email)
	assert.Equal(t, exp.Unix(), s.ExpiresAt.Unix(), "expiry comes from the exp claim")
	require.NotNil(t, c.CurrentUser())
}

func TestSignInFallsBackToExpiresIn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "not-a-jwt",
			"expires_in":   60,
		})
	})

	s, err := c.SignInWithPassword(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), s.ExpiresAt, 5*time.Second)
}

func TestSignInBadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"msg":"Invalid login credentials"}`))
	})

	_, err := c.SignInWithPassword(context.Background(), "a@b.co", "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Nil(t, c.CurrentUser())
}

func TestExpiredSessionCountsAsSignedOut(t *testing.T) {
	c := New("http://unused", "anon", time.Second, zerolog.Nop())
	c.SetSession(&Session{
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(-time.Minute),
	})
	assert.Nil(t, c.CurrentUser())
}

func TestSignOutClearsSessionEvenOnServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.SetSession(&Session{AccessToken: "tok"})

	c.SignOut(context.Background())
	assert.Nil(t, c.Session())
}
