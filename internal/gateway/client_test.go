package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "anon-key", 5*time.Second, zerolog.Nop())
}

func TestQueryEncodesFiltersOrderAndLimit(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`[{"id":"1"},{"id":"2"}]`))
	})

	rows, err := c.Query(context.Background(), "boards", QueryOptions{
		Filters: []Filter{
			Eq("workspace_id", "ws-1"),
			Eq("is_deleted", "false"),
		},
		Order: []Order{
			{Column: "is_favorite", Desc: true},
			{Column: "created_at", Desc: true},
		},
		Limit: 50,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	require.NotNil(t, got)
	assert.Equal(t, "/rest/v1/boards", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "*", q.Get("select"))
	assert.Equal(t, "eq.ws-1", q.Get("workspace_id"))
	assert.Equal(t, "eq.false", q.Get("is_deleted"))
	assert.Equal(t, "is_favorite.desc,created_at.desc", q.Get("order"))
	assert.Equal(t, "50", q.Get("limit"))
}

func TestQuerySendsAnonAuthWithoutSession(t *testing.T) {
	var apikey, auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		apikey = r.Header.Get("apikey")
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})

	_, err := c.Query(context.Background(), "audiences", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "anon-key", apikey)
	assert.Equal(t, "Bearer anon-key", auth)
}

func TestQueryUsesSessionToken(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})
	c.SetSession(&Session{AccessToken: "user-token"})

	_, err := c.Query(context.Background(), "audiences", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer user-token", auth)
}

func TestQuerySurfacesAPIErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"permission denied"}`))
	})

	_, err := c.Query(context.Background(), "audiences", QueryOptions{})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusForbidden))
	assert.Contains(t, err.Error(), "permission denied")
}

func TestCountOnlyParsesContentRange(t *testing.T) {
	var method, prefer string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		prefer = r.Header.Get("Prefer")
		w.Header().Set("Content-Range", "*/57")
		w.WriteHeader(http.StatusOK)
	})

	n, err := c.CountOnly(context.Background(), "storage_assets", []Filter{
		Eq("board_id", "b-1"),
		IsNull("archived_at"),
	})
	require.NoError(t, err)
	assert.Equal(t, 57, n)
	assert.Equal(t, http.MethodHead, method)
	assert.Equal(t, "count=exact", prefer)
}

func TestCountOnlyMissingContentRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.CountOnly(context.Background(), "storage_assets", nil)
	assert.Error(t, err)
}

func TestMaybeGetByIDReturnsNilWhenAbsent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.missing", r.URL.Query().Get("id"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`[]`))
	})

	row, err := c.MaybeGetByID(context.Background(), "audiences", "missing")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestGetByIDNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := c.GetByID(context.Background(), "audiences", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByIDReturnsRow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"a-1","name":"Founders"}]`))
	})

	row, err := c.GetByID(context.Background(), "audiences", "a-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a-1","name":"Founders"}`, string(row))
}

func TestInFilterEncoding(t *testing.T) {
	var pred string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		pred = r.URL.Query().Get("section_id")
		w.Write([]byte(`[]`))
	})

	_, err := c.Query(context.Background(), "section_variants", QueryOptions{
		Filters: []Filter{In("section_id", []string{"s1", "s2", "s3"})},
	})
	require.NoError(t, err)
	assert.Equal(t, "in.(s1,s2,s3)", pred)
}
