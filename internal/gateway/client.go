// Package gateway is the client side of the hosted data store: scoped
// row queries, count-only queries, password auth, and binary asset
// download. It owns no schema and no query semantics beyond equality
// filtering and single-key ordering.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the hosted backend's REST surface.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	session    *Session
	log        zerolog.Logger
}

// New creates a backend client. The anon key authenticates unauthenticated
// requests; row access still requires a signed-in session for most
// collections.
func New(baseURL, anonKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// QueryOptions shape a single collection query.
type QueryOptions struct {
	Select  string // column list; empty means "*"
	Filters []Filter
	Order   []Order
	Limit   int
}

func (o QueryOptions) encode() string {
	params := url.Values{}
	sel := o.Select
	if sel == "" {
		sel = "*"
	}
	params.Set("select", sel)
	for _, f := range o.Filters {
		params.Add(f.Column, f.pred)
	}
	if len(o.Order) > 0 {
		keys := make([]string, len(o.Order))
		for i, ord := range o.Order {
			keys[i] = ord.encode()
		}
		params.Set("order", strings.Join(keys, ","))
	}
	if o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	return params.Encode()
}

// Query fetches rows from collection. Rows come back raw; callers decode
// into their own types.
func (c *Client) Query(ctx context.Context, collection string, opts QueryOptions) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	path := "/rest/v1/" + url.PathEscape(collection) + "?" + opts.encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fmt.Errorf("gateway.Query %s: %w", collection, err)
	}
	return rows, nil
}

// CountOnly returns the number of rows matching filters without
// transferring any row payload.
func (c *Client) CountOnly(ctx context.Context, collection string, filters []Filter) (int, error) {
	opts := QueryOptions{Filters: filters}
	path := "/rest/v1/" + url.PathEscape(collection) + "?" + opts.encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("gateway.CountOnly %s: %w", collection, err)
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gateway.CountOnly %s: %w", collection, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("gateway.CountOnly %s: %w", collection,
			&APIError{StatusCode: resp.StatusCode, Message: resp.Status})
	}

	// Content-Range is "0-24/57" or "*/57"; the count follows the slash.
	cr := resp.Header.Get("Content-Range")
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("gateway.CountOnly %s: missing Content-Range", collection)
	}
	n, err := strconv.Atoi(cr[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("gateway.CountOnly %s: parse Content-Range %q: %w", collection, cr, err)
	}
	return n, nil
}

// MaybeGetByID fetches a single row by id, returning nil when absent.
func (c *Client) MaybeGetByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	rows, err := c.Query(ctx, collection, QueryOptions{
		Filters: []Filter{Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetByID fetches a single row by id; it returns ErrNotFound when absent.
func (c *Client) GetByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	row, err := c.MaybeGetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("gateway.GetByID %s %s: %w", collection, id, ErrNotFound)
	}
	return row, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	if c.session != nil && c.session.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Msg     string `json:"msg"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Msg != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Msg}
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
