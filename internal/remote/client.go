// internal/remote/client.go
//
// Backoffice – REST adapter for the upstream CRUD service.
//
// Context
// -------
// The upstream service exposes one resource per record kind:
//
//	GET    /users            GET    /posts
//	POST   /users            POST   /posts
//	PUT    /users/{id}       PUT    /posts/{id}
//	DELETE /users/{id}       DELETE /posts/{id}
//	                         POST   /posts/{id}/publish|archive|restore
//
// Bodies are record-shaped JSON.  This client implements entity.Service on
// top of that surface with a hardened http.Client: an overall request
// timeout plus context propagation, no retries (a failed mutation must
// surface, never silently repeat).
//
// Error mapping
// -------------
// Non-2xx responses become *entity.RemoteError.  The message is extracted
// in order of preference: a JSON body's "message" field, the plain body
// text, then a generic "unknown error" substitute.  404 additionally maps
// to *entity.NotFoundError so the manager's taxonomy stays precise.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanizio/backoffice/internal/entity"
	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/workflow"
)

// compile-time assertion
var _ entity.Service = (*Client)(nil)

// DefaultTimeout caps one upstream round trip when the caller does not
// override it.
const DefaultTimeout = 10 * time.Second

// Client talks JSON to the upstream CRUD service.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string // optional bearer token, resolved from config
}

// Option tunes a Client at construction time.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithToken attaches a bearer token to every request.
func WithToken(tok string) Option {
	return func(c *Client) { c.token = tok }
}

// WithHTTPClient substitutes the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: bad base URL %q: %w", baseURL, err)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resource maps a kind to its collection path segment.
func resource(kind record.Kind) string {
	if kind == record.KindUser {
		return "users"
	}
	return "posts"
}

//
// entity.Service implementation
//

// GetAll fetches the full collection in server order.
func (c *Client) GetAll(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	body, err := c.do(ctx, http.MethodGet, c.path(resource(kind)), nil, kind, 0)
	if err != nil {
		return nil, err
	}
	return decodeList(kind, body)
}

// Create posts the field map and returns the created record.
func (c *Client) Create(ctx context.Context, kind record.Kind, fields map[string]string) (record.Record, error) {
	body, err := c.do(ctx, http.MethodPost, c.path(resource(kind)), fields, kind, 0)
	if err != nil {
		return nil, err
	}
	return decodeOne(kind, body)
}

// Update puts the partial field map against an existing id.
func (c *Client) Update(ctx context.Context, kind record.Kind, id int, fields map[string]string) (record.Record, error) {
	body, err := c.do(ctx, http.MethodPut, c.path(resource(kind), id), fields, kind, id)
	if err != nil {
		return nil, err
	}
	return decodeOne(kind, body)
}

// Delete removes a record permanently.
func (c *Client) Delete(ctx context.Context, kind record.Kind, id int) error {
	_, err := c.do(ctx, http.MethodDelete, c.path(resource(kind), id), nil, kind, id)
	return err
}

// Transition hits the action sub-resource of a post.
func (c *Client) Transition(ctx context.Context, id int, action workflow.Action) error {
	p := fmt.Sprintf("%s/%d/%s", c.path("posts"), id, action)
	_, err := c.do(ctx, http.MethodPost, p, nil, record.KindPost, id)
	return err
}

//
// Transport plumbing
//

func (c *Client) path(res string, id ...int) string {
	p := strings.TrimRight(c.base.String(), "/") + "/" + res
	if len(id) == 1 {
		p = fmt.Sprintf("%s/%d", p, id[0])
	}
	return p
}

// do runs one request and returns the raw body for 2xx responses.  The
// kind and id feed the 404 mapping; id 0 means no specific record.
func (c *Client) do(ctx context.Context, method, rawURL string, payload any, kind record.Kind, id int) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &entity.RemoteError{Message: entity.ErrorMessage(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entity.RemoteError{Message: entity.ErrorMessage(err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	if resp.StatusCode == http.StatusNotFound && id != 0 {
		return nil, &entity.NotFoundError{Kind: kind, ID: id}
	}
	return nil, &entity.RemoteError{Message: errorMessage(body), Status: resp.StatusCode}
}

// errorMessage applies the extraction ladder to an error response body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "unknown error"
}

//
// Decoding
//

func decodeList(kind record.Kind, body []byte) ([]record.Record, error) {
	if kind == record.KindUser {
		var users []record.User
		if err := json.Unmarshal(body, &users); err != nil {
			return nil, &entity.RemoteError{Message: "malformed user collection: " + err.Error()}
		}
		out := make([]record.Record, len(users))
		for i, u := range users {
			out[i] = u
		}
		return out, nil
	}
	var posts []record.Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, &entity.RemoteError{Message: "malformed post collection: " + err.Error()}
	}
	out := make([]record.Record, len(posts))
	for i, p := range posts {
		out[i] = p
	}
	return out, nil
}

func decodeOne(kind record.Kind, body []byte) (record.Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil // some upstreams answer 204 to writes
	}
	if kind == record.KindUser {
		var u record.User
		if err := json.Unmarshal(body, &u); err != nil {
			return nil, &entity.RemoteError{Message: "malformed user record: " + err.Error()}
		}
		return u, nil
	}
	var p record.Post
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &entity.RemoteError{Message: "malformed post record: " + err.Error()}
	}
	return p, nil
}
