package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xelth-com/ecktms/internal/models"
)

const maxResponseBytes = 16 << 20

// NewHTTPClient creates an IPv4-only HTTP client for the REST service
func NewHTTPClient(timeout time.Duration) *http.Client {
	ipv4Dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return ipv4Dialer.DialContext(ctx, "tcp4", addr)
			},
			MaxIdleConns:    100,
			IdleConnTimeout: 90 * time.Second,
		},
	}
}

// Client talks to the REST service. It keeps no state between calls,
// issues exactly one request per call and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	token      func() (string, error)
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default IPv4 client (tests use httptest clients)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader adds a static header to every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.headers[key] = value
		}
	}
}

// WithTokenSource sends "Authorization: Bearer <token>" on every request
func WithTokenSource(token func() (string, error)) Option {
	return func(c *Client) { c.token = token }
}

// NewClient creates a client for the service rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: NewHTTPClient(timeout),
		headers:    map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the uniform response shape of the REST service
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// List fetches every entity of a collection
func (c *Client) List(ctx context.Context, collection string) ([]models.Entity, error) {
	method, target := http.MethodGet, c.collectionURL(collection)

	data, err := c.do(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	// "data":null is an empty list, a missing field is not
	if data == nil {
		return nil, &TransportError{Method: method, URL: target, Err: errors.New("malformed response: no data field")}
	}

	entities, err := models.DecodeEntities(data)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	return entities, nil
}

// Create stores a new entity and returns the server version (with its id)
func (c *Client) Create(ctx context.Context, collection string, entity models.Entity) (models.Entity, error) {
	method, target := http.MethodPost, c.collectionURL(collection)

	data, err := c.do(ctx, method, target, entity.Payload())
	if err != nil {
		return nil, err
	}
	if isEmptyJSON(data) {
		return nil, &TransportError{Method: method, URL: target, Err: errors.New("response carried no entity")}
	}

	saved, err := models.DecodeEntity(data)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	// Without an id the record would be pushed again on every auto-sync
	if !saved.HasID() {
		return nil, &TransportError{Method: method, URL: target, Err: errors.New("response entity has no id")}
	}
	return saved, nil
}

// Update replaces an existing entity and returns the server version
func (c *Client) Update(ctx context.Context, collection string, id int64, entity models.Entity) (models.Entity, error) {
	method, target := http.MethodPut, c.entityURL(collection, id)

	payload := entity.Payload()
	data, err := c.do(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}
	if isEmptyJSON(data) {
		// Some endpoints acknowledge updates without echoing the record
		payload.SetID(id)
		return payload, nil
	}

	saved, err := models.DecodeEntity(data)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	return saved, nil
}

// DeleteByID removes an entity on the server
func (c *Client) DeleteByID(ctx context.Context, collection string, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, c.entityURL(collection, id), nil)
	return err
}

func (c *Client) collectionURL(collection string) string {
	return c.baseURL + "/api/" + url.PathEscape(collection)
}

func (c *Client) entityURL(collection string, id int64) string {
	return c.collectionURL(collection) + "/" + strconv.FormatInt(id, 10)
}

// do sends one request and unwraps the envelope into its data field
func (c *Client) do(ctx context.Context, method, target string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.token != nil {
		token, err := c.token()
		if err != nil {
			return nil, &TransportError{Method: method, URL: target, Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", snippet(raw)),
		}
	}

	// DELETE and some PUT endpoints answer 204 / empty body
	if len(bytes.TrimSpace(raw)) == 0 && method != http.MethodGet {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("malformed response: %w", err),
		}
	}

	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "request rejected"
		}
		return nil, &RejectedError{Message: msg}
	}

	return env.Data, nil
}

func isEmptyJSON(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func snippet(raw []byte) string {
	const max = 200
	s := string(bytes.TrimSpace(raw))
	if len(s) > max {
		return s[:max] + "..."
	}
	if s == "" {
		return "<empty body>"
	}
	return s
}
