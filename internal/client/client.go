// Package client is a typed client for the listing API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/recyclehub/internal/model"
)

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// Client talks to a recyclehub server.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.Token = token }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, out)
}

// ListItems calls GET /api/items.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	var out []model.Item
	err := c.doJSON(ctx, http.MethodGet, "/api/items", nil, &out)
	return out, err
}

// GetItem calls GET /api/items/{id}.
func (c *Client) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var out model.Item
	if err := c.doJSON(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateItem calls POST /api/items with a JSON body.
func (c *Client) CreateItem(ctx context.Context, fields model.ItemFields) (*model.Item, error) {
	var out model.Item
	if err := c.doJSON(ctx, http.MethodPost, "/api/items", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateItemWithImage calls POST /api/items as a multipart form carrying
// the image under filename.
func (c *Client) CreateItemWithImage(ctx context.Context, fields model.ItemFields, filename string, image io.Reader) (*model.Item, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range [][2]string{
		{"name", fields.Name},
		{"description", fields.Description},
		{"category", fields.Category},
		{"city", fields.City},
		{"contact_number", fields.ContactNumber},
	} {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out model.Item
	if err := c.do(ctx, http.MethodPost, "/api/items", mw.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetStatus calls PATCH /api/items/{id}.
func (c *Client) SetStatus(ctx context.Context, id, status string) (*model.Item, error) {
	var out model.Item
	body := map[string]string{"status": status}
	if err := c.doJSON(ctx, http.MethodPatch, "/api/items/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem calls DELETE /api/items/{id}.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), nil, nil)
}

// Register calls POST /api/auth/register.
func (c *Client) Register(ctx context.Context, name, email, password, role string) (*model.User, error) {
	var out model.User
	body := map[string]string{"name": name, "email": email, "password": password, "role": role}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login calls POST /api/auth/login and stores the returned token on the
// client. It returns the account role.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return "", err
	}
	c.Token = out.Token
	return out.Role, nil
}
