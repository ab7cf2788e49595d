// Package client talks to the vault HTTP API and keeps the session token
// between vaultctl invocations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sitevault/internal/common"
)

// ErrUnavailable is returned when the server cannot be reached.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx answer that maps to no known sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Credential is one row of /show_passwords.
type Credential struct {
	Site     string `json:"site"`
	Password string `json:"password"`
	Error    string `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Token() string     { return c.token }
func (c *Client) SetToken(t string) { c.token = t }

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, data, nil
}

// responseError maps a failed response to the shared sentinel errors using
// the status code and the message the server sends.
func responseError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))

	switch {
	case status == http.StatusConflict:
		return common.ErrNotInitialized
	case status == http.StatusUnauthorized && msg == "Invalid master key":
		return common.ErrInvalidCredentials
	case status == http.StatusUnauthorized:
		return common.ErrUnauthenticated
	case status == http.StatusBadRequest && msg == "Master key already initialized":
		return common.ErrAlreadyInitialized
	case status == http.StatusBadRequest && msg == "Master key is required":
		return common.ErrEmptyKey
	case status == http.StatusBadRequest && msg == "Invalid URL":
		return common.ErrInvalidSite
	case status >= 500:
		return fmt.Errorf("%w: %w", common.ErrStorage, &APIError{Status: status, Message: msg})
	default:
		return &APIError{Status: status, Message: msg}
	}
}

func (c *Client) call(ctx context.Context, method, path string, payload any) ([]byte, http.Header, error) {
	resp, data, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.Header, responseError(resp.StatusCode, data)
	}
	return data, resp.Header, nil
}

func masterKeyBody(masterKey []byte) any {
	return struct {
		MasterKey string `json:"master_key"`
	}{MasterKey: string(masterKey)}
}

func (c *Client) Initialize(ctx context.Context, masterKey []byte) error {
	_, _, err := c.call(ctx, http.MethodPost, "/initialize", masterKeyBody(masterKey))
	return err
}

// Login unlocks the vault and keeps the returned session token.
func (c *Client) Login(ctx context.Context, masterKey []byte) error {
	_, h, err := c.call(ctx, http.MethodPost, "/login", masterKeyBody(masterKey))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			c.token = ""
		}
		return err
	}

	token := h.Get(common.SessionTokenHeaderName)
	if token == "" {
		return errors.New("server did not return a session token")
	}
	c.token = token
	return nil
}

// AddPassword asks the server to generate and store a password for site.
func (c *Client) AddPassword(ctx context.Context, site string) (string, error) {
	data, _, err := c.call(ctx, http.MethodPost, "/add_password", struct {
		Site string `json:"site"`
	}{Site: site})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) ShowPasswords(ctx context.Context) ([]Credential, error) {
	data, _, err := c.call(ctx, http.MethodGet, "/show_passwords", nil)
	if err != nil {
		return nil, err
	}

	var out []Credential
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, _, err := c.call(ctx, http.MethodPost, "/logout", nil)
	c.token = ""
	return err
}

// Status returns "uninitialized", "locked" or "unlocked".
func (c *Client) Status(ctx context.Context) (string, error) {
	data, _, err := c.call(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return "", err
	}

	var st struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return st.Status, nil
}
