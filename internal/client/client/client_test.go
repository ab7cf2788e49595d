package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/sitevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI mimics the vault responses for a vault initialized with "M1".
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	const token = "tok-1"
	authed := func(r *http.Request) bool { return r.Header.Get("Authorization") == "Bearer "+token }

	mux := http.NewServeMux()
	mux.HandleFunc("POST /initialize", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Master key already initialized", http.StatusBadRequest)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MasterKey string `json:"master_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.MasterKey != "M1" {
			http.Error(w, "Invalid master key", http.StatusUnauthorized)
			return
		}
		w.Header().Set(common.SessionTokenHeaderName, token)
		_ = json.NewEncoder(w).Encode("Login successful")
	})
	mux.HandleFunc("POST /add_password", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		var req struct {
			Site string `json:"site"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Site == "bad" {
			http.Error(w, "Invalid URL", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("Generated-Pass-1"))
	})
	mux.HandleFunc("GET /show_passwords", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"site":"a.com","password":"p"},{"site":"b.com","password":"","error":"decryption failed"}]`))
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode("Logged out")
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		if authed(r) {
			_, _ = w.Write([]byte(`{"status":"unlocked"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"locked"}`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_Flow(t *testing.T) {
	ts := fakeAPI(t)
	c := New(ts.URL+"/", time.Second)
	ctx := context.Background()

	assert.ErrorIs(t, c.Initialize(ctx, []byte("M2")), common.ErrAlreadyInitialized)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "locked", st)

	_, err = c.AddPassword(ctx, "a.com")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	assert.ErrorIs(t, c.Login(ctx, []byte("M2")), common.ErrInvalidCredentials)
	assert.Empty(t, c.Token())

	require.NoError(t, c.Login(ctx, []byte("M1")))
	assert.Equal(t, "tok-1", c.Token())

	pw, err := c.AddPassword(ctx, "a.com")
	require.NoError(t, err)
	assert.Equal(t, "Generated-Pass-1", pw)

	_, err = c.AddPassword(ctx, "bad")
	assert.ErrorIs(t, err, common.ErrInvalidSite)

	list, err := c.ShowPasswords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Credential{
		{Site: "a.com", Password: "p"},
		{Site: "b.com", Error: "decryption failed"},
	}, list)

	st, err = c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "unlocked", st)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())
}

func TestClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := New(url, time.Second)
	_, err := c.Status(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResponseError(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusConflict, "Master key not initialized", common.ErrNotInitialized},
		{http.StatusUnauthorized, "Invalid master key\n", common.ErrInvalidCredentials},
		{http.StatusUnauthorized, "Not authenticated", common.ErrUnauthenticated},
		{http.StatusBadRequest, "Master key is required", common.ErrEmptyKey},
		{http.StatusBadRequest, "Invalid URL", common.ErrInvalidSite},
		{http.StatusInternalServerError, "internal error", common.ErrStorage},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, responseError(tt.status, []byte(tt.body)), tt.want, tt.body)
	}

	err := responseError(http.StatusTeapot, []byte("short and stout"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTeapot, apiErr.Status)
	assert.Equal(t, "server returned 418: short and stout", apiErr.Error())
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")

	tok, err := LoadToken(path)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, SaveToken(path, "abc"))
	tok, err = LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, RemoveToken(path))
	require.NoError(t, RemoveToken(path))
	tok, err = LoadToken(path)
	require.NoError(t, err)
	assert.Empty(t, tok)
}
