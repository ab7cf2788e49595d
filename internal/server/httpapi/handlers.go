package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/sitevault/internal/common"
	"github.com/dmitrijs2005/sitevault/internal/server/auth"
)

const maxBodyBytes = 1 << 20

const (
	msgInitialized        = "Master key initialized"
	msgAlreadyInitialized = "Master key already initialized"
	msgKeyRequired        = "Master key is required"
	msgLoginSuccessful    = "Login successful"
	msgInvalidMasterKey   = "Invalid master key"
	msgNotInitialized     = "Master key not initialized"
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidURL         = "Invalid URL"
	msgLoggedOut          = "Logged out"
	msgBadRequest         = "Invalid request body"
	msgInternal           = "internal error"
	msgCancelled          = "request cancelled"
)

type siteRequest struct {
	Site string `json:"site"`
}

type passwordView struct {
	Site     string `json:"site"`
	Password string `json:"password"`
	Error    string `json:"error,omitempty"`
}

type statusView struct {
	Status string `json:"status"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), "writing JSON response", "error", err)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

// writeError answers with the status and message for errors every endpoint
// shares. Endpoint specific errors are handled before calling it.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		writeText(w, http.StatusUnauthorized, msgNotAuthenticated)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeText(w, http.StatusServiceUnavailable, msgCancelled)
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusInternalServerError, msgInternal)
	}
}

func (s *HTTPServer) handleInitialize(w http.ResponseWriter, r *http.Request) {
	key, err := readMasterKey(w, r)
	defer common.WipeByteArray(key)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	err = s.vault.Initialize(r.Context(), key)
	switch {
	case err == nil:
		s.writeJSON(w, r, http.StatusOK, msgInitialized)
	case errors.Is(err, common.ErrEmptyKey):
		writeText(w, http.StatusBadRequest, msgKeyRequired)
	case errors.Is(err, common.ErrAlreadyInitialized):
		writeText(w, http.StatusBadRequest, msgAlreadyInitialized)
	default:
		s.writeError(w, r, err)
	}
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	key, err := readMasterKey(w, r)
	defer common.WipeByteArray(key)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	sess, err := s.vault.Login(r.Context(), s.sessionID(r), key)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrEmptyKey):
		writeText(w, http.StatusBadRequest, msgKeyRequired)
		return
	case errors.Is(err, common.ErrNotInitialized):
		writeText(w, http.StatusConflict, msgNotInitialized)
		return
	case errors.Is(err, common.ErrInvalidCredentials):
		s.clearSessionCookie(w)
		writeText(w, http.StatusUnauthorized, msgInvalidMasterKey)
		return
	default:
		s.writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(sess.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.vault.Logout(r.Context(), sess.ID)
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	w.Header().Set(common.SessionTokenHeaderName, token)
	s.writeJSON(w, r, http.StatusOK, msgLoginSuccessful)
}

func (s *HTTPServer) handleAddPassword(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(r)
	if id == "" {
		writeText(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req siteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	password, err := s.vault.AddPassword(r.Context(), id, req.Site)
	switch {
	case err == nil:
		w.Header().Set("Cache-Control", "no-store")
		writeText(w, http.StatusOK, password)
	case errors.Is(err, common.ErrInvalidSite):
		writeText(w, http.StatusBadRequest, msgInvalidURL)
	default:
		s.writeError(w, r, err)
	}
}

func (s *HTTPServer) handleShowPasswords(w http.ResponseWriter, r *http.Request) {
	seq, err := s.vault.ShowPasswords(r.Context(), s.sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]passwordView, 0)
	for dc := range seq {
		v := passwordView{Site: dc.Site, Password: dc.Password}
		if dc.Err != nil {
			v.Error = common.ErrDecryption.Error()
			if errors.Is(dc.Err, common.ErrUnauthenticated) {
				writeText(w, http.StatusUnauthorized, msgNotAuthenticated)
				return
			}
		}
		out = append(out, v)
	}

	w.Header().Set("Cache-Control", "no-store")
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id := s.sessionID(r); id != "" {
		s.vault.Logout(r.Context(), id)
	}
	s.clearSessionCookie(w)
	s.writeJSON(w, r, http.StatusOK, msgLoggedOut)
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.vault.Status(r.Context(), s.sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, statusView{Status: st.String()})
}
