// Package httpapi serves the JSON API used by the browser extension.
package httpapi

import (
	"context"
	"errors"
	"iter"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sitevault/internal/logging"
	"github.com/dmitrijs2005/sitevault/internal/server/config"
	"github.com/dmitrijs2005/sitevault/internal/server/services"
	"github.com/dmitrijs2005/sitevault/internal/server/session"
)

const shutdownTimeout = 5 * time.Second

// Vault is the set of operations the API exposes.
type Vault interface {
	Initialize(ctx context.Context, masterKey []byte) error
	Login(ctx context.Context, currentSessionID string, masterKey []byte) (*session.Session, error)
	AddPassword(ctx context.Context, sessionID, site string) (string, error)
	ShowPasswords(ctx context.Context, sessionID string) (iter.Seq[services.DecryptedCredential], error)
	Logout(ctx context.Context, sessionID string)
	Status(ctx context.Context, sessionID string) (services.Status, error)
}

type HTTPServer struct {
	address       string
	vault         Vault
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	cookieSecure  bool
	corsOrigins   []string
}

func NewHTTPServer(l logging.Logger, v Vault, cfg *config.Config) *HTTPServer {
	return &HTTPServer{
		address:       cfg.HTTPAddr,
		vault:         v,
		logger:        l.With("module", "http_server"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		cookieSecure:  cfg.CookieSecure,
		corsOrigins:   splitOrigins(cfg.CORSOrigins),
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Handler returns the routed API wrapped in the CORS and access log middleware.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /initialize", s.handleInitialize)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /add_password", s.handleAddPassword)
	mux.HandleFunc("GET /show_passwords", s.handleShowPasswords)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /status", s.handleStatus)

	return s.accessLog(s.cors(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
