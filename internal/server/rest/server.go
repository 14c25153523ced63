// Package rest exposes the credential service as a JSON HTTP API under
// /api/auth.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// Options configure the HTTP handler.
type Options struct {
	// CORSOrigin is a comma-separated list of allowed origins, or "*".
	CORSOrigin string
	// SessionTTL is the lifetime of the session cookie set on login.
	SessionTTL time.Duration
}

// NewHandler builds the router for the credential API.
func NewHandler(svc Service, tokens TokenVerifier, logger logging.Logger, opts Options) http.Handler {
	h := &handlers{svc: svc, sessionTTL: opts.SessionTTL}

	r := mux.NewRouter()
	r.Use(accessLog(logger))

	api := r.PathPrefix("/api/auth").Subrouter()
	api.HandleFunc("/signup", h.signup).Methods(http.MethodPost)
	api.HandleFunc("/send-otp", h.sendOTP).Methods(http.MethodPost)
	api.HandleFunc("/resend-otp", h.resendOTP).Methods(http.MethodPost)
	api.HandleFunc("/verify-otp", h.verifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/forgot-password", h.forgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/reset-password", h.resetPassword).Methods(http.MethodPost)
	api.Handle("/me", requireSession(tokens)(http.HandlerFunc(h.me))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet)

	return cors.Handler(corsOptions(opts.CORSOrigin))(r)
}

func corsOptions(origin string) cors.Options {
	var origins []string
	for _, p := range strings.Split(origin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	wildcard := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	if wildcard {
		origins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}
}

// Server serves the REST API.
type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, handler http.Handler, l logging.Logger) *Server {
	return &Server{
		address: address,
		handler: handler,
		logger:  l.With("module", "rest_server"),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting REST server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
