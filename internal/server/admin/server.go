// Package admin serves operational endpoints on a separate listener:
// Prometheus metrics and pprof profiles.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps the admin *http.Server.
type Server struct {
	svc *http.Server
}

// NewServer builds an admin server on addr exposing metrics gathered from g.
func NewServer(addr string, g prometheus.Gatherer) *Server {
	timeout := 45 * time.Second
	return &Server{
		svc: &http.Server{
			Addr:         addr,
			Handler:      handler(g),
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  timeout,
		},
	}
}

func (s *Server) BindAddress() string {
	return s.svc.Addr
}

// Run serves until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.svc.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.svc.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// pprofProfiles lists the profiles served under /debug/pprof/. Each can be
// toggled with PPROF_<NAME>=yes|no. Profiles can leak request data, which is
// why they live on the admin listener only.
var pprofProfiles = map[string]bool{
	"allocs":       true,
	"block":        true,
	"goroutine":    true,
	"heap":         true,
	"mutex":        true,
	"threadcreate": false,
}

func enabled(name string, def bool) bool {
	switch strings.ToLower(os.Getenv("PPROF_" + strings.ToUpper(name))) {
	case "yes":
		return true
	case "no":
		return false
	}
	return def
}

func handler(g prometheus.Gatherer) http.Handler {
	r := mux.NewRouter()

	r.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	r.HandleFunc("/debug/pprof/", pprof.Index)
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	for name, def := range pprofProfiles {
		if enabled(name, def) {
			r.Handle(fmt.Sprintf("/debug/pprof/%s", name), pprof.Handler(name))
		}
	}

	return r
}
