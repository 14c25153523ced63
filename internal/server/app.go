// Package server wires the credential service together and runs its
// listeners: the REST API, the gRPC health endpoint and the admin endpoint.
// It also runs the purge loop for expired codes and handles graceful
// shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/admin"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/rest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

// logOutput is where the server logs go.
var logOutput io.Writer = os.Stdout

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    repomanager.RepositoryManager
	limiter  ratelimit.Limiter
	registry *prometheus.Registry
	service  *services.CredentialService
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(c.LogFormat, logOutput)

	store, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := store.RunMigrations(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sender, err := newSender(ctx, c, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	limiter, err := newLimiter(c)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("rate limiter init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := services.NewCredentialService(store, sender, limiter, metrics.NewPrometheus(registry), logger, c)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("service init error: %w", err)
	}

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		limiter:  limiter,
		registry: registry,
		service:  svc,
	}, nil
}

func openStore(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StoreDriver {
	case config.StoreBunt:
		return repomanager.OpenBunt(c.BuntPath)
	case config.StorePostgres:
		return repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
}

func newSender(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Sender, error) {
	switch c.Mailer {
	case config.MailerSMTP:
		return notify.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.EmailFrom), nil
	case config.MailerSES:
		return notify.NewSESSender(ctx, c.SESRegion, c.SESAccessKey, c.SESSecretKey, c.EmailFrom)
	case config.MailerLog:
		return notify.NewLogSender(logger), nil
	}
	return nil, fmt.Errorf("unknown mailer %q", c.Mailer)
}

func newLimiter(c *config.Config) (ratelimit.Limiter, error) {
	if c.RedisURL == "" {
		return ratelimit.NopLimiter{}, nil
	}
	l, err := ratelimit.NewRedisLimiter(c.RedisURL, c.OTPRateLimit, c.OTPRateWindow)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Ping(ctx); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return l, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := rest.NewHandler(app.service, app.service.Tokens(), app.logger, rest.Options{
		CORSOrigin: app.config.CORSOrigin,
		SessionTTL: app.config.SessionTokenValidityDuration,
	})

	s := rest.NewServer(app.config.EndpointAddrHTTP, h, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.store, 10*time.Second)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startAdminServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := admin.NewServer(app.config.AdminAddr, app.registry)
	app.logger.Info(ctx, "Starting admin server", "address", s.BindAddress())
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeLoop deletes expired codes every PurgeInterval until ctx is done.
func (app *App) purgeLoop(ctx context.Context) {
	if app.config.PurgeInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = app.service.PurgeExpired(ctx)
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreDriver, "mailer", app.config.Mailer)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for _, start := range []func(context.Context, context.CancelFunc){
		app.startRESTServer,
		app.startGRPCServer,
		app.startAdminServer,
	} {
		start := start
		wg.Add(1)
		go func() {
			defer wg.Done()
			start(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.purgeLoop(ctx)
	}()

	wg.Wait()

	app.close(context.Background())
}

func (app *App) close(ctx context.Context) {
	if c, ok := app.limiter.(io.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Error(ctx, "rate limiter close error", "err", err)
		}
	}
	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "store close error", "err", err)
	}
	app.logger.Info(ctx, "App stopped")
}
