// Package server initializes and runs the chat server application.
// It selects the password-store backend, wires the session registry,
// starts the TCP chat endpoint and the optional metrics endpoint, and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gochat/internal/common"
	"github.com/dmitrijs2005/gochat/internal/logging"
	"github.com/dmitrijs2005/gochat/internal/server/chat"
	"github.com/dmitrijs2005/gochat/internal/server/config"
	"github.com/dmitrijs2005/gochat/internal/server/metrics"
	"github.com/dmitrijs2005/gochat/internal/server/shared/db"
	"github.com/dmitrijs2005/gochat/internal/server/users"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
	registry    *chat.Registry
	metrics     *metrics.Metrics
	promReg     *prometheus.Registry
	secretKey   string
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	var manager db.RepositoryManager
	if c.DatabaseDSN == "" {
		manager = db.NewInMemoryRepositoryManager()
	} else {
		m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		manager = m
	}

	secretKey := c.SecretKey
	if secretKey == "" {
		generated, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("secret key: %w", err)
		}
		secretKey = generated
		logger.Warn(context.Background(),
			"no secret key configured, using an ephemeral one; session tokens will not survive a restart")
	}

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	return &App{
		config:      c,
		logger:      logger,
		userService: users.NewService(manager.Users()),
		registry:    chat.NewRegistry(m),
		metrics:     m,
		promReg:     promReg,
		secretKey:   secretKey,
	}, nil
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

func (app *App) startChatServer(ctx context.Context, cancelFunc context.CancelFunc) {

	opts := chat.Options{
		MinUsernameLength: app.config.MinUsernameLength,
		MinPasswordLength: app.config.MinPasswordLength,
		QueueSize:         app.config.QueueSize,
		SecretKey:         []byte(app.secretKey),
		TokenValidity:     app.config.TokenValidityDuration,
	}

	s := chat.NewServer(app.config.EndpointAddr, opts, app.registry, app.userService, app.logger, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	if app.config.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(app.promReg))

	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping metrics server...")
		_ = srv.Shutdown(context.Background())
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startChatServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
