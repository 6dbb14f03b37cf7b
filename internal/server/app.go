// Package server assembles the authentication service from configuration
// and runs its transports and background jobs until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/admin"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	hs "github.com/dmitrijs2005/gophauth/internal/server/http"
)

const adminRole = "admin"

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	grpc     *gs.GRPCServer
	http     *hs.Server
	reaper   *services.Reaper
	registry *prometheus.Registry
}

// NewApp opens storage, applies migrations and builds the transports.
// Logs are written to out.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger := logging.NewJSONLogger(out, c.LogLevel)

	codec, err := auth.NewCodec(auth.CodecConfig{
		AccessKey:       []byte(c.AccessSecretKey),
		RefreshKey:      []byte(c.RefreshSecretKey),
		Issuer:          c.Issuer,
		Audience:        c.Audience,
		AccessLifetime:  c.AccessTokenValidityDuration,
		RefreshLifetime: c.RefreshTokenValidityDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		grpc_prometheus.DefaultServerMetrics,
	)
	rec, err := metrics.NewPrometheus(registry)
	if err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	repos, err := repomanager.New(ctx, repomanager.Options{
		DatabaseDSN: c.DatabaseDSN,
		RedisURL:    c.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	directory := services.NewDirectory(repos.Users())
	if c.AdminEmail != "" {
		if err := seedAdmin(ctx, directory, c.AdminEmail, c.AdminPassword, logger); err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("admin seed error: %w", err)
		}
	}
	store := services.NewRefreshTokenStore(repos.RefreshTokens(), codec)
	issuer := services.NewSessionIssuer(codec, store)
	svc := services.NewAuthService(directory, codec, store, issuer, logger,
		services.WithMetrics(rec),
		services.WithRequestTimeout(c.RequestTimeout),
	)

	router := hs.NewRouter(svc, codec, logger, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		grpc:     gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, codec),
		http:     hs.NewServer(c.EndpointAddrHTTP, router, logger),
		reaper:   services.NewReaper(store, c.ReaperInterval, logger, rec),
		registry: registry,
	}, nil
}

// seedAdmin creates the configured admin user. An existing user is left as is.
func seedAdmin(ctx context.Context, reg admin.Registrar, email, password string, l logging.Logger) error {
	u, err := admin.AddUser(ctx, reg, &admin.UserAddOptions{
		Email:    email,
		UserName: "admin",
		Roles:    []string{adminRole},
	}, password)
	if errors.Is(err, common.ErrorAlreadyExists) {
		l.Info(ctx, "admin user already exists", "email", email)
		return nil
	}
	if err != nil {
		return err
	}
	l.Info(ctx, "admin user created", "user_id", u.ID)
	return nil
}

// Run serves until ctx is done or SIGINT/SIGTERM/SIGQUIT arrives. The first
// component to fail stops the others.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.http.Run(ctx) })
	g.Go(func() error { return app.reaper.Run(ctx) })

	err := g.Wait()
	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(ctx, "error closing storage", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
