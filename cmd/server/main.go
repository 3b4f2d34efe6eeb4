// Package main runs the back-office service: the REST and RPC surfaces on
// top of one shared application.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	app "github.com/domunity/backend/internal/app"
	"github.com/domunity/backend/internal/app/httpapi"
	"github.com/domunity/backend/internal/app/metrics"
	"github.com/domunity/backend/internal/app/rpcapi"
	"github.com/domunity/backend/internal/app/storage/postgres"
	"github.com/domunity/backend/internal/config"
	"github.com/domunity/backend/internal/middleware"
	"github.com/domunity/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("server").WithError(err).Fatal("load configuration")
	}

	log := logger.New("server", logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores := app.Stores{}
	appCfg := app.Config{
		JWTSecret:  cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}

	if cfg.Database.DSN != "" {
		db, err := openDatabase(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()

		pg := postgres.New(db)
		stores = app.Stores{
			Users:            pg,
			Buildings:        pg,
			Payments:         pg,
			Maintenance:      pg,
			FinancialRecords: pg,
			Events:           pg,
			Contacts:         pg,
		}
		appCfg.DB = db
	} else {
		log.Warn("DATABASE_URL not set; using the in-memory store")
	}

	application, err := app.New(appCfg, stores, log)
	if err != nil {
		return err
	}

	var handler http.Handler = httpapi.NewHandler(application, log)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst, log)
		handler = limiter.Handler(handler)
	}
	handler = metrics.InstrumentHandler(handler)

	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	rpcServer := rpcapi.NewServer(application, cfg.Server.GRPCAddr, log)
	if err := application.Attach(rpcServer); err != nil {
		return err
	}

	if err := application.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.HTTPAddr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.WithError(err).Error("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown incomplete")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application shutdown incomplete")
	}
	log.Info("server stopped")
	return nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(db.DB); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database migrations applied")
	}
	return db, nil
}
