package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/product-review-hub/internal/config"
	"github.com/iliyamo/product-review-hub/internal/database"
	"github.com/iliyamo/product-review-hub/internal/handler"
	"github.com/iliyamo/product-review-hub/internal/queue"
	"github.com/iliyamo/product-review-hub/internal/router"
	"github.com/iliyamo/product-review-hub/internal/service"
	"github.com/iliyamo/product-review-hub/internal/session"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "create missing tables before serving")
}

func runServe(cmd *cobra.Command) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	// In-memory SQLite starts empty, so it is always migrated.
	if migrateOnStart || cfg.DBDriver == config.DriverSQLite {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	var store session.Store
	if rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb, "session")
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		log.Info("redis unavailable: sessions are stateless, cache and rate limit disabled")
	}

	var events handler.EventPublisher = service.Discard{}
	if cfg.EventsEnabled {
		async := service.NewAsync(service.NewPublisher(cfg.RabbitMQURL, log), 5*time.Second)
		defer async.Wait()
		events = async

		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Path: cfg.ActivityLog, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("activity consumer stopped", zap.Error(err))
			}
		}()
	}

	e, err := router.New(router.Deps{
		Cfg:      cfg,
		DB:       db,
		Redis:    rdb,
		Sessions: session.NewManager(cfg.SecretKey, cfg.SessionTTL, cfg.IsProduction(), store),
		Events:   events,
		Log:      log,
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
