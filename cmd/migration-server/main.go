// cmd/migration-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"template-migrator/internal/api"
	"template-migrator/internal/common/config"
	"template-migrator/internal/common/database"
	"template-migrator/internal/common/logger"
	"template-migrator/internal/credentials"
	"template-migrator/internal/history"
	"template-migrator/internal/hubspot"
	"template-migrator/internal/migration"
	"template-migrator/internal/notify"
	"template-migrator/internal/sfmc"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("delay", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting migration server...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	credentialStore := credentials.NewStore(redis, log)

	// --- Init PostgreSQL with retry (only when run history is enabled) ---
	var pg *database.PostgresClient
	var historyStore *history.Store
	if cfg.Migration.HistoryEnabled {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		historyStore = history.NewStore(pg, log)
	}

	// --- Init SNS notifier (optional) ---
	var notifier *notify.SNSNotifier
	if cfg.Notifications.SNS.Enabled {
		notifier, err = notify.NewSNSNotifier(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("sns notifier init failed", zap.Error(err))
		}
		zapLog.Info("SNS notifier initialized", zap.String("topic", cfg.Notifications.SNS.TopicARN))
	}

	deps := migration.Dependencies{
		Credentials: credentialStore,
		NewFetcher: func(accessToken string) migration.TemplateFetcher {
			return hubspot.NewClientWithBaseURL(accessToken, cfg.Integrations.HubSpot.BaseURL, log)
		},
		NewDestination: func(creds sfmc.Credentials) migration.Destination {
			return sfmc.NewClientWithBaseURLs(
				creds,
				fmt.Sprintf(cfg.Integrations.SFMC.AuthURLTemplate, creds.Subdomain),
				fmt.Sprintf(cfg.Integrations.SFMC.RestURLTemplate, creds.Subdomain),
				log,
			)
		},
		Logger: log,
	}
	if historyStore != nil {
		deps.History = historyStore
	}
	if notifier != nil {
		deps.Notifier = notifier
	}

	service := migration.NewService(deps, migration.Config{
		DefaultLimit:     cfg.Migration.DefaultLimit,
		RootFolderName:   cfg.Migration.RootFolderName,
		TargetFolderName: cfg.Migration.TargetFolderName,
	})

	server := &api.Server{
		Migration: migration.NewHandler(service, log),
		Redis:     redis,
	}
	if pg != nil {
		server.Postgres = pg
	}

	router := api.NewRouter(server, time.Duration(cfg.Server.RequestTimeout)*time.Millisecond)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("Server stopped")
}
