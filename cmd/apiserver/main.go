package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"olp/backend/internal/config"
	"olp/backend/internal/entity"
	"olp/backend/internal/repo/rpcheckpoint"
	"olp/backend/internal/repo/rpmirror"
	"olp/backend/internal/repo/rpqueue"
	"olp/backend/internal/server/handlers/ops"
	"olp/backend/internal/server/handlers/webhook"
	"olp/backend/internal/server/routers"
	"olp/backend/pkg/lmstfy"
	"olp/backend/pkg/logger"
	"olp/backend/pkg/redisx"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "path to the config file")
)

func main() {
	flag.Parse()

	// 1. Load and validate config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. MySQL
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.QueueEntry{},
		&entity.Checkpoint{},
		&entity.MirrorContact{},
		&entity.MirrorSale{},
		&entity.MirrorAccount{},
	); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// 4. lmstfy
	jobs, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to create lmstfy client: %v", err)
	}

	// 5. Redis Pub/Sub (optional; wait support degrades to polling)
	var pubsub *redisx.PubSubClient
	if cfg.Redis.Addr != "" {
		pubsub, err = redisx.NewPubSubClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer pubsub.Close()
	}

	// 6. Handlers and routes
	queueRepo := rpqueue.NewQueueRepository(db)
	checkpointRepo := rpcheckpoint.NewCheckpointRepository(db)
	mirrorRepo := rpmirror.NewMirrorRepository(db)

	webhookHandler := webhook.NewHandler(cfg.Shopify.WebhookSecret, queueRepo, jobs, cfg.Lmstfy.Queue, zapLogger)
	opsHandler := ops.NewHandler(queueRepo, checkpointRepo, mirrorRepo, jobs, pubsub, cfg.Lmstfy.Queue, zapLogger)

	engine := routers.SetupRoutes(webhookHandler, opsHandler, zapLogger)

	// 7. HTTP server with graceful shutdown
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	case err := <-serverErrChan:
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Println("Application stopped")
}
