package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"olp/backend/internal/config"
	"olp/backend/internal/domains/common"
	"olp/backend/internal/entity"
	"olp/backend/internal/ledger"
	"olp/backend/internal/recon"
	"olp/backend/internal/repo/rpcheckpoint"
	"olp/backend/internal/repo/rpmirror"
	"olp/backend/internal/repo/rpqueue"
	"olp/backend/internal/shopify"
	"olp/backend/internal/worker"
	"olp/backend/pkg/lmstfy"
	"olp/backend/pkg/logger"
	"olp/backend/pkg/redisx"
)

var (
	configPath = flag.String("config", "./config/worker.yaml", "path to the config file")
)

func main() {
	flag.Parse()

	// 1. Load and validate config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	log.Printf("Config loaded: %s, env: %s, log_level: %s", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

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

	// 4. Clients
	jobs, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to create lmstfy client: %v", err)
	}

	var pubsub *redisx.PubSubClient
	if cfg.Redis.Addr != "" {
		pubsub, err = redisx.NewPubSubClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer pubsub.Close()
	}

	gateway := ledger.NewClient(cfg.Ledger, zapLogger)
	orders := shopify.NewClient(cfg.Shopify)

	// 5. Repositories and the reconciliation runner
	queueRepo := rpqueue.NewQueueRepository(db)
	checkpointRepo := rpcheckpoint.NewCheckpointRepository(db)
	mirrorRepo := rpmirror.NewMirrorRepository(db)

	params := recon.PostingParams{
		VATRate:         decimal.NewFromFloat(cfg.Posting.VATRate),
		VATCode:         cfg.Posting.VATCode,
		SalesAccount:    cfg.Posting.SalesAccount,
		ShippingAccount: cfg.Posting.ShippingAccount,
		BankAccount:     cfg.Posting.BankAccount,
		FeeAccount:      cfg.Posting.FeeAccount,
		FeePercent:      decimal.NewFromFloat(cfg.Posting.FeePercent),
		FeeFixedMinor:   cfg.Posting.FeeFixedMinor,
		Currency:        cfg.Posting.Currency,
	}

	guard := recon.NewIdempotencyGuard(rpmirror.NewSaleIndex(mirrorRepo), gateway, zapLogger)
	runner := recon.NewRunner(orders, gateway, guard, recon.NewTextReceiptSource(), params, zapLogger)

	deps := &common.Deps{
		Logger:      zapLogger,
		DB:          db,
		Queue:       queueRepo,
		Mirror:      mirrorRepo,
		Checkpoints: checkpointRepo,
		Gateway:     gateway,
		Orders:      orders,
		Runner:      runner,
		PubSub:      pubsub,
		Jobs:        jobs,
		JobQueue:    cfg.Lmstfy.Queue,
		MaxAttempts: cfg.Worker.MaxAttempts,
	}

	// 6. Manager
	mgr, err := worker.NewManagerInstance(cfg, deps, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	go func() {
		if err := mgr.Start(); err != nil {
			log.Fatalf("Manager start failed: %v", err)
		}
	}()

	log.Println("Worker started. Press Ctrl+C to shutdown.")

	// 7. Wait for shutdown signal, then drain
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v, shutting down worker...", sig)
	mgr.Shutdown()

	fmt.Println("Worker exited gracefully")
}
