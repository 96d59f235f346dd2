package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lotellar.backend/internal/config"
	"lotellar.backend/internal/infrastructure/blockchain"
	"lotellar.backend/internal/infrastructure/jobs"
	"lotellar.backend/internal/infrastructure/models"
	"lotellar.backend/internal/infrastructure/repositories"
	"lotellar.backend/internal/interfaces/http/handlers"
	"lotellar.backend/internal/interfaces/http/middleware"
	"lotellar.backend/internal/usecases"
	"lotellar.backend/pkg/jwt"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/redis"
	"lotellar.backend/pkg/utils"
)

const (
	serviceName     = "lotellar-backend"
	shutdownTimeout = 15 * time.Second
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		// lib/pq rather than the pgx default
		return gorm.Open(postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        dsn,
		}), &gorm.Config{DisableAutomaticPing: true})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	// The database only backs the wallet key endpoints; the rest of the API works without it.
	if err := sqlDB.Ping(); err != nil {
		logger.Warn(context.Background(), "Database not available, wallet key endpoints will return errors", zap.Error(err))
	} else if err := db.AutoMigrate(&models.PublicWalletKey{}); err != nil {
		logger.Warn(context.Background(), "Failed to migrate wallet key table", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Connected to PostgreSQL")
	}

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.SessionExpiry)

	keyring, err := blockchain.NewKeyring(cfg.Signer.SecretSeed)
	if err != nil {
		return fmt.Errorf("failed to load signer keys: %w", err)
	}
	if len(keyring.Addresses()) == 0 {
		logger.Warn(context.Background(), "No signer configured, submissions will fail with wallet not connected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()
	rpcClient, err := clientFactory.GetSorobanClient(ctx, cfg.Stellar.SorobanRPCURL)
	if err != nil {
		return fmt.Errorf("failed to initialize soroban rpc client: %w", err)
	}
	ledger := blockchain.NewLedger(rpcClient, clientFactory.GetAccountLoader(cfg.Stellar.HorizonURL))

	// Repositories
	walletKeyRepo := repositories.NewWalletKeyRepository(db)
	communityRepo := repositories.NewCommunityLotteryRepository()
	pendingRepo := repositories.NewPendingTransactionRepository()

	// Usecases
	orchestrator := usecases.NewTransactionOrchestrator(ledger, orchestratorConfig(cfg), pendingRepo)
	reader := usecases.NewLotteryReader(orchestrator)
	wallets := usecases.KeyringWallets{Keyring: keyring}
	limits := usecases.ParticipantLimits{Min: cfg.App.MinParticipants, Max: cfg.App.MaxParticipants}

	lotteryUsecase := usecases.NewLotteryUsecase(orchestrator, reader, wallets, limits, cfg.App.DefaultLotteryDuration)
	communityUsecase := usecases.NewCommunityLotteryUsecase(orchestrator, reader, wallets, communityRepo)
	formUsecase := usecases.NewFormUsecase(limits)
	walletUsecase := usecases.NewWalletSessionUsecase(sessionStore, jwtService, keyring)
	walletKeyUsecase := usecases.NewWalletKeyUsecase(walletKeyRepo)

	// Background jobs
	var pendingJob *jobs.PendingTransactionJob
	if cfg.Jobs.PendingTxEnabled {
		pendingJob = jobs.NewPendingTransactionJob(pendingRepo, orchestrator, cfg.Jobs.PendingTxInterval, cfg.Jobs.PendingTxMaxAge)
		go pendingJob.Start(ctx)
	}

	r := newRouter(routeDeps{
		healthHandler:           handlers.NewHealthHandler(ledger, serviceName, cfg.App.Version).WithStore("redis", redis.Ping),
		configHandler:           handlers.NewConfigHandler(cfg),
		lotteryHandler:          handlers.NewLotteryHandler(lotteryUsecase),
		communityLotteryHandler: handlers.NewCommunityLotteryHandler(communityUsecase),
		formHandler:             handlers.NewFormHandler(formUsecase),
		walletHandler:           handlers.NewWalletHandler(walletUsecase),
		userHandler:             handlers.NewUserHandler(walletKeyUsecase),
		walletAuthMiddleware:    middleware.WalletAuthMiddleware(walletUsecase),
		idempotencyMiddleware:   middleware.IdempotencyMiddleware(),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		select {
		case <-quit:
		case <-ctx.Done():
			return
		}
		logger.Info(context.Background(), "Shutting down server")
		if pendingJob != nil {
			pendingJob.Stop()
		}
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Server shutdown failed", zap.Error(err))
		}
		cancel()
	}()

	logger.Info(ctx, "Lotellar backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("network", cfg.Stellar.Network),
		zap.String("contract", cfg.Contracts.LotteryContractID),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func orchestratorConfig(cfg *config.Config) usecases.OrchestratorConfig {
	return usecases.OrchestratorConfig{
		ContractID:        cfg.Contracts.LotteryContractID,
		NetworkPassphrase: cfg.Stellar.NetworkPassphrase,
		ExplorerURL:       cfg.Stellar.ExplorerURL,
		BaseFee:           cfg.Transaction.BaseFee,
		TimeoutSeconds:    cfg.Transaction.TimeoutSeconds,
		Poll: utils.PollConfig{
			Attempts: cfg.Transaction.PollAttempts,
			Interval: cfg.Transaction.PollInterval,
		},
	}
}
