package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/admixflow/admixflow/internal/adapter/cache"
	httpadapter "github.com/admixflow/admixflow/internal/adapter/http"
	"github.com/admixflow/admixflow/internal/adapter/persistence"
	"github.com/admixflow/admixflow/internal/config"
	"github.com/admixflow/admixflow/internal/ports"
	"github.com/admixflow/admixflow/internal/service/logger"
	"github.com/admixflow/admixflow/internal/service/token"
	"github.com/admixflow/admixflow/internal/usecase"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver
)

var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.WithField("version", Version).Info("starting AdmixFlow compounding service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := initDatabase(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	clock := ports.SystemClock{}

	// Repositories
	orderRepo := persistence.NewPostgresOrderRepository(db)
	catalogRepo := persistence.NewPostgresCatalogRepository(db)
	auditRepo := persistence.NewPostgresAuditRepository(db)
	userRepo := persistence.NewPostgresUserRepository(db)

	// Optional order snapshot cache
	var orderCache ports.OrderCache
	if addr := cfg.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.WithError(err).Warn("redis unreachable, order cache disabled")
		} else {
			orderCache = cache.NewRedisOrderCache(client, cfg.Redis.CacheTTL)
			log.WithField("addr", addr).Info("order cache enabled")
		}
	}

	// Services
	tokens := token.NewService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)

	// Use cases
	auditUC := usecase.NewAuditUseCase(auditRepo, clock, log)
	validationUC := usecase.NewValidationUseCase(catalogRepo)
	calculationUC := usecase.NewCalculationUseCase(catalogRepo, clock)
	workflowUC := usecase.NewWorkflowUseCase(orderRepo, auditUC, orderCache, clock, log)
	orderUC := usecase.NewOrderUseCase(orderRepo, validationUC, calculationUC, workflowUC, auditUC, orderCache, clock, log)
	authUC := usecase.NewAuthUseCase(userRepo, tokens)

	// HTTP server
	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		log,
		httpadapter.NewAuthMiddleware(tokens),
		httpadapter.NewAuthHandler(authUC),
		httpadapter.NewOrderHandler(orderUC, workflowUC),
		httpadapter.NewAuditHandler(auditUC),
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("error during server shutdown")
	}
	log.Info("server stopped")
}

func initDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxConnections / 2)
	db.SetConnMaxLifetime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
