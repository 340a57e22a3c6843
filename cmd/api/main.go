// README: Entry point; loads config, wires the quote engine, starts HTTP server and surge refresher.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"roadcall/internal/config"
	httptransport "roadcall/internal/http"
	"roadcall/internal/infra"
	"roadcall/internal/logger"
	"roadcall/internal/maps"
	"roadcall/internal/modules/audit"
	"roadcall/internal/modules/contractors"
	"roadcall/internal/modules/jobs"
	"roadcall/internal/modules/pricing"
	"roadcall/internal/modules/surge"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DBDSN, appLogger)
	if err != nil {
		appLogger.Fatal("database init failed", zap.Error(err))
	}
	defer dbPool.Close()

	if err := infra.RunMigrations(ctx, dbPool, "migrations", appLogger); err != nil {
		appLogger.Fatal("migrations failed", zap.Error(err))
	}

	redisClient := infra.NewRedis(cfg.RedisAddr)

	var estimator *maps.TravelEstimator
	if cfg.MapsAPIKey != "" {
		estimator, err = maps.NewTravelEstimator(cfg.MapsAPIKey)
		if err != nil {
			appLogger.Fatal("maps client init failed", zap.Error(err))
		}
	} else {
		appLogger.Info("no maps API key configured, travel estimates disabled")
	}

	jobStore := jobs.NewStore(dbPool)
	contractorStore := contractors.NewStore(redisClient)

	surgeStore := surge.NewStore(dbPool)
	surgeEstimator := surge.NewEstimator(
		jobStore,
		contractorStore,
		surge.DemandSnapshot(surgeStore),
		cfg.Surge,
		appLogger,
	)

	auditStore := audit.NewStore(dbPool)
	auditSink := audit.NewService(auditStore, appLogger)

	pricingStore := pricing.NewStore(dbPool)
	quoteCache := pricing.NewRedisCache(redisClient, cfg.Quote.TTL)
	quoteSvc := pricing.NewService(
		pricingStore,
		surgeEstimator,
		jobStore,
		quoteCache,
		auditSink,
		auditStore,
		cfg.Quote,
		appLogger,
	)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Quotes:      quoteSvc,
		Contractors: contractorStore,
		Estimator:   estimator,
		Log:         appLogger,
	})

	go surgeEstimator.RunRefresher(ctx)

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		appLogger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("shutdown error", zap.Error(err))
	}
}
