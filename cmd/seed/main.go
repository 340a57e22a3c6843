// README: One-shot seeder for the baseline pricing rule set.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"roadcall/internal/config"
	"roadcall/internal/infra"
	"roadcall/internal/logger"
	"roadcall/internal/modules/pricing"
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

	ctx := context.Background()

	dbPool, err := infra.NewDB(ctx, cfg.DBDSN, appLogger)
	if err != nil {
		appLogger.Fatal("database init failed", zap.Error(err))
	}
	defer dbPool.Close()

	if err := infra.RunMigrations(ctx, dbPool, "migrations", appLogger); err != nil {
		appLogger.Fatal("migrations failed", zap.Error(err))
	}

	store := pricing.NewStore(dbPool)
	for _, r := range pricing.DefaultRules() {
		rule := r
		if err := store.CreateRule(ctx, &rule); err != nil {
			appLogger.Fatal("rule insert failed", zap.String("rule", rule.Name), zap.Error(err))
		}
		appLogger.Info("seeded rule", zap.String("rule", rule.Name))
	}
}
