package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jeovahfialho/t212-exporter/internal/api"
	"github.com/jeovahfialho/t212-exporter/internal/config"
	"github.com/jeovahfialho/t212-exporter/internal/export"
	"github.com/jeovahfialho/t212-exporter/internal/service"
	"github.com/jeovahfialho/t212-exporter/internal/storage/cache"
	"github.com/jeovahfialho/t212-exporter/internal/storage/postgres"
	pkglogger "github.com/jeovahfialho/t212-exporter/pkg/logger"
)

// @title Trading 212 Transactions API
// @version 1.0
// @description Consulta das transações extraídas da Trading 212

// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
func main() {
	cfg := config.Load()

	if err := pkglogger.Init(cfg.LogLevel, cfg.Environment == "development"); err != nil {
		log.Fatal("Erro ao inicializar logger:", err)
	}
	defer pkglogger.Close()

	db, err := connectPostgres(cfg)
	if err != nil {
		pkglogger.Fatal("erro ao conectar PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	redisCache := connectRedis(cfg)

	// Um *RedisCache nil dentro da interface não seria nil para o serviço.
	var holdingsCache service.HoldingsCache
	if redisCache != nil {
		defer redisCache.Close()
		holdingsCache = redisCache
	}

	transactionService := service.NewTransactionService(db.Pool(), holdingsCache, cfg.CacheTTL)

	handler := api.NewHandler(
		db,
		redisCache,
		transactionService,
		export.NewProjector(nil),
	)

	app := api.NewApp(api.ServerConfig{
		ReadTimeout:  cfg.APIReadTimeout,
		WriteTimeout: cfg.APIWriteTimeout,
		AccessLog:    cfg.Environment == "development",
	})

	api.SetupRoutes(app, handler, api.AdminCredentials{
		User:     cfg.AdminUser,
		Password: cfg.AdminPassword,
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		pkglogger.Info("encerrando servidor")
		if err := app.Shutdown(); err != nil {
			pkglogger.Error("erro ao encerrar servidor", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	pkglogger.Info("servidor iniciado", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		pkglogger.Fatal("erro no servidor", zap.Error(err))
	}
}

func connectPostgres(cfg *config.Config) (*postgres.DB, error) {
	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar conexão: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao testar conexão: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	pkglogger.Info("conectado ao PostgreSQL")
	return db, nil
}

func connectRedis(cfg *config.Config) *cache.RedisCache {
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		pkglogger.Warn("Redis não disponível, continuando sem cache", zap.Error(err))
		return nil
	}

	pkglogger.Info("conectado ao Redis")
	return redisCache
}
