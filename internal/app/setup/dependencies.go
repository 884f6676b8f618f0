package setup

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/config"
	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	publisher "github.com/LavaJover/shvark-binary-engine/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/repository"
	cache "github.com/LavaJover/shvark-binary-engine/internal/infrastructure/redis"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config     *config.EngineConfig
	Logger     *zap.Logger
	DB         *gorm.DB
	Store      *repository.Store
	ConfigRepo domain.ConfigSnapshotRepository
	Publisher  *publisher.DefaultKafkaPublisher
	Subscriber *publisher.DefaultKafkaSubscriber
	Notifier   domain.Notifier
	Redis      *cache.RedisStore
	Registry   *prometheus.Registry
	Metrics    *metrics.CommissionMetrics
}

func InitializeDependencies(cfg *config.EngineConfig, logger *zap.Logger) (*Dependencies, error) {
	db := postgres.MustInitDB(cfg, logger)

	if cfg.Migrations.Path != "" {
		if err := migrate.RunMigrations(db, cfg.Migrations.Path, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	store, err := repository.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers)
	sub := publisher.NewDefaultKafkaSubscriber(brokers, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	deps := &Dependencies{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Store:      store,
		ConfigRepo: store.Configs(),
		Publisher:  pub,
		Subscriber: sub,
		Notifier:   publisher.NewKafkaNotifier(pub, cfg.KafkaService.NotificationsTopic),
		Registry:   registry,
		Metrics:    metrics.NewCommissionMetrics(registry),
	}

	if cfg.Redis.Addr != "" {
		deps.Redis = cache.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := deps.Redis.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, config reads fall through to postgres", zap.Error(err))
		}
		deps.ConfigRepo = cache.NewConfigCache(store.Configs(), deps.Redis, cfg.Redis.TTL, logger)
	}

	return deps, nil
}

func (d *Dependencies) Close() {
	if err := d.Publisher.Close(); err != nil {
		d.Logger.Warn("failed to close kafka writer", zap.Error(err))
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
