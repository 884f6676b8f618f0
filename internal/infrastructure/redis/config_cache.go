package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"go.uber.org/zap"
)

const LatestConfigKey = "binary:config:latest"

// ConfigCache reads the latest snapshot through the cache. Read failures
// degrade to the repository. New snapshots are written through, and a read
// only fills an empty key, so a reader holding an older version can never
// replace a newer entry.
type ConfigCache struct {
	repo   domain.ConfigSnapshotRepository
	store  KVStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewConfigCache(repo domain.ConfigSnapshotRepository, store KVStore, ttl time.Duration, logger *zap.Logger) *ConfigCache {
	return &ConfigCache{repo: repo, store: store, ttl: ttl, logger: logger}
}

func (c *ConfigCache) GetLatest(ctx context.Context) (*domain.ConfigSnapshot, error) {
	cached, ok := c.cached(ctx)
	if ok {
		return cached, nil
	}

	snapshot, err := c.repo.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return snapshot, nil
	}
	filled, err := c.store.SetNX(ctx, LatestConfigKey, raw, c.ttl)
	if err != nil {
		c.logger.Warn("config cache fill failed", zap.Error(err))
		return snapshot, nil
	}
	if !filled {
		// a writer got there first; prefer its entry when it is newer
		if cached, ok := c.cached(ctx); ok && cached.Version > snapshot.Version {
			return cached, nil
		}
	}
	return snapshot, nil
}

// CreateSnapshot stores the snapshot and writes it through to the cache. A
// cache that can be neither refreshed nor cleared is reported as an error.
func (c *ConfigCache) CreateSnapshot(ctx context.Context, snapshot *domain.ConfigSnapshot) error {
	if err := c.repo.CreateSnapshot(ctx, snapshot); err != nil {
		return err
	}
	if current, ok := c.cached(ctx); ok && current.Version > snapshot.Version {
		return nil
	}

	raw, err := json.Marshal(snapshot)
	if err == nil {
		err = c.store.Set(ctx, LatestConfigKey, raw, c.ttl)
	}
	if err == nil {
		return nil
	}
	c.logger.Warn("config cache write-through failed, invalidating",
		zap.Int64("version", snapshot.Version),
		zap.Error(err),
	)
	if delErr := c.store.Delete(ctx, LatestConfigKey); delErr != nil {
		return fmt.Errorf("config snapshot v%d stored but cache not refreshed: %w", snapshot.Version, delErr)
	}
	return nil
}

func (c *ConfigCache) ListSnapshots(ctx context.Context, limit int) ([]*domain.ConfigSnapshot, error) {
	return c.repo.ListSnapshots(ctx, limit)
}

func (c *ConfigCache) cached(ctx context.Context) (*domain.ConfigSnapshot, bool) {
	raw, ok, err := c.store.Get(ctx, LatestConfigKey)
	if err != nil {
		c.logger.Warn("config cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var snapshot domain.ConfigSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.logger.Warn("config cache entry corrupt, dropping")
		if err := c.store.Delete(ctx, LatestConfigKey); err != nil {
			c.logger.Warn("config cache invalidation failed", zap.Error(err))
		}
		return nil, false
	}
	return &snapshot, true
}
