package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultConfigSnapshotRepository struct {
	DB *gorm.DB
}

func NewDefaultConfigSnapshotRepository(db *gorm.DB) *DefaultConfigSnapshotRepository {
	return &DefaultConfigSnapshotRepository{DB: db}
}

func (r *DefaultConfigSnapshotRepository) GetLatest(ctx context.Context) (*domain.ConfigSnapshot, error) {
	var model models.ConfigSnapshotModel
	if err := r.DB.WithContext(ctx).Order("version DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, classify(err)
	}
	return mappers.ToDomainConfigSnapshot(&model), nil
}

// CreateSnapshot relies on the unique version index: a concurrent writer makes it fail, never overwrite.
func (r *DefaultConfigSnapshotRepository) CreateSnapshot(ctx context.Context, snapshot *domain.ConfigSnapshot) error {
	db := r.DB.WithContext(ctx)

	var maxVersion int64
	if err := db.Model(&models.ConfigSnapshotModel{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error; err != nil {
		return classify(err)
	}

	snapshot.ID = uuid.New().String()
	snapshot.Version = maxVersion + 1
	snapshot.CreatedAt = time.Now()

	if err := db.Create(mappers.ToGORMConfigSnapshot(snapshot)).Error; err != nil {
		return classify(fmt.Errorf("failed to create config snapshot: %w", err))
	}
	return nil
}

func (r *DefaultConfigSnapshotRepository) ListSnapshots(ctx context.Context, limit int) ([]*domain.ConfigSnapshot, error) {
	var snapshotModels []models.ConfigSnapshotModel
	if err := r.DB.WithContext(ctx).Order("version DESC").Limit(limit).Find(&snapshotModels).Error; err != nil {
		return nil, classify(err)
	}
	snapshots := make([]*domain.ConfigSnapshot, len(snapshotModels))
	for i := range snapshotModels {
		snapshots[i] = mappers.ToDomainConfigSnapshot(&snapshotModels[i])
	}
	return snapshots, nil
}
