package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	configdto "github.com/LavaJover/shvark-binary-engine/internal/usecase/dto/config"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ConfigUsecase interface {
	GetLatest(ctx context.Context) (*domain.ConfigSnapshot, error)
	CreateSnapshot(ctx context.Context, input *configdto.CreateSnapshotInput) (*domain.ConfigSnapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]*domain.ConfigSnapshot, error)
}

type DefaultConfigUsecase struct {
	configRepo domain.ConfigSnapshotRepository
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewDefaultConfigUsecase(configRepo domain.ConfigSnapshotRepository, logger *zap.Logger) *DefaultConfigUsecase {
	return &DefaultConfigUsecase{
		configRepo: configRepo,
		validate:   validator.New(),
		logger:     logger,
	}
}

// GetLatest never fails: a missing or unreadable snapshot yields the documented defaults.
func (uc *DefaultConfigUsecase) GetLatest(ctx context.Context) (*domain.ConfigSnapshot, error) {
	snapshot, err := uc.configRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) {
			uc.logger.Warn("no config snapshot stored, using defaults")
		} else {
			uc.logger.Error("failed to load config snapshot, using defaults", zap.Error(err))
		}
		return domain.DefaultConfigSnapshot(), nil
	}
	return snapshot.WithDefaults(), nil
}

func (uc *DefaultConfigUsecase) CreateSnapshot(ctx context.Context, input *configdto.CreateSnapshotInput) (*domain.ConfigSnapshot, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	holdingTank := true
	if input.HoldingTankDefault != nil {
		holdingTank = *input.HoldingTankDefault
	}
	capMode := domain.DailyCapMode(input.DailyCapMode)
	if capMode == "" {
		capMode = domain.DailyCapPerEvaluation
	}

	snapshot := &domain.ConfigSnapshot{
		PairRatio:                domain.PairRatio(input.PairRatio),
		PairUnit:                 input.PairUnit,
		CommissionValue:          input.CommissionValue,
		DailyCapAmount:           input.DailyCapAmount,
		DailyCapMode:             capMode,
		ReferralBonusPercentage:  input.ReferralBonusPercentage,
		MatchingBonusGenerations: append([]float64(nil), input.MatchingBonusGenerations...),
		HoldingTankDefault:       holdingTank,
		CreatedBy:                input.CreatedBy,
	}
	if err := uc.configRepo.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to create config snapshot: %w", err)
	}

	uc.logger.Info("config snapshot created",
		zap.Int64("version", snapshot.Version),
		zap.String("pair_ratio", string(snapshot.PairRatio)),
		zap.String("created_by", snapshot.CreatedBy),
	)
	return snapshot, nil
}

func (uc *DefaultConfigUsecase) ListSnapshots(ctx context.Context, limit int) ([]*domain.ConfigSnapshot, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.configRepo.ListSnapshots(ctx, limit)
}
