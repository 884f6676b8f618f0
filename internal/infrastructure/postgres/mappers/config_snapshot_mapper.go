package mappers

import (
	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/models"
	"github.com/lib/pq"
)

func ToDomainConfigSnapshot(model *models.ConfigSnapshotModel) *domain.ConfigSnapshot {
	return &domain.ConfigSnapshot{
		ID:                       model.ID,
		Version:                  model.Version,
		PairRatio:                domain.PairRatio(model.PairRatio),
		PairUnit:                 model.PairUnit,
		CommissionValue:          model.CommissionValue,
		DailyCapAmount:           model.DailyCapAmount,
		DailyCapMode:             domain.DailyCapMode(model.DailyCapMode),
		ReferralBonusPercentage:  model.ReferralBonusPercentage,
		MatchingBonusGenerations: append([]float64(nil), model.MatchingBonusGenerations...),
		HoldingTankDefault:       model.HoldingTankDefault,
		CreatedBy:                model.CreatedBy,
		CreatedAt:                model.CreatedAt,
	}
}

func ToGORMConfigSnapshot(snapshot *domain.ConfigSnapshot) *models.ConfigSnapshotModel {
	return &models.ConfigSnapshotModel{
		ID:                       snapshot.ID,
		Version:                  snapshot.Version,
		PairRatio:                string(snapshot.PairRatio),
		PairUnit:                 snapshot.PairUnit,
		CommissionValue:          snapshot.CommissionValue,
		DailyCapAmount:           snapshot.DailyCapAmount,
		DailyCapMode:             string(snapshot.DailyCapMode),
		ReferralBonusPercentage:  snapshot.ReferralBonusPercentage,
		MatchingBonusGenerations: pq.Float64Array(snapshot.MatchingBonusGenerations),
		HoldingTankDefault:       snapshot.HoldingTankDefault,
		CreatedBy:                snapshot.CreatedBy,
		CreatedAt:                snapshot.CreatedAt,
	}
}
