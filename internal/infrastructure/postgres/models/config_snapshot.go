package models

import (
	"time"

	"github.com/lib/pq"
)

type ConfigSnapshotModel struct {
	ID                       string          `gorm:"primaryKey;type:uuid"`
	Version                  int64           `gorm:"uniqueIndex;not null"`
	PairRatio                string          `gorm:"not null"`
	PairUnit                 float64         `gorm:"not null"`
	CommissionValue          float64         `gorm:"not null"`
	DailyCapAmount           float64         `gorm:"not null"`
	DailyCapMode             string          `gorm:"not null;default:per_evaluation"`
	ReferralBonusPercentage  float64         `gorm:"not null"`
	MatchingBonusGenerations pq.Float64Array `gorm:"type:double precision[]"`
	HoldingTankDefault       bool            `gorm:"not null"`
	CreatedBy                string
	CreatedAt                time.Time
}

func (ConfigSnapshotModel) TableName() string { return "config_snapshots" }
