package domain

import (
	"context"
	"fmt"
	"time"
)

type PairRatio string

const (
	PairRatioOneToOne PairRatio = "1:1"
	PairRatioOneToTwo PairRatio = "1:2"
	PairRatioTwoToOne PairRatio = "2:1"
)

// Weights returns how many pair units each leg gives up per matched pair.
func (r PairRatio) Weights() (left, right int64, err error) {
	switch r {
	case PairRatioOneToOne:
		return 1, 1, nil
	case PairRatioOneToTwo:
		return 1, 2, nil
	case PairRatioTwoToOne:
		return 2, 1, nil
	}
	return 0, 0, fmt.Errorf("%w: unknown pair ratio %q", ErrInvalidConfig, r)
}

type DailyCapMode string

const (
	// DailyCapPerEvaluation clamps every single pairing payout.
	DailyCapPerEvaluation DailyCapMode = "per_evaluation"
	// DailyCapRolling24h clamps the sum of binary payouts over the last 24 hours.
	DailyCapRolling24h DailyCapMode = "rolling_24h"
)

const (
	DefaultPairUnit                = 100
	DefaultCommissionValue         = 10
	DefaultDailyCapAmount          = 500
	DefaultReferralBonusPercentage = 10
)

// ConfigSnapshot is immutable once stored; a rule edit creates a new version.
type ConfigSnapshot struct {
	ID                       string
	Version                  int64
	PairRatio                PairRatio
	PairUnit                 float64
	CommissionValue          float64
	DailyCapAmount           float64
	DailyCapMode             DailyCapMode
	ReferralBonusPercentage  float64
	MatchingBonusGenerations []float64
	HoldingTankDefault       bool
	CreatedBy                string
	CreatedAt                time.Time
}

func DefaultConfigSnapshot() *ConfigSnapshot {
	return &ConfigSnapshot{
		PairRatio:                PairRatioOneToOne,
		PairUnit:                 DefaultPairUnit,
		CommissionValue:          DefaultCommissionValue,
		DailyCapAmount:           DefaultDailyCapAmount,
		DailyCapMode:             DailyCapPerEvaluation,
		ReferralBonusPercentage:  DefaultReferralBonusPercentage,
		MatchingBonusGenerations: []float64{10, 5, 2},
		HoldingTankDefault:       true,
	}
}

// WithDefaults returns a copy where unusable fields fall back to the defaults.
func (s *ConfigSnapshot) WithDefaults() *ConfigSnapshot {
	if s == nil {
		return DefaultConfigSnapshot()
	}
	def := DefaultConfigSnapshot()
	out := *s
	out.MatchingBonusGenerations = append([]float64(nil), s.MatchingBonusGenerations...)
	if _, _, err := out.PairRatio.Weights(); err != nil {
		out.PairRatio = def.PairRatio
	}
	if out.PairUnit <= 0 {
		out.PairUnit = def.PairUnit
	}
	if out.CommissionValue < 0 {
		out.CommissionValue = def.CommissionValue
	}
	if out.DailyCapAmount <= 0 {
		out.DailyCapAmount = def.DailyCapAmount
	}
	if out.DailyCapMode != DailyCapRolling24h {
		out.DailyCapMode = DailyCapPerEvaluation
	}
	if out.ReferralBonusPercentage < 0 {
		out.ReferralBonusPercentage = def.ReferralBonusPercentage
	}
	return &out
}

type ConfigSnapshotRepository interface {
	GetLatest(ctx context.Context) (*ConfigSnapshot, error)
	// CreateSnapshot assigns the next version; existing rows are never updated.
	CreateSnapshot(ctx context.Context, snapshot *ConfigSnapshot) error
	ListSnapshots(ctx context.Context, limit int) ([]*ConfigSnapshot, error)
}

// ConfigProvider resolves the rule set governing a new top-level event.
type ConfigProvider interface {
	GetLatest(ctx context.Context) (*ConfigSnapshot, error)
}
