package commission

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCalculatePairs(t *testing.T) {
	tests := []struct {
		name        string
		ratio       domain.PairRatio
		left, right float64
		want        PairResult
	}{
		{
			name:  "one to one with remainder",
			ratio: domain.PairRatioOneToOne,
			left:  250, right: 120,
			want: PairResult{Pairs: 1, ConsumedLeft: 100, ConsumedRight: 100, Payout: 10},
		},
		{
			name:  "one to two short on the heavy leg",
			ratio: domain.PairRatioOneToTwo,
			left:  300, right: 150,
			want: PairResult{},
		},
		{
			name:  "one to two",
			ratio: domain.PairRatioOneToTwo,
			left:  300, right: 500,
			want: PairResult{Pairs: 2, ConsumedLeft: 200, ConsumedRight: 400, Payout: 20},
		},
		{
			name:  "two to one",
			ratio: domain.PairRatioTwoToOne,
			left:  500, right: 300,
			want: PairResult{Pairs: 2, ConsumedLeft: 400, ConsumedRight: 200, Payout: 20},
		},
		{
			name:  "payout clamped to cap",
			ratio: domain.PairRatioOneToOne,
			left:  10000, right: 10000,
			want: PairResult{Pairs: 100, ConsumedLeft: 10000, ConsumedRight: 10000, Payout: 500, Capped: true},
		},
		{
			name:  "empty leg",
			ratio: domain.PairRatioOneToOne,
			left:  1000, right: 0,
			want: PairResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := domain.DefaultConfigSnapshot()
			snapshot.PairRatio = tt.ratio
			assert.Equal(t, tt.want, CalculatePairs(tt.left, tt.right, snapshot))
		})
	}
}

func TestEvaluatePairing_FlushesAndPays(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, notifier := newTestEngine(store)
	addMember(t, store, "m", "")
	setLegs(t, store, "m", 250, 120)

	res, err := engine.EvaluatePairing(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Pairs)
	assert.Equal(t, 10.0, res.Total(domain.CommissionBinaryBonus))

	m := member(t, store, "m")
	assert.Equal(t, 150.0, m.CurrentLeftPV)
	assert.Equal(t, 20.0, m.CurrentRightPV)
	assert.Equal(t, 250.0, m.LeftLegPV, "aggregate leg volume is never consumed")
	assert.Equal(t, 10.0, balance(t, store, "m"))
	assert.Equal(t, 10.0, totalEarned(t, store, "m"))
	assert.Equal(t, []string{"Binary Commission"}, notifier.titles())

	wallet, err := store.Ledger().GetWallet(ctx, "m")
	require.NoError(t, err)
	require.Len(t, wallet.Transactions, 1)
	assert.Equal(t, domain.CommissionBinaryBonus, wallet.Transactions[0].Type)
	assert.Equal(t, "Binary Commission: 1 pairs matched", wallet.Transactions[0].Description)
}

func TestEvaluatePairing_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	addMember(t, store, "m", "")
	setLegs(t, store, "m", 250, 120)

	_, err := engine.EvaluatePairing(ctx, "m")
	require.NoError(t, err)
	res, err := engine.EvaluatePairing(ctx, "m")
	require.NoError(t, err)

	assert.Zero(t, res.Pairs)
	assert.Empty(t, res.Credits)
	m := member(t, store, "m")
	assert.Equal(t, 150.0, m.CurrentLeftPV)
	assert.Equal(t, 20.0, m.CurrentRightPV)
	assert.Equal(t, 10.0, balance(t, store, "m"))
}

func TestEvaluatePairing_RatioFromSnapshot(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	saveSnapshot(t, store, func(s *domain.ConfigSnapshot) { s.PairRatio = domain.PairRatioOneToTwo })
	addMember(t, store, "m", "")
	setLegs(t, store, "m", 300, 150)

	res, err := engine.EvaluatePairing(context.Background(), "m")
	require.NoError(t, err)
	assert.Zero(t, res.Pairs)
	assert.Equal(t, 300.0, member(t, store, "m").CurrentLeftPV)
	assert.Zero(t, balance(t, store, "m"))
}

func TestEvaluatePairing_PerEvaluationCap(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	saveSnapshot(t, store, func(s *domain.ConfigSnapshot) { s.DailyCapAmount = 25 })
	addMember(t, store, "m", "")

	for i := 0; i < 2; i++ {
		setLegs(t, store, "m", 300, 300)
		res, err := engine.EvaluatePairing(context.Background(), "m")
		require.NoError(t, err)
		assert.Equal(t, 1, res.CappedPayouts)
	}

	m := member(t, store, "m")
	assert.Zero(t, m.CurrentLeftPV, "capped pairs are still flushed")
	assert.Equal(t, 50.0, balance(t, store, "m"))
}

func TestEvaluatePairing_RollingCap(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	saveSnapshot(t, store, func(s *domain.ConfigSnapshot) {
		s.DailyCapAmount = 25
		s.DailyCapMode = domain.DailyCapRolling24h
	})
	addMember(t, store, "m", "")

	setLegs(t, store, "m", 200, 200)
	res, err := engine.EvaluatePairing(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.Total(domain.CommissionBinaryBonus))

	setLegs(t, store, "m", 200, 200)
	res, err = engine.EvaluatePairing(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Total(domain.CommissionBinaryBonus))
	assert.Equal(t, 1, res.CappedPayouts)

	setLegs(t, store, "m", 100, 100)
	res, err = engine.EvaluatePairing(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Pairs)
	assert.Empty(t, res.Credits)

	m := member(t, store, "m")
	assert.Zero(t, m.CurrentLeftPV)
	assert.Zero(t, m.CurrentRightPV)
	assert.Equal(t, 25.0, balance(t, store, "m"))
}

func TestEvaluatePairing_UsesDefaultsWithoutSnapshot(t *testing.T) {
	store := memory.NewStore()
	engine := NewEngine(store, nil, nil, zap.NewNop(), nil)
	addMember(t, store, "m", "")
	setLegs(t, store, "m", 100, 100)

	res, err := engine.EvaluatePairing(context.Background(), "m")
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Total(domain.CommissionBinaryBonus))
}
