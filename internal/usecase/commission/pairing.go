package commission

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PairResult struct {
	Pairs         int64
	ConsumedLeft  float64
	ConsumedRight float64
	Payout        float64
	Capped        bool
}

// CalculatePairs matches leg volume in whole pair units under the snapshot's
// ratio and clamps the payout to the daily cap amount.
func CalculatePairs(left, right float64, snapshot *domain.ConfigSnapshot) PairResult {
	leftWeight, rightWeight, err := snapshot.PairRatio.Weights()
	if err != nil || snapshot.PairUnit <= 0 || left <= 0 || right <= 0 {
		return PairResult{}
	}

	unit := decimal.NewFromFloat(snapshot.PairUnit)
	leftUnit := unit.Mul(decimal.NewFromInt(leftWeight))
	rightUnit := unit.Mul(decimal.NewFromInt(rightWeight))

	possibleLeft := decimal.NewFromFloat(left).Div(leftUnit).Floor()
	possibleRight := decimal.NewFromFloat(right).Div(rightUnit).Floor()
	pairs := decimal.Min(possibleLeft, possibleRight)
	if !pairs.IsPositive() {
		return PairResult{}
	}

	payout := pairs.Mul(decimal.NewFromFloat(snapshot.CommissionValue))
	capAmount := decimal.NewFromFloat(snapshot.DailyCapAmount)
	capped := false
	if payout.GreaterThan(capAmount) {
		payout = capAmount
		capped = true
	}

	return PairResult{
		Pairs:         pairs.IntPart(),
		ConsumedLeft:  pairs.Mul(leftUnit).InexactFloat64(),
		ConsumedRight: pairs.Mul(rightUnit).InexactFloat64(),
		Payout:        payout.InexactFloat64(),
		Capped:        capped,
	}
}

// EvaluatePairing flushes matched volume for memberID and queues the payout.
func (c *Cascade) EvaluatePairing(ctx context.Context, memberID string) error {
	c.enqueue(pairingEffect{memberID: memberID})
	return c.drain(ctx)
}

type pairingEffect struct {
	memberID string
}

func (e pairingEffect) apply(ctx context.Context, c *Cascade) error {
	members := c.uow.Members()
	member, err := members.GetMemberForUpdate(ctx, e.memberID)
	if err != nil {
		return err
	}

	res := CalculatePairs(member.CurrentLeftPV, member.CurrentRightPV, c.snapshot)
	if res.Pairs == 0 {
		return nil
	}

	if c.snapshot.DailyCapMode == domain.DailyCapRolling24h {
		if res, err = c.applyRollingCap(ctx, member.ID, res); err != nil {
			return err
		}
	}

	// flush happens even when the cap swallowed the whole payout
	if err := members.DeductVolume(ctx, member.ID, res.ConsumedLeft, res.ConsumedRight); err != nil {
		return fmt.Errorf("failed to flush volume for %s: %w", member.ID, err)
	}

	c.result.Pairs += res.Pairs
	if res.Capped {
		c.result.CappedPayouts++
		c.engine.Logger.Info("binary payout capped",
			zap.String("member_id", member.ID),
			zap.Int64("pairs", res.Pairs),
			zap.Float64("payout", res.Payout),
		)
	}
	if res.Payout <= 0 {
		return nil
	}

	c.enqueue(
		creditEffect{
			credit: domain.Credit{
				MemberID:    member.ID,
				Type:        domain.CommissionBinaryBonus,
				Amount:      res.Payout,
				Description: fmt.Sprintf("Binary Commission: %d pairs matched", res.Pairs),
			},
			checkRank: true,
			notification: &domain.Notification{
				MemberID: member.ID,
				Kind:     domain.NotificationSuccess,
				Title:    "Binary Commission",
				Message:  fmt.Sprintf("You matched %d pairs and earned $%.2f.", res.Pairs, res.Payout),
			},
		},
		matchingEffect{earnerID: member.ID, binaryPayout: res.Payout},
	)
	return nil
}

// applyRollingCap limits the payout to what is left of the cap over the last 24 hours.
func (c *Cascade) applyRollingCap(ctx context.Context, memberID string, res PairResult) (PairResult, error) {
	since := c.engine.now().Add(-24 * time.Hour)
	earned, err := c.uow.Ledger().SumEarnedSince(ctx, memberID, domain.CommissionBinaryBonus, since)
	if err != nil {
		return res, fmt.Errorf("failed to sum binary earnings: %w", err)
	}
	remaining := decimal.NewFromFloat(c.snapshot.DailyCapAmount).Sub(decimal.NewFromFloat(earned))
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	if decimal.NewFromFloat(res.Payout).GreaterThan(remaining) {
		res.Payout = remaining.InexactFloat64()
		res.Capped = true
	}
	return res, nil
}
