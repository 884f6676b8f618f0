package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"go.uber.org/zap"
)

// CheckRank raises memberID to the highest rank its total earnings qualify for.
func (c *Cascade) CheckRank(ctx context.Context, memberID string) error {
	c.enqueue(rankEffect{memberID: memberID})
	return c.drain(ctx)
}

type rankEffect struct {
	memberID string
}

func (e rankEffect) apply(ctx context.Context, c *Cascade) error {
	member, err := c.uow.Members().GetMember(ctx, e.memberID)
	if err != nil {
		return err
	}
	record, err := c.uow.Ledger().GetCommissionRecord(ctx, e.memberID)
	if err != nil {
		if errors.Is(err, domain.ErrCommissionNotFound) {
			return nil
		}
		return err
	}

	target := domain.RankForEarnings(record.TotalEarned)
	if !member.Rank.Less(target) {
		return nil
	}
	if err := c.uow.Members().UpdateRank(ctx, member.ID, target); err != nil {
		return fmt.Errorf("failed to update rank for %s: %w", member.ID, err)
	}
	c.result.RankChanges = append(c.result.RankChanges, RankChange{MemberID: member.ID, From: member.Rank, To: target})
	c.engine.Logger.Info("rank advanced",
		zap.String("member_id", member.ID),
		zap.String("from", string(member.Rank)),
		zap.String("to", string(target)),
		zap.Float64("total_earned", record.TotalEarned),
	)

	// the bonus credit does not re-check rank; a later credit will
	c.enqueue(creditEffect{
		credit: domain.Credit{
			MemberID:    member.ID,
			Type:        domain.CommissionRankAchievement,
			Amount:      domain.RankBonus(target),
			Description: fmt.Sprintf("Rank Achievement Bonus: %s", target),
		},
	})
	c.Notify(domain.Notification{
		MemberID: member.ID,
		Kind:     domain.NotificationSuccess,
		Title:    "Rank Advanced",
		Message:  fmt.Sprintf("Congratulations! You have reached %s rank.", target),
	})
	return nil
}
