package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DistributeReferral pays the direct sponsor once for a new member's package.
func (c *Cascade) DistributeReferral(ctx context.Context, sponsorID, newMemberID string, packagePrice float64) error {
	if sponsorID == "" || packagePrice <= 0 {
		return nil
	}
	sponsor, err := c.uow.Members().GetMember(ctx, sponsorID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			c.engine.Logger.Warn("referral sponsor missing, bonus skipped",
				zap.String("sponsor_id", sponsorID),
				zap.String("member_id", newMemberID),
			)
			return nil
		}
		return err
	}

	amount := decimal.NewFromFloat(packagePrice).
		Mul(decimal.NewFromFloat(c.snapshot.ReferralBonusPercentage)).
		Div(decimal.NewFromInt(100)).
		InexactFloat64()
	if amount <= 0 {
		return nil
	}

	c.enqueue(creditEffect{
		credit: domain.Credit{
			MemberID:        sponsor.ID,
			Type:            domain.CommissionDirectReferral,
			Amount:          amount,
			Description:     fmt.Sprintf("Referral Bonus for new user %s", newMemberID),
			RelatedMemberID: newMemberID,
		},
		checkRank: true,
		notification: &domain.Notification{
			MemberID: sponsor.ID,
			Kind:     domain.NotificationSuccess,
			Title:    "Referral Bonus",
			Message:  fmt.Sprintf("You earned $%.2f for a new direct referral.", amount),
		},
	})
	return c.drain(ctx)
}
