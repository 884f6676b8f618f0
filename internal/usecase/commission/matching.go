package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// DistributeMatching pays the earner's sponsor chain a share of a binary payout.
func (c *Cascade) DistributeMatching(ctx context.Context, earnerID string, binaryPayout float64) error {
	c.enqueue(matchingEffect{earnerID: earnerID, binaryPayout: binaryPayout})
	return c.drain(ctx)
}

type matchingEffect struct {
	earnerID     string
	binaryPayout float64
}

// apply walks sponsor links only; placement parents play no part here.
func (e matchingEffect) apply(ctx context.Context, c *Cascade) error {
	members := c.uow.Members()
	earner, err := members.GetMember(ctx, e.earnerID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil
		}
		return err
	}

	payout := decimal.NewFromFloat(e.binaryPayout)
	sponsorID := earner.SponsorID
	for generation, percentage := range c.snapshot.MatchingBonusGenerations {
		if sponsorID == "" {
			break
		}
		sponsor, err := members.GetMember(ctx, sponsorID)
		if err != nil {
			if errors.Is(err, domain.ErrMemberNotFound) {
				break
			}
			return err
		}

		amount := payout.Mul(decimal.NewFromFloat(percentage)).Div(decimal.NewFromInt(100)).InexactFloat64()
		if amount > 0 {
			c.enqueue(creditEffect{
				credit: domain.Credit{
					MemberID:        sponsor.ID,
					Type:            domain.CommissionMatchingBonus,
					Amount:          amount,
					Description:     fmt.Sprintf("Matching Bonus (generation %d) from member %s", generation+1, earner.ID),
					RelatedMemberID: earner.ID,
				},
				checkRank: true,
			})
		}
		sponsorID = sponsor.SponsorID
	}
	return nil
}
