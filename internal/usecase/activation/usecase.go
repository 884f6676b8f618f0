package activation

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-binary-engine/internal/usecase/commission"
	activationdto "github.com/LavaJover/shvark-binary-engine/internal/usecase/dto/activation"
	placementdto "github.com/LavaJover/shvark-binary-engine/internal/usecase/dto/placement"
	"github.com/LavaJover/shvark-binary-engine/internal/usecase/placement"
	"go.uber.org/zap"
)

type ActivationUsecase interface {
	Activate(ctx context.Context, input *activationdto.ActivateInput) (*activationdto.ActivationOutput, error)
	PlaceFromHoldingTank(ctx context.Context, input *activationdto.HoldingTankPlacementInput) (*activationdto.ActivationOutput, error)
	RecordPurchase(ctx context.Context, memberID string, pv float64) (*commission.CascadeResult, error)
	ListHoldingTank(ctx context.Context, sponsorID string) ([]*domain.Member, error)
}

type DefaultActivationUsecase struct {
	Engine    *commission.Engine
	Placement placement.PlacementUsecase
	Logger    *zap.Logger
	Metrics   *metrics.CommissionMetrics
}

func NewDefaultActivationUsecase(
	engine *commission.Engine,
	placementUsecase placement.PlacementUsecase,
	logger *zap.Logger,
	commissionMetrics *metrics.CommissionMetrics,
) *DefaultActivationUsecase {
	return &DefaultActivationUsecase{
		Engine:    engine,
		Placement: placementUsecase,
		Logger:    logger,
		Metrics:   commissionMetrics,
	}
}

// Activate marks the member active and either parks it in the holding tank or
// places it and settles its enrollment bonuses, all in one unit of work.
// Activating an active member is a no-op, whether it is placed or still parked.
func (uc *DefaultActivationUsecase) Activate(ctx context.Context, input *activationdto.ActivateInput) (*activationdto.ActivationOutput, error) {
	if input.OrderAmount < 0 {
		return nil, domain.ErrInvalidAmount
	}

	var output *activationdto.ActivationOutput
	res, err := uc.Engine.Run(ctx, "activate", func(ctx context.Context, c *commission.Cascade) error {
		output = &activationdto.ActivationOutput{MemberID: input.MemberID}
		uow := c.UnitOfWork()
		members := uow.Members()

		member, err := members.GetMemberForUpdate(ctx, input.MemberID)
		if err != nil {
			return err
		}
		if member.IsActive() && (member.IsPlaced || member.SponsorID != "") {
			output.AlreadyActive = true
			output.Parked = !member.IsPlaced
			return nil
		}

		if err := members.MarkActive(ctx, member.ID, input.OrderAmount); err != nil {
			return err
		}
		if err := uow.Ledger().EnsureAccounts(ctx, member.ID); err != nil {
			return err
		}

		if member.SponsorID == "" {
			output.Root = true
			if !member.IsPlaced {
				if err := members.MarkRoot(ctx, member.ID); err != nil {
					return err
				}
			}
			c.Notify(activatedNotification(member.ID))
			return nil
		}

		sponsor, err := members.GetMember(ctx, member.SponsorID)
		if err != nil {
			if errors.Is(err, domain.ErrMemberNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrSponsorNotFound, member.SponsorID)
			}
			return err
		}

		if sponsor.HoldingTankOverride.Resolve(c.Snapshot().HoldingTankDefault) {
			// bonuses wait until the member is placed
			output.Parked = true
		} else {
			output.Placement, err = uc.Placement.PlaceWithin(ctx, uow, &placementdto.PlaceInput{
				MemberID:  member.ID,
				SponsorID: sponsor.ID,
			})
			if err != nil {
				return err
			}
			if err := settleEnrollment(ctx, c, member, input.OrderAmount); err != nil {
				return err
			}
		}

		c.Notify(activatedNotification(member.ID))
		c.Notify(domain.Notification{
			MemberID: sponsor.ID,
			Kind:     domain.NotificationInfo,
			Title:    "Team Member Activated",
			Message:  fmt.Sprintf("%s has completed their purchase and is now active.", displayName(member)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	output.Credits = res.Credits
	uc.record(output)
	if !output.AlreadyActive {
		uc.Logger.Info("member activated",
			zap.String("member_id", output.MemberID),
			zap.Bool("parked", output.Parked),
			zap.Bool("root", output.Root),
			zap.Int("credits", len(output.Credits)),
		)
	}
	return output, nil
}

// PlaceFromHoldingTank places a parked member and pays the bonuses its activation deferred.
func (uc *DefaultActivationUsecase) PlaceFromHoldingTank(ctx context.Context, input *activationdto.HoldingTankPlacementInput) (*activationdto.ActivationOutput, error) {
	if _, err := domain.ParseSpilloverStrategy(string(input.Strategy)); err != nil {
		return nil, err
	}

	var output *activationdto.ActivationOutput
	res, err := uc.Engine.Run(ctx, "place_from_holding_tank", func(ctx context.Context, c *commission.Cascade) error {
		output = &activationdto.ActivationOutput{MemberID: input.MemberID}
		uow := c.UnitOfWork()

		member, err := uow.Members().GetMemberForUpdate(ctx, input.MemberID)
		if err != nil {
			return err
		}
		if !member.IsActive() {
			return fmt.Errorf("%w: %s", domain.ErrNotActive, member.ID)
		}

		output.Placement, err = uc.Placement.PlaceWithin(ctx, uow, &placementdto.PlaceInput{
			MemberID:       member.ID,
			SponsorID:      member.SponsorID,
			Strategy:       input.Strategy,
			TargetParentID: input.TargetParentID,
		})
		if err != nil {
			return err
		}
		if err := settleEnrollment(ctx, c, member, member.ActivationAmount); err != nil {
			return err
		}

		c.Notify(domain.Notification{
			MemberID: member.ID,
			Kind:     domain.NotificationInfo,
			Title:    "Placement Complete",
			Message:  "You have been placed in the network.",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	output.Credits = res.Credits
	uc.record(output)
	return output, nil
}

// RecordPurchase books order volume: personal PV for the buyer and leg volume
// for its placement upline. Parked members keep personal PV only.
func (uc *DefaultActivationUsecase) RecordPurchase(ctx context.Context, memberID string, pv float64) (*commission.CascadeResult, error) {
	if pv <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	return uc.Engine.Run(ctx, "record_purchase", func(ctx context.Context, c *commission.Cascade) error {
		members := c.UnitOfWork().Members()
		member, err := members.GetMember(ctx, memberID)
		if err != nil {
			return err
		}
		if err := members.AddPersonalPV(ctx, member.ID, pv); err != nil {
			return err
		}
		if !member.IsPlaced {
			uc.Logger.Info("purchase by unplaced member, upline volume not propagated",
				zap.String("member_id", member.ID),
				zap.Float64("pv", pv),
			)
			return nil
		}
		return c.Propagate(ctx, member.ID, pv)
	})
}

func (uc *DefaultActivationUsecase) ListHoldingTank(ctx context.Context, sponsorID string) ([]*domain.Member, error) {
	return uc.Engine.Store.Members().ListHoldingTank(ctx, sponsorID)
}

// settleEnrollment pays the referral bonus and propagates package volume.
// An order-driven activation uses the order amount as base and no package PV.
func settleEnrollment(ctx context.Context, c *commission.Cascade, member *domain.Member, orderAmount float64) error {
	base, pv := member.EnrollmentPackagePrice, member.EnrollmentPackagePV
	if orderAmount > 0 {
		base, pv = orderAmount, 0
	}

	if base > 0 {
		if err := c.DistributeReferral(ctx, member.SponsorID, member.ID, base); err != nil {
			return err
		}
	}
	if pv > 0 {
		if err := c.UnitOfWork().Members().AddPersonalPV(ctx, member.ID, pv); err != nil {
			return err
		}
		if err := c.Propagate(ctx, member.ID, pv); err != nil {
			return err
		}
	}
	return nil
}

func (uc *DefaultActivationUsecase) record(output *activationdto.ActivationOutput) {
	switch {
	case output.AlreadyActive:
	case output.Placement != nil:
		uc.Metrics.RecordPlacement(string(output.Placement.Strategy))
	case output.Parked:
		uc.Metrics.RecordParked()
	}
}

func activatedNotification(memberID string) domain.Notification {
	return domain.Notification{
		MemberID: memberID,
		Kind:     domain.NotificationSuccess,
		Title:    "Account Activated",
		Message:  "Your account is now active and ready for business!",
	}
}

func displayName(m *domain.Member) string {
	if m.Username != "" {
		return m.Username
	}
	return m.ID
}
