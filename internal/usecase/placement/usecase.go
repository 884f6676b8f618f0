package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/metrics"
	placementdto "github.com/LavaJover/shvark-binary-engine/internal/usecase/dto/placement"
	"go.uber.org/zap"
)

const defaultMaxRetries = 3

type PlacementUsecase interface {
	Place(ctx context.Context, input *placementdto.PlaceInput) (*domain.Placement, error)
	PlaceWithin(ctx context.Context, uow domain.UnitOfWork, input *placementdto.PlaceInput) (*domain.Placement, error)
	Subtree(ctx context.Context, rootID string, depth int) ([]*domain.Member, error)
}

type DefaultPlacementUsecase struct {
	Store      domain.Store
	Logger     *zap.Logger
	Metrics    *metrics.CommissionMetrics
	MaxRetries int

	strategies map[domain.SpilloverStrategy]Strategy
}

func NewDefaultPlacementUsecase(
	store domain.Store,
	logger *zap.Logger,
	commissionMetrics *metrics.CommissionMetrics,
	maxRetries int,
) *DefaultPlacementUsecase {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	uc := &DefaultPlacementUsecase{
		Store:      store,
		Logger:     logger,
		Metrics:    commissionMetrics,
		MaxRetries: maxRetries,
		strategies: make(map[domain.SpilloverStrategy]Strategy),
	}
	uc.RegisterStrategy(extremeStrategy{name: domain.StrategyExtremeLeft, side: domain.SideLeft})
	uc.RegisterStrategy(extremeStrategy{name: domain.StrategyExtremeRight, side: domain.SideRight})
	uc.RegisterStrategy(weakerLegStrategy{})
	uc.RegisterStrategy(alternateStrategy{name: domain.StrategyAlternate})
	uc.RegisterStrategy(alternateStrategy{name: domain.StrategyBalanced})
	return uc
}

func (uc *DefaultPlacementUsecase) RegisterStrategy(strategy Strategy) {
	uc.strategies[strategy.Name()] = strategy
}

// Place runs the search and both writes in one unit of work. A lost slot race
// replays the whole placement against fresh tree state.
func (uc *DefaultPlacementUsecase) Place(ctx context.Context, input *placementdto.PlaceInput) (*domain.Placement, error) {
	var (
		placement *domain.Placement
		err       error
	)
	for attempt := 1; attempt <= uc.MaxRetries; attempt++ {
		err = uc.Store.InTx(ctx, func(uow domain.UnitOfWork) error {
			var txErr error
			placement, txErr = uc.PlaceWithin(ctx, uow, input)
			return txErr
		})
		if err == nil {
			uc.Metrics.RecordPlacement(string(placement.Strategy))
			uc.Logger.Info("member placed",
				zap.String("member_id", placement.MemberID),
				zap.String("parent_id", placement.ParentID),
				zap.String("position", string(placement.Position)),
				zap.String("strategy", string(placement.Strategy)),
			)
			return placement, nil
		}
		if !domain.IsRetryable(err) {
			break
		}
		uc.Metrics.RecordRetry("place")
		uc.Logger.Warn("placement conflict, retrying",
			zap.String("member_id", input.MemberID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	uc.Metrics.RecordError("place")
	return nil, err
}

// PlaceWithin lets callers compose placement with other writes in their own unit of work.
func (uc *DefaultPlacementUsecase) PlaceWithin(ctx context.Context, uow domain.UnitOfWork, input *placementdto.PlaceInput) (*domain.Placement, error) {
	members := uow.Members()

	member, err := members.GetMemberForUpdate(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.IsPlaced || member.ParentID != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyPlaced, member.ID)
	}

	sponsorID := input.SponsorID
	if sponsorID == "" {
		sponsorID = member.SponsorID
	}
	sponsor, err := members.GetMember(ctx, sponsorID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSponsorNotFound, sponsorID)
		}
		return nil, err
	}

	root := sponsor
	if input.TargetParentID != "" && input.TargetParentID != sponsor.ID {
		root, err = members.GetMember(ctx, input.TargetParentID)
		if err != nil {
			return nil, err
		}
	}
	if !root.IsPlaced {
		return nil, fmt.Errorf("%w: %s", domain.ErrParentNotPlaced, root.ID)
	}

	strategy, err := uc.resolveStrategy(input.Strategy, sponsor)
	if err != nil {
		return nil, err
	}

	parent, side, err := strategy.Locate(ctx, members, root)
	if err != nil {
		return nil, fmt.Errorf("failed to locate slot for %s: %w", member.ID, err)
	}

	if err := members.MarkPlaced(ctx, member.ID, parent.ID, side); err != nil {
		return nil, err
	}
	if err := members.AttachChild(ctx, parent.ID, side, member.ID); err != nil {
		return nil, err
	}

	return &domain.Placement{
		MemberID: member.ID,
		ParentID: parent.ID,
		Position: side,
		Strategy: strategy.Name(),
	}, nil
}

// resolveStrategy prefers the explicit input, then the sponsor's preference, then weaker_leg.
func (uc *DefaultPlacementUsecase) resolveStrategy(requested domain.SpilloverStrategy, sponsor *domain.Member) (Strategy, error) {
	name := requested
	if name == "" {
		name = sponsor.SpilloverPreference
	}
	if name == "" {
		name = domain.StrategyWeakerLeg
	}
	strategy, ok := uc.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStrategy, name)
	}
	return strategy, nil
}
