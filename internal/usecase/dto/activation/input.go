package activationdto

import "github.com/LavaJover/shvark-binary-engine/internal/domain"

type ActivateInput struct {
	MemberID string
	// OrderAmount > 0 means activation by a paid order; its product volume
	// is propagated by the purchase flow, not here.
	OrderAmount float64
}

type HoldingTankPlacementInput struct {
	MemberID       string
	Strategy       domain.SpilloverStrategy
	TargetParentID string
}
