package placementdto

import "github.com/LavaJover/shvark-binary-engine/internal/domain"

type PlaceInput struct {
	MemberID  string
	SponsorID string
	// Strategy overrides the sponsor's stored preference when set.
	Strategy domain.SpilloverStrategy
	// TargetParentID roots the search at an already placed node instead of the sponsor.
	TargetParentID string
}
