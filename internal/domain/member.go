package domain

import (
	"context"
	"fmt"
	"time"
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

type MemberStatus string

const (
	MemberStatusPending MemberStatus = "pending"
	MemberStatusActive  MemberStatus = "active"
)

type SpilloverStrategy string

const (
	StrategyExtremeLeft  SpilloverStrategy = "extreme_left"
	StrategyExtremeRight SpilloverStrategy = "extreme_right"
	StrategyWeakerLeg    SpilloverStrategy = "weaker_leg"
	StrategyAlternate    SpilloverStrategy = "alternate"
	StrategyBalanced     SpilloverStrategy = "balanced"
)

// ParseSpilloverStrategy accepts an empty string, meaning "use the sponsor's preference".
func ParseSpilloverStrategy(s string) (SpilloverStrategy, error) {
	switch st := SpilloverStrategy(s); st {
	case "", StrategyExtremeLeft, StrategyExtremeRight, StrategyWeakerLeg, StrategyAlternate, StrategyBalanced:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
}

type HoldingTankOverride string

const (
	HoldingTankSystem   HoldingTankOverride = "system"
	HoldingTankEnabled  HoldingTankOverride = "enabled"
	HoldingTankDisabled HoldingTankOverride = "disabled"
)

// Resolve returns true when new recruits must be parked in the holding tank.
func (o HoldingTankOverride) Resolve(systemDefault bool) bool {
	switch o {
	case HoldingTankEnabled:
		return true
	case HoldingTankDisabled:
		return false
	default:
		return systemDefault
	}
}

type Member struct {
	ID       string
	Username string
	// SponsorID defines the sponsor tree; it is independent from ParentID.
	SponsorID string

	ParentID     string
	LeftChildID  string
	RightChildID string
	Position     Side

	CurrentLeftPV  float64
	CurrentRightPV float64
	LeftLegPV      float64
	RightLegPV     float64
	PersonalPV     float64

	Rank                Rank
	Status              MemberStatus
	IsPlaced            bool
	SpilloverPreference SpilloverStrategy
	HoldingTankOverride HoldingTankOverride

	EnrollmentPackagePrice float64
	EnrollmentPackagePV    float64
	// ActivationAmount is the order amount that activated the member, kept
	// so bonuses deferred by the holding tank can be paid on placement.
	ActivationAmount float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *Member) ChildOn(side Side) string {
	if side == SideLeft {
		return m.LeftChildID
	}
	return m.RightChildID
}

// SideOf reports which leg childID hangs on, judged by this member's own pointers.
func (m *Member) SideOf(childID string) (Side, bool) {
	switch {
	case childID == "":
		return "", false
	case m.LeftChildID == childID:
		return SideLeft, true
	case m.RightChildID == childID:
		return SideRight, true
	}
	return "", false
}

func (m *Member) FreeSide() (Side, bool) {
	if m.LeftChildID == "" {
		return SideLeft, true
	}
	if m.RightChildID == "" {
		return SideRight, true
	}
	return "", false
}

func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

type Placement struct {
	MemberID string
	ParentID string
	Position Side
	Strategy SpilloverStrategy
}

type MemberRepository interface {
	CreateMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, memberID string) (*Member, error)
	// GetMemberForUpdate locks the row until the surrounding unit of work ends.
	GetMemberForUpdate(ctx context.Context, memberID string) (*Member, error)
	GetMembers(ctx context.Context, memberIDs []string) ([]*Member, error)

	// MarkPlaced sets parent and position only if the member is not placed yet.
	MarkPlaced(ctx context.Context, memberID, parentID string, position Side) error
	MarkRoot(ctx context.Context, memberID string) error
	// AttachChild sets the parent's child pointer only if that slot is empty.
	AttachChild(ctx context.Context, parentID string, side Side, childID string) error
	MarkActive(ctx context.Context, memberID string, activationAmount float64) error

	AddLegVolume(ctx context.Context, memberID string, side Side, amount float64) error
	DeductVolume(ctx context.Context, memberID string, left, right float64) error
	AddPersonalPV(ctx context.Context, memberID string, amount float64) error
	UpdateRank(ctx context.Context, memberID string, rank Rank) error

	CountSubtree(ctx context.Context, rootID string) (int64, error)
	ListPairingCandidates(ctx context.Context) ([]string, error)
	ListHoldingTank(ctx context.Context, sponsorID string) ([]*Member, error)
}
