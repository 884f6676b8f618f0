package placement

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
)

// Strategy finds the parent and side for a new member below root.
type Strategy interface {
	Name() domain.SpilloverStrategy
	Locate(ctx context.Context, members domain.MemberRepository, root *domain.Member) (*domain.Member, domain.Side, error)
}

type extremeStrategy struct {
	name domain.SpilloverStrategy
	side domain.Side
}

func (s extremeStrategy) Name() domain.SpilloverStrategy { return s.name }

// Locate follows the same-side pointer chain down to its last node.
func (s extremeStrategy) Locate(ctx context.Context, members domain.MemberRepository, root *domain.Member) (*domain.Member, domain.Side, error) {
	current := root
	visited := map[string]bool{root.ID: true}
	for {
		childID := current.ChildOn(s.side)
		if childID == "" {
			return current, s.side, nil
		}
		if visited[childID] {
			return nil, "", fmt.Errorf("cycle in %s chain at %s", s.side, childID)
		}
		visited[childID] = true
		child, err := members.GetMember(ctx, childID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to follow %s chain: %w", s.side, err)
		}
		current = child
	}
}

// weakerLegStrategy follows the leg with less lifetime PV. Subtree size is
// consulted only when both legs carry exactly the same PV.
type weakerLegStrategy struct{}

func (weakerLegStrategy) Name() domain.SpilloverStrategy { return domain.StrategyWeakerLeg }

func (weakerLegStrategy) Locate(ctx context.Context, members domain.MemberRepository, root *domain.Member) (*domain.Member, domain.Side, error) {
	var side domain.Side
	switch {
	case root.LeftLegPV < root.RightLegPV:
		side = domain.SideLeft
	case root.LeftLegPV > root.RightLegPV:
		side = domain.SideRight
	default:
		// equal volume: the structurally lighter leg, left on a full tie
		var err error
		side, err = lighterSide(ctx, members, root)
		if err != nil {
			return nil, "", err
		}
	}
	return descend(ctx, members, root, side)
}

type alternateStrategy struct {
	name domain.SpilloverStrategy
}

func (s alternateStrategy) Name() domain.SpilloverStrategy { return s.name }

func (s alternateStrategy) Locate(ctx context.Context, members domain.MemberRepository, root *domain.Member) (*domain.Member, domain.Side, error) {
	side, err := lighterSide(ctx, members, root)
	if err != nil {
		return nil, "", err
	}
	return descend(ctx, members, root, side)
}

// lighterSide picks the leg with fewer occupied nodes; ties go left.
func lighterSide(ctx context.Context, members domain.MemberRepository, root *domain.Member) (domain.Side, error) {
	left, err := countLeg(ctx, members, root.LeftChildID)
	if err != nil {
		return "", err
	}
	right, err := countLeg(ctx, members, root.RightChildID)
	if err != nil {
		return "", err
	}
	if right < left {
		return domain.SideRight, nil
	}
	return domain.SideLeft, nil
}

func countLeg(ctx context.Context, members domain.MemberRepository, childID string) (int64, error) {
	if childID == "" {
		return 0, nil
	}
	count, err := members.CountSubtree(ctx, childID)
	if err != nil {
		return 0, fmt.Errorf("failed to count subtree of %s: %w", childID, err)
	}
	return count, nil
}

// descend attaches directly to root when the chosen slot is empty, otherwise searches the leg.
func descend(ctx context.Context, members domain.MemberRepository, root *domain.Member, side domain.Side) (*domain.Member, domain.Side, error) {
	childID := root.ChildOn(side)
	if childID == "" {
		return root, side, nil
	}
	child, err := members.GetMember(ctx, childID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load %s leg: %w", side, err)
	}
	return firstEmptySlot(ctx, members, child)
}

// firstEmptySlot walks level by level, left before right, and returns the first
// node with a free child pointer. The left pointer is preferred on that node.
func firstEmptySlot(ctx context.Context, members domain.MemberRepository, root *domain.Member) (*domain.Member, domain.Side, error) {
	level := []*domain.Member{root}
	visited := map[string]bool{root.ID: true}
	for len(level) > 0 {
		var nextIDs []string
		for _, node := range level {
			if side, ok := node.FreeSide(); ok {
				return node, side, nil
			}
			for _, id := range []string{node.LeftChildID, node.RightChildID} {
				if !visited[id] {
					visited[id] = true
					nextIDs = append(nextIDs, id)
				}
			}
		}
		next, err := loadOrdered(ctx, members, nextIDs)
		if err != nil {
			return nil, "", err
		}
		level = next
	}
	return nil, "", fmt.Errorf("no free slot below %s", root.ID)
}

// loadOrdered fetches one level in a single query and keeps the requested order.
func loadOrdered(ctx context.Context, members domain.MemberRepository, ids []string) ([]*domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := members.GetMembers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree level: %w", err)
	}
	byID := make(map[string]*domain.Member, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	out := make([]*domain.Member, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: child %s", domain.ErrMemberNotFound, id)
		}
		out = append(out, m)
	}
	return out, nil
}
