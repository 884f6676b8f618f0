package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
)

type memberRepo struct {
	v *view
}

func (r *memberRepo) CreateMember(ctx context.Context, member *domain.Member) error {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	st := r.v.state()
	if _, ok := st.members[member.ID]; ok {
		return fmt.Errorf("member %s already exists", member.ID)
	}
	m := cloneMember(member)
	if m.Rank == "" {
		m.Rank = domain.RankBronze
	}
	if m.Status == "" {
		m.Status = domain.MemberStatusPending
	}
	if m.HoldingTankOverride == "" {
		m.HoldingTankOverride = domain.HoldingTankSystem
	}
	now := r.v.now()
	m.CreatedAt, m.UpdatedAt = now, now
	st.members[m.ID] = m
	st.order = append(st.order, m.ID)
	return nil
}

func (r *memberRepo) GetMember(ctx context.Context, memberID string) (*domain.Member, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	m, ok := r.v.state().members[memberID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}
	return cloneMember(m), nil
}

func (r *memberRepo) GetMemberForUpdate(ctx context.Context, memberID string) (*domain.Member, error) {
	return r.GetMember(ctx, memberID)
}

func (r *memberRepo) GetMembers(ctx context.Context, memberIDs []string) ([]*domain.Member, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	out := make([]*domain.Member, 0, len(memberIDs))
	for _, id := range memberIDs {
		if m, ok := r.v.state().members[id]; ok {
			out = append(out, cloneMember(m))
		}
	}
	return out, nil
}

// mutate runs fn on the stored member under the view lock.
func (r *memberRepo) mutate(memberID string, fn func(m *domain.Member) error) error {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	m, ok := r.v.state().members[memberID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}
	if err := fn(m); err != nil {
		return err
	}
	m.UpdatedAt = r.v.now()
	return nil
}

func (r *memberRepo) MarkPlaced(ctx context.Context, memberID, parentID string, position domain.Side) error {
	return r.mutate(memberID, func(m *domain.Member) error {
		if m.IsPlaced || m.ParentID != "" {
			return domain.ErrAlreadyPlaced
		}
		m.ParentID = parentID
		m.Position = position
		m.IsPlaced = true
		return nil
	})
}

func (r *memberRepo) MarkRoot(ctx context.Context, memberID string) error {
	return r.mutate(memberID, func(m *domain.Member) error {
		if m.IsPlaced {
			return domain.ErrAlreadyPlaced
		}
		m.IsPlaced = true
		return nil
	})
}

func (r *memberRepo) AttachChild(ctx context.Context, parentID string, side domain.Side, childID string) error {
	return r.mutate(parentID, func(m *domain.Member) error {
		switch {
		case side == domain.SideLeft && m.LeftChildID == "":
			m.LeftChildID = childID
		case side == domain.SideRight && m.RightChildID == "":
			m.RightChildID = childID
		default:
			return fmt.Errorf("%w: %s %s", domain.ErrSlotTaken, parentID, side)
		}
		return nil
	})
}

func (r *memberRepo) MarkActive(ctx context.Context, memberID string, activationAmount float64) error {
	return r.mutate(memberID, func(m *domain.Member) error {
		m.Status = domain.MemberStatusActive
		m.ActivationAmount = activationAmount
		return nil
	})
}

func (r *memberRepo) AddLegVolume(ctx context.Context, memberID string, side domain.Side, amount float64) error {
	if hook := r.v.store.Hooks.BeforeAddLegVolume; hook != nil {
		if err := hook(memberID, side); err != nil {
			return err
		}
	}
	return r.mutate(memberID, func(m *domain.Member) error {
		if side == domain.SideLeft {
			m.CurrentLeftPV += amount
			m.LeftLegPV += amount
		} else {
			m.CurrentRightPV += amount
			m.RightLegPV += amount
		}
		return nil
	})
}

func (r *memberRepo) DeductVolume(ctx context.Context, memberID string, left, right float64) error {
	return r.mutate(memberID, func(m *domain.Member) error {
		m.CurrentLeftPV -= left
		m.CurrentRightPV -= right
		return nil
	})
}

func (r *memberRepo) AddPersonalPV(ctx context.Context, memberID string, amount float64) error {
	return r.mutate(memberID, func(m *domain.Member) error {
		m.PersonalPV += amount
		return nil
	})
}

func (r *memberRepo) UpdateRank(ctx context.Context, memberID string, rank domain.Rank) error {
	return r.mutate(memberID, func(m *domain.Member) error {
		m.Rank = rank
		return nil
	})
}

func (r *memberRepo) CountSubtree(ctx context.Context, rootID string) (int64, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	members := r.v.state().members
	var count int64
	seen := make(map[string]bool)
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		m, ok := members[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		count++
		if m.LeftChildID != "" {
			stack = append(stack, m.LeftChildID)
		}
		if m.RightChildID != "" {
			stack = append(stack, m.RightChildID)
		}
	}
	return count, nil
}

func (r *memberRepo) ListPairingCandidates(ctx context.Context) ([]string, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	st := r.v.state()
	var ids []string
	for _, id := range st.order {
		m := st.members[id]
		if m.IsPlaced && m.CurrentLeftPV > 0 && m.CurrentRightPV > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memberRepo) ListHoldingTank(ctx context.Context, sponsorID string) ([]*domain.Member, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	var out []*domain.Member
	for _, m := range r.v.state().members {
		if m.SponsorID == sponsorID && m.IsActive() && !m.IsPlaced {
			out = append(out, cloneMember(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt) || (out[i].CreatedAt.Equal(out[j].CreatedAt) && out[i].ID < out[j].ID)
	})
	return out, nil
}
