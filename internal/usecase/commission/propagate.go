package commission

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"go.uber.org/zap"
)

// Propagate credits amount to every placement ancestor of memberID, bottom up,
// and settles pairing for each ancestor before climbing further.
func (c *Cascade) Propagate(ctx context.Context, memberID string, amount float64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	members := c.uow.Members()
	logger := c.engine.Logger

	climbing, err := members.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	c.result.Propagated = true

	visited := map[string]bool{climbing.ID: true}
	for climbing.ParentID != "" {
		parentID := climbing.ParentID
		if visited[parentID] {
			logger.Warn("placement cycle detected, propagation stopped",
				zap.String("member_id", memberID),
				zap.String("node_id", parentID),
			)
			break
		}
		visited[parentID] = true

		parent, err := members.GetMemberForUpdate(ctx, parentID)
		if err != nil {
			if errors.Is(err, domain.ErrMemberNotFound) {
				logger.Warn("placement ancestor missing, propagation stopped",
					zap.String("member_id", memberID),
					zap.String("parent_id", parentID),
				)
				break
			}
			return err
		}

		side, ok := parent.SideOf(climbing.ID)
		if !ok {
			c.result.BrokenLinks++
			logger.Warn("broken placement link, ancestor skipped",
				zap.String("child_id", climbing.ID),
				zap.String("parent_id", parent.ID),
			)
			climbing = parent
			continue
		}

		if err := members.AddLegVolume(ctx, parent.ID, side, amount); err != nil {
			return err
		}
		c.result.PropagationDepth++

		c.enqueue(pairingEffect{memberID: parent.ID})
		if err := c.drain(ctx); err != nil {
			return err
		}
		climbing = parent
	}
	return nil
}
