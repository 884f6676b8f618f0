package placement

import (
	"context"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
)

// Subtree lists the placed genealogy below rootID in level order, root first.
// depth <= 0 means unbounded.
func (uc *DefaultPlacementUsecase) Subtree(ctx context.Context, rootID string, depth int) ([]*domain.Member, error) {
	members := uc.Store.Members()

	root, err := members.GetMember(ctx, rootID)
	if err != nil {
		return nil, err
	}

	out := []*domain.Member{root}
	level := []*domain.Member{root}
	visited := map[string]bool{root.ID: true}
	for d := 1; len(level) > 0 && (depth <= 0 || d <= depth); d++ {
		var ids []string
		for _, node := range level {
			for _, id := range []string{node.LeftChildID, node.RightChildID} {
				if id != "" && !visited[id] {
					visited[id] = true
					ids = append(ids, id)
				}
			}
		}
		next, err := loadOrdered(ctx, members, ids)
		if err != nil {
			return nil, err
		}
		out = append(out, next...)
		level = next
	}
	return out, nil
}
