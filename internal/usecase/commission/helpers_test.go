package commission

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Title
	}
	return out
}

var errStorage = errors.New("storage offline")

func newTestEngine(store *memory.Store) (*Engine, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewEngine(store, store.Configs(), notifier, zap.NewNop(), nil), notifier
}

func saveSnapshot(t *testing.T, store *memory.Store, mutate func(s *domain.ConfigSnapshot)) {
	t.Helper()
	snapshot := domain.DefaultConfigSnapshot()
	mutate(snapshot)
	require.NoError(t, store.Configs().CreateSnapshot(context.Background(), snapshot))
}

func addMember(t *testing.T, store *memory.Store, id, sponsorID string) {
	t.Helper()
	require.NoError(t, store.Members().CreateMember(context.Background(), &domain.Member{ID: id, SponsorID: sponsorID}))
}

// link places child under parent on side, keeping both pointers consistent.
func link(t *testing.T, store *memory.Store, parentID string, side domain.Side, childID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Members().MarkPlaced(ctx, childID, parentID, side))
	require.NoError(t, store.Members().AttachChild(ctx, parentID, side, childID))
}

func setLegs(t *testing.T, store *memory.Store, id string, left, right float64) {
	t.Helper()
	ctx := context.Background()
	if left > 0 {
		require.NoError(t, store.Members().AddLegVolume(ctx, id, domain.SideLeft, left))
	}
	if right > 0 {
		require.NoError(t, store.Members().AddLegVolume(ctx, id, domain.SideRight, right))
	}
}

func member(t *testing.T, store *memory.Store, id string) *domain.Member {
	t.Helper()
	m, err := store.Members().GetMember(context.Background(), id)
	require.NoError(t, err)
	return m
}

func balance(t *testing.T, store *memory.Store, id string) float64 {
	t.Helper()
	w, err := store.Ledger().GetWallet(context.Background(), id)
	if errors.Is(err, domain.ErrWalletNotFound) {
		return 0
	}
	require.NoError(t, err)
	return w.Balance
}

func totalEarned(t *testing.T, store *memory.Store, id string) float64 {
	t.Helper()
	c, err := store.Ledger().GetCommissionRecord(context.Background(), id)
	if errors.Is(err, domain.ErrCommissionNotFound) {
		return 0
	}
	require.NoError(t, err)
	return c.TotalEarned
}
