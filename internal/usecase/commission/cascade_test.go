package commission

import (
	"context"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree creates
//
//	    root
//	   /    \
//	  a      b
//	 / \
//	c   d
//
// with every member sponsored by root.
func buildTree(t *testing.T, store *memory.Store) {
	t.Helper()
	addMember(t, store, "root", "")
	for _, id := range []string{"a", "b", "c", "d"} {
		addMember(t, store, id, "root")
	}
	link(t, store, "root", domain.SideLeft, "a")
	link(t, store, "root", domain.SideRight, "b")
	link(t, store, "a", domain.SideLeft, "c")
	link(t, store, "a", domain.SideRight, "d")
}

func TestPropagate_CreditsEveryAncestor(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	buildTree(t, store)

	res, err := engine.Propagate(context.Background(), "c", 100)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PropagationDepth)
	assert.Empty(t, res.Credits)

	a := member(t, store, "a")
	assert.Equal(t, 100.0, a.CurrentLeftPV)
	assert.Equal(t, 100.0, a.LeftLegPV)
	assert.Zero(t, a.CurrentRightPV)
	root := member(t, store, "root")
	assert.Equal(t, 100.0, root.CurrentLeftPV)
	assert.Zero(t, root.CurrentRightPV)
}

func TestPropagate_PairsLevelByLevel(t *testing.T) {
	store := memory.NewStore()
	engine, notifier := newTestEngine(store)
	buildTree(t, store)
	setLegs(t, store, "a", 0, 100)

	res, err := engine.Propagate(context.Background(), "c", 100)
	require.NoError(t, err)

	// a pairs before root is credited; root earns matching as a's sponsor
	require.Len(t, res.Credits, 2)
	assert.Equal(t, domain.Credit{MemberID: "a", Type: domain.CommissionBinaryBonus, Amount: 10, Description: "Binary Commission: 1 pairs matched"}, res.Credits[0])
	assert.Equal(t, "root", res.Credits[1].MemberID)
	assert.Equal(t, domain.CommissionMatchingBonus, res.Credits[1].Type)
	assert.Equal(t, 1.0, res.Credits[1].Amount)
	assert.Equal(t, "a", res.Credits[1].RelatedMemberID)

	a := member(t, store, "a")
	assert.Zero(t, a.CurrentLeftPV)
	assert.Zero(t, a.CurrentRightPV)
	assert.Equal(t, 100.0, member(t, store, "root").CurrentLeftPV)
	assert.Equal(t, []string{"Binary Commission"}, notifier.titles())
}

func TestPropagate_RootPairsWhenOtherLegArrives(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	buildTree(t, store)

	_, err := engine.Propagate(ctx, "c", 100)
	require.NoError(t, err)
	res, err := engine.Propagate(ctx, "b", 100)
	require.NoError(t, err)

	assert.Equal(t, 1, res.PropagationDepth)
	assert.Equal(t, 10.0, res.Total(domain.CommissionBinaryBonus))
	assert.Equal(t, 10.0, balance(t, store, "root"))
}

func TestPropagate_SkipsBrokenLink(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	buildTree(t, store)
	addMember(t, store, "orphan", "root")
	// orphan claims d as parent but d does not point back
	require.NoError(t, store.Members().MarkPlaced(ctx, "orphan", "d", domain.SideLeft))

	res, err := engine.Propagate(ctx, "orphan", 100)
	require.NoError(t, err)
	assert.Equal(t, 1, res.BrokenLinks)
	assert.Equal(t, 2, res.PropagationDepth)

	d := member(t, store, "d")
	assert.Zero(t, d.CurrentLeftPV)
	assert.Zero(t, d.CurrentRightPV)
	assert.Equal(t, 100.0, member(t, store, "a").CurrentRightPV)
	assert.Equal(t, 100.0, member(t, store, "root").CurrentLeftPV)
}

func TestPropagate_StopsAtMissingAncestor(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	addMember(t, store, "m", "")
	require.NoError(t, store.Members().MarkPlaced(ctx, "m", "ghost", domain.SideLeft))

	res, err := engine.Propagate(ctx, "m", 100)
	require.NoError(t, err)
	assert.Zero(t, res.PropagationDepth)
}

func TestPropagate_RejectsNonPositiveAmount(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	buildTree(t, store)

	_, err := engine.Propagate(context.Background(), "c", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = engine.Propagate(context.Background(), "c", -5)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestPropagate_RollsBackWholeChain(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, notifier := newTestEngine(store)
	buildTree(t, store)
	setLegs(t, store, "a", 0, 100)
	setLegs(t, store, "root", 0, 100)

	// a's payout lands, root's fails: nothing from this event may survive
	store.Hooks.BeforeCredit = func(credit domain.Credit) error {
		if credit.MemberID == "root" && credit.Type == domain.CommissionBinaryBonus {
			return errStorage
		}
		return nil
	}

	_, err := engine.Propagate(ctx, "c", 100)
	require.ErrorIs(t, err, errStorage)

	a := member(t, store, "a")
	assert.Zero(t, a.CurrentLeftPV)
	assert.Equal(t, 100.0, a.CurrentRightPV)
	assert.Zero(t, member(t, store, "root").CurrentLeftPV)
	assert.Zero(t, balance(t, store, "a"))
	assert.Zero(t, balance(t, store, "root"))
	assert.Empty(t, notifier.titles())
}

func TestPropagate_ReplaysTransientFailure(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	buildTree(t, store)
	setLegs(t, store, "a", 0, 100)

	failures := 1
	store.Hooks.BeforeCredit = func(credit domain.Credit) error {
		if failures > 0 {
			failures--
			return domain.ErrTransient
		}
		return nil
	}

	res, err := engine.Propagate(context.Background(), "c", 100)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Total(domain.CommissionBinaryBonus))
	assert.Equal(t, 10.0, balance(t, store, "a"))
	assert.Equal(t, 100.0, member(t, store, "a").LeftLegPV, "replay must not double the volume")
	assert.Equal(t, 100.0, member(t, store, "root").CurrentLeftPV)
}

func TestDistributeMatching_GenerationsBounded(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	saveSnapshot(t, store, func(s *domain.ConfigSnapshot) { s.MatchingBonusGenerations = []float64{10, 5} })
	addMember(t, store, "s3", "")
	addMember(t, store, "s2", "s3")
	addMember(t, store, "s1", "s2")
	addMember(t, store, "earner", "s1")

	res, err := engine.DistributeMatching(context.Background(), "earner", 100)
	require.NoError(t, err)

	assert.Equal(t, 15.0, res.Total(domain.CommissionMatchingBonus))
	assert.Equal(t, 10.0, balance(t, store, "s1"))
	assert.Equal(t, 5.0, balance(t, store, "s2"))
	assert.Zero(t, balance(t, store, "s3"))
}

func TestDistributeMatching_SkipsZeroGenerations(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	saveSnapshot(t, store, func(s *domain.ConfigSnapshot) { s.MatchingBonusGenerations = []float64{0, 5} })
	addMember(t, store, "s2", "")
	addMember(t, store, "s1", "s2")
	addMember(t, store, "earner", "s1")

	res, err := engine.DistributeMatching(context.Background(), "earner", 100)
	require.NoError(t, err)
	require.Len(t, res.Credits, 1)
	assert.Equal(t, "s2", res.Credits[0].MemberID)

	_, err = store.Ledger().GetWallet(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestDistributeMatching_StopsAtMissingSponsor(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	addMember(t, store, "s1", "ghost")
	addMember(t, store, "earner", "s1")

	res, err := engine.DistributeMatching(context.Background(), "earner", 100)
	require.NoError(t, err)
	require.Len(t, res.Credits, 1)
	assert.Equal(t, 10.0, balance(t, store, "s1"))
}

func TestCheckRank_JumpsToHighestQualifyingRank(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, notifier := newTestEngine(store)
	addMember(t, store, "m", "")
	_, err := store.Ledger().Credit(ctx, domain.Credit{MemberID: "m", Type: domain.CommissionCustom, Amount: 900})
	require.NoError(t, err)

	res, err := engine.Run(ctx, "test", func(ctx context.Context, c *Cascade) error {
		c.enqueue(creditEffect{
			credit:    domain.Credit{MemberID: "m", Type: domain.CommissionCustom, Amount: 5100},
			checkRank: true,
		})
		return nil
	})
	require.NoError(t, err)

	require.Len(t, res.RankChanges, 1)
	assert.Equal(t, RankChange{MemberID: "m", From: domain.RankBronze, To: domain.RankGold}, res.RankChanges[0])
	assert.Equal(t, 200.0, res.Total(domain.CommissionRankAchievement))
	assert.Equal(t, domain.RankGold, member(t, store, "m").Rank)
	assert.Equal(t, 6200.0, totalEarned(t, store, "m"))
	assert.Equal(t, []string{"Rank Advanced"}, notifier.titles())

	res, err = engine.CheckRank(ctx, "m")
	require.NoError(t, err)
	assert.Empty(t, res.RankChanges)
	assert.Empty(t, res.Credits)
}

func TestCheckRank_NeverLowers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	addMember(t, store, "m", "")
	require.NoError(t, store.Members().UpdateRank(ctx, "m", domain.RankDiamond))
	_, err := store.Ledger().Credit(ctx, domain.Credit{MemberID: "m", Type: domain.CommissionCustom, Amount: 1500})
	require.NoError(t, err)

	res, err := engine.CheckRank(ctx, "m")
	require.NoError(t, err)
	assert.Empty(t, res.RankChanges)
	assert.Equal(t, domain.RankDiamond, member(t, store, "m").Rank)
}

func TestDistributeReferral(t *testing.T) {
	store := memory.NewStore()
	engine, notifier := newTestEngine(store)
	addMember(t, store, "sponsor", "grand")
	addMember(t, store, "grand", "")
	addMember(t, store, "new", "sponsor")

	res, err := engine.DistributeReferral(context.Background(), "sponsor", "new", 200)
	require.NoError(t, err)

	require.Len(t, res.Credits, 1)
	assert.Equal(t, domain.Credit{
		MemberID:        "sponsor",
		Type:            domain.CommissionDirectReferral,
		Amount:          20,
		Description:     "Referral Bonus for new user new",
		RelatedMemberID: "new",
	}, res.Credits[0])
	assert.Zero(t, balance(t, store, "grand"), "referral is paid to the direct sponsor only")
	assert.Equal(t, []string{"Referral Bonus"}, notifier.titles())
}

func TestDistributeReferral_MissingSponsor(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)

	res, err := engine.DistributeReferral(context.Background(), "ghost", "new", 200)
	require.NoError(t, err)
	assert.Empty(t, res.Credits)
}

func TestNotificationFailureDoesNotFailEvent(t *testing.T) {
	store := memory.NewStore()
	engine, notifier := newTestEngine(store)
	notifier.err = errors.New("broker down")
	addMember(t, store, "m", "")
	setLegs(t, store, "m", 100, 100)

	res, err := engine.EvaluatePairing(context.Background(), "m")
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Total(domain.CommissionBinaryBonus))
	assert.Equal(t, 10.0, balance(t, store, "m"))
}

func TestRunPairingSweep(t *testing.T) {
	store := memory.NewStore()
	engine, _ := newTestEngine(store)
	for _, id := range []string{"a", "b", "c"} {
		addMember(t, store, id, "")
		require.NoError(t, store.Members().MarkRoot(context.Background(), id))
	}
	setLegs(t, store, "a", 200, 300)
	setLegs(t, store, "b", 100, 100)
	setLegs(t, store, "c", 100, 0)

	store.Hooks.BeforeCredit = func(credit domain.Credit) error {
		if credit.MemberID == "b" {
			return errStorage
		}
		return nil
	}

	report, err := engine.RunPairingSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 1, report.Paid)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, int64(2), report.Pairs)
	assert.Equal(t, 20.0, report.TotalPayout)

	assert.Equal(t, 100.0, member(t, store, "b").CurrentLeftPV)
	assert.Equal(t, 100.0, member(t, store, "c").CurrentLeftPV)
}
