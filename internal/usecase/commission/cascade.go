package commission

import (
	"context"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
)

// effect is one step of a cascade. Applying an effect may queue further effects.
type effect interface {
	apply(ctx context.Context, c *Cascade) error
}

type RankChange struct {
	MemberID string
	From     domain.Rank
	To       domain.Rank
}

type CascadeResult struct {
	Credits          []domain.Credit
	Pairs            int64
	CappedPayouts    int
	RankChanges      []RankChange
	Propagated       bool
	PropagationDepth int
	BrokenLinks      int
}

// Total sums the credits of one type.
func (r *CascadeResult) Total(commissionType domain.CommissionType) float64 {
	var total float64
	for _, c := range r.Credits {
		if c.Type == commissionType {
			total += c.Amount
		}
	}
	return total
}

// Cascade carries one top-level event: its unit of work, the single rule set
// it runs under, the FIFO effect queue and the notification outbox.
type Cascade struct {
	engine   *Engine
	uow      domain.UnitOfWork
	snapshot *domain.ConfigSnapshot
	queue    []effect
	outbox   []domain.Notification
	result   CascadeResult
}

func (e *Engine) newCascade(uow domain.UnitOfWork, snapshot *domain.ConfigSnapshot) *Cascade {
	return &Cascade{
		engine:   e,
		uow:      uow,
		snapshot: snapshot,
	}
}

func (c *Cascade) UnitOfWork() domain.UnitOfWork { return c.uow }

func (c *Cascade) Snapshot() *domain.ConfigSnapshot { return c.snapshot }

func (c *Cascade) enqueue(effects ...effect) {
	c.queue = append(c.queue, effects...)
}

func (c *Cascade) drain(ctx context.Context) error {
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		if err := next.apply(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Notify queues a notification for dispatch after commit.
func (c *Cascade) Notify(n domain.Notification) {
	c.enqueue(notifyEffect{notification: n})
}

type notifyEffect struct {
	notification domain.Notification
}

func (e notifyEffect) apply(ctx context.Context, c *Cascade) error {
	n := e.notification
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.engine.now()
	}
	c.outbox = append(c.outbox, n)
	return nil
}

type creditEffect struct {
	credit       domain.Credit
	checkRank    bool
	notification *domain.Notification
}

func (e creditEffect) apply(ctx context.Context, c *Cascade) error {
	if e.credit.Amount <= 0 {
		return nil
	}
	if _, err := c.uow.Ledger().Credit(ctx, e.credit); err != nil {
		return err
	}
	c.result.Credits = append(c.result.Credits, e.credit)
	if e.checkRank {
		c.enqueue(rankEffect{memberID: e.credit.MemberID})
	}
	if e.notification != nil {
		c.enqueue(notifyEffect{notification: *e.notification})
	}
	return nil
}
