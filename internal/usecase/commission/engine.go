package commission

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts   = 3
	defaultNotifyTimeout = 5 * time.Second
)

type CommissionUsecase interface {
	Propagate(ctx context.Context, memberID string, amount float64) (*CascadeResult, error)
	EvaluatePairing(ctx context.Context, memberID string) (*CascadeResult, error)
	DistributeMatching(ctx context.Context, earnerID string, binaryPayout float64) (*CascadeResult, error)
	DistributeReferral(ctx context.Context, sponsorID, newMemberID string, packagePrice float64) (*CascadeResult, error)
	CheckRank(ctx context.Context, memberID string) (*CascadeResult, error)
	RunPairingSweep(ctx context.Context) (*SweepReport, error)
}

type Engine struct {
	Store         domain.Store
	Configs       domain.ConfigProvider
	Notifier      domain.Notifier
	Logger        *zap.Logger
	Metrics       *metrics.CommissionMetrics
	MaxAttempts   int
	NotifyTimeout time.Duration
	Now           func() time.Time
}

func NewEngine(
	store domain.Store,
	configs domain.ConfigProvider,
	notifier domain.Notifier,
	logger *zap.Logger,
	commissionMetrics *metrics.CommissionMetrics,
) *Engine {
	return &Engine{
		Store:         store,
		Configs:       configs,
		Notifier:      notifier,
		Logger:        logger,
		Metrics:       commissionMetrics,
		MaxAttempts:   defaultMaxAttempts,
		NotifyTimeout: defaultNotifyTimeout,
		Now:           time.Now,
	}
}

// ResolveSnapshot returns the rule set for one top-level event. It never fails.
func (e *Engine) ResolveSnapshot(ctx context.Context) *domain.ConfigSnapshot {
	if e.Configs == nil {
		return domain.DefaultConfigSnapshot()
	}
	snapshot, err := e.Configs.GetLatest(ctx)
	if err != nil {
		e.Logger.Warn("config snapshot unavailable, using defaults", zap.Error(err))
		return domain.DefaultConfigSnapshot()
	}
	return snapshot.WithDefaults()
}

// Run executes fn and every effect it queues in one unit of work. Retryable
// failures replay the whole event from the top; notifications go out only
// after a successful commit.
func (e *Engine) Run(ctx context.Context, operation string, fn func(ctx context.Context, c *Cascade) error) (*CascadeResult, error) {
	return e.runWith(ctx, e.ResolveSnapshot(ctx), operation, fn)
}

func (e *Engine) runWith(ctx context.Context, snapshot *domain.ConfigSnapshot, operation string, fn func(ctx context.Context, c *Cascade) error) (*CascadeResult, error) {
	attempts := e.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var (
		cascade *Cascade
		err     error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		err = e.Store.InTx(ctx, func(uow domain.UnitOfWork) error {
			cascade = e.newCascade(uow, snapshot)
			if err := fn(ctx, cascade); err != nil {
				return err
			}
			return cascade.drain(ctx)
		})
		if err == nil || !domain.IsRetryable(err) {
			break
		}
		e.Metrics.RecordRetry(operation)
		e.Logger.Warn("cascade failed, replaying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	if err != nil {
		e.Metrics.RecordError(operation)
		return nil, err
	}

	e.finalize(ctx, cascade)
	return &cascade.result, nil
}

func (e *Engine) finalize(ctx context.Context, c *Cascade) {
	res := &c.result
	for _, credit := range res.Credits {
		e.Metrics.RecordPayout(string(credit.Type), credit.Amount)
	}
	if res.Pairs > 0 {
		e.Metrics.RecordPairs(res.Pairs, res.CappedPayouts)
	}
	if res.Propagated {
		e.Metrics.RecordPropagation(res.PropagationDepth, res.BrokenLinks)
	}
	e.dispatch(ctx, c.outbox)
}

// dispatch is best-effort: a failed notification never undoes a committed payout.
func (e *Engine) dispatch(ctx context.Context, outbox []domain.Notification) {
	if e.Notifier == nil {
		return
	}
	timeout := e.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	for _, n := range outbox {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		if err := e.Notifier.Notify(notifyCtx, n); err != nil {
			e.Metrics.RecordNotificationFailure()
			e.Logger.Error("failed to dispatch notification",
				zap.String("member_id", n.MemberID),
				zap.String("title", n.Title),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) Propagate(ctx context.Context, memberID string, amount float64) (*CascadeResult, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	return e.Run(ctx, "propagate", func(ctx context.Context, c *Cascade) error {
		return c.Propagate(ctx, memberID, amount)
	})
}

func (e *Engine) EvaluatePairing(ctx context.Context, memberID string) (*CascadeResult, error) {
	return e.Run(ctx, "evaluate_pairing", func(ctx context.Context, c *Cascade) error {
		return c.EvaluatePairing(ctx, memberID)
	})
}

func (e *Engine) DistributeMatching(ctx context.Context, earnerID string, binaryPayout float64) (*CascadeResult, error) {
	if binaryPayout <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	return e.Run(ctx, "distribute_matching", func(ctx context.Context, c *Cascade) error {
		return c.DistributeMatching(ctx, earnerID, binaryPayout)
	})
}

func (e *Engine) DistributeReferral(ctx context.Context, sponsorID, newMemberID string, packagePrice float64) (*CascadeResult, error) {
	if packagePrice <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	return e.Run(ctx, "distribute_referral", func(ctx context.Context, c *Cascade) error {
		return c.DistributeReferral(ctx, sponsorID, newMemberID, packagePrice)
	})
}

func (e *Engine) CheckRank(ctx context.Context, memberID string) (*CascadeResult, error) {
	return e.Run(ctx, "check_rank", func(ctx context.Context, c *Cascade) error {
		return c.CheckRank(ctx, memberID)
	})
}
