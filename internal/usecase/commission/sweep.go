package commission

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type SweepReport struct {
	Candidates  int
	Paid        int
	Failed      int
	Pairs       int64
	TotalPayout float64
	Duration    time.Duration
}

// RunPairingSweep settles pairing for every placed member holding volume on
// both legs. Each member is its own unit of work; one failure does not stop the sweep.
func (e *Engine) RunPairingSweep(ctx context.Context) (*SweepReport, error) {
	started := e.now()
	ids, err := e.Store.Members().ListPairingCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairing candidates: %w", err)
	}

	snapshot := e.ResolveSnapshot(ctx)
	report := &SweepReport{Candidates: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		memberID := id
		res, err := e.runWith(ctx, snapshot, "sweep", func(ctx context.Context, c *Cascade) error {
			return c.EvaluatePairing(ctx, memberID)
		})
		if err != nil {
			report.Failed++
			e.Logger.Error("sweep pairing failed", zap.String("member_id", memberID), zap.Error(err))
			continue
		}
		if res.Pairs > 0 {
			report.Paid++
			report.Pairs += res.Pairs
		}
		for _, credit := range res.Credits {
			report.TotalPayout += credit.Amount
		}
	}

	report.Duration = e.now().Sub(started)
	e.Metrics.RecordSweep(report.Duration.Seconds())
	e.Logger.Info("pairing sweep finished",
		zap.Int("candidates", report.Candidates),
		zap.Int("paid", report.Paid),
		zap.Int("failed", report.Failed),
		zap.Float64("total_payout", report.TotalPayout),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}
