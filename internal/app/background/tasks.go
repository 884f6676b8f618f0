package background

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-binary-engine/internal/usecase/commission"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type PairingSweeper interface {
	RunPairingSweep(ctx context.Context) (*commission.SweepReport, error)
}

// BackgroundTasks schedules the operator-enabled jobs. Jobs run with the base
// context and never overlap with themselves.
type BackgroundTasks struct {
	Sweeper PairingSweeper
	Logger  *zap.Logger

	cron    *cron.Cron
	baseCtx context.Context
}

func NewBackgroundTasks(baseCtx context.Context, sweeper PairingSweeper, logger *zap.Logger) *BackgroundTasks {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &BackgroundTasks{
		Sweeper: sweeper,
		Logger:  logger,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		baseCtx: baseCtx,
	}
}

// ScheduleSweep registers the pairing sweep. Schedules use the six-field (seconds) cron format.
func (bt *BackgroundTasks) ScheduleSweep(spec string) error {
	if _, err := bt.cron.AddFunc(spec, func() { bt.runSweep(bt.baseCtx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	bt.Logger.Info("pairing sweep scheduled", zap.String("spec", spec))
	return nil
}

func (bt *BackgroundTasks) StartAll() {
	bt.Logger.Info("cron started", zap.Int("jobs", len(bt.cron.Entries())))
	bt.cron.Start()
}

func (bt *BackgroundTasks) Stop() {
	<-bt.cron.Stop().Done()
	bt.Logger.Info("cron stopped")
}

func (bt *BackgroundTasks) runSweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := bt.Sweeper.RunPairingSweep(ctx)
	if err != nil {
		bt.Logger.Error("pairing sweep aborted", zap.Error(err))
		return
	}
	if report.Failed > 0 {
		bt.Logger.Warn("pairing sweep had failures", zap.Int("failed", report.Failed), zap.Int("candidates", report.Candidates))
	}
}
