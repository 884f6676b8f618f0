package background

import (
	"context"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-binary-engine/internal/usecase/commission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls int
	err   error
}

func (s *countingSweeper) RunPairingSweep(ctx context.Context) (*commission.SweepReport, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &commission.SweepReport{Candidates: 2, Failed: 1}, nil
}

func TestScheduleSweep(t *testing.T) {
	bt := NewBackgroundTasks(context.Background(), &countingSweeper{}, zap.NewNop())

	require.NoError(t, bt.ScheduleSweep("0 */15 * * * *"))
	assert.Len(t, bt.cron.Entries(), 1)
	assert.Error(t, bt.ScheduleSweep("every now and then"))
}

func TestRunSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	bt := NewBackgroundTasks(context.Background(), sweeper, zap.NewNop())

	bt.runSweep(context.Background())
	sweeper.err = errors.New("db down")
	bt.runSweep(context.Background())
	assert.Equal(t, 2, sweeper.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bt.runSweep(ctx)
	assert.Equal(t, 2, sweeper.calls)
}

func TestStartStop(t *testing.T) {
	bt := NewBackgroundTasks(context.Background(), &countingSweeper{}, zap.NewNop())
	bt.StartAll()
	bt.Stop()
}
