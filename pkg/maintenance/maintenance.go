package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"

	"workstream/pkg/logger"
)

// Checkpointer is the store surface the checkpoint job needs.
type Checkpointer interface {
	Checkpoint() (string, error)
	PruneCheckpoints(keep int) (int, error)
}

// Options configure the periodic checkpoint job.
type Options struct {
	Enabled bool
	// Cron defaults to daily at 02:00.
	Cron string
	// KeepCheckpoints bounds the checkpoint namespace; 0 keeps everything.
	KeepCheckpoints int
}

var registered struct {
	cp   Checkpointer
	opts Options
}

// RunImmediate triggers one checkpoint run outside the cron schedule. Used
// by the admin API and tests.
func RunImmediate() error {
	if registered.cp == nil {
		return fmt.Errorf("maintenance not started")
	}
	return runOnce(registered.cp, registered.opts)
}

// Start launches the checkpoint scheduler when enabled. The returned cancel
// stops the loop.
func Start(ctx context.Context, cp Checkpointer, opts Options) (context.CancelFunc, error) {
	registered.cp = cp
	registered.opts = opts

	if !opts.Enabled {
		logger.Log.Info("maintenance_disabled")
		return func() {}, nil
	}

	cronExpr := opts.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid maintenance cron expression: %s", opts.Cron)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cp, opts, cronExpr)
	logger.Log.Info("maintenance_started", zap.String("cron", cronExpr), zap.Int("keep", opts.KeepCheckpoints))
	return cancel, nil
}

// runScheduler sleeps until the next cron tick and runs one checkpoint per
// tick.
func runScheduler(ctx context.Context, cp Checkpointer, opts Options, cronExpr string) {
	for {
		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Log.Error("maintenance_nexttick_failed", zap.String("cron", cronExpr), zap.Error(err))
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-time.After(time.Until(next)):
		case <-ctx.Done():
			logger.Log.Info("maintenance_stopping")
			return
		}

		if err := runOnce(cp, opts); err != nil {
			logger.Log.Error("maintenance_run_failed", zap.Error(err))
		}
	}
}

func runOnce(cp Checkpointer, opts Options) error {
	key, err := cp.Checkpoint()
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	pruned := 0
	if opts.KeepCheckpoints > 0 {
		pruned, err = cp.PruneCheckpoints(opts.KeepCheckpoints)
		if err != nil {
			return fmt.Errorf("prune checkpoints: %w", err)
		}
	}
	logger.Log.Info("maintenance_checkpoint", zap.String("key", key), zap.Int("pruned", pruned))
	return nil
}
