package pulseflow

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/pulse"
)

type Activities struct {
	Log       *logger.Logger
	Scheduler pulse.Scheduler
}

func (a *Activities) Run(ctx context.Context, in Input) (Summary, error) {
	if a == nil || a.Scheduler == nil {
		return Summary{}, fmt.Errorf("pulseflow: activity not configured")
	}

	stop := heartbeat(ctx, 30*time.Second)
	defer stop()

	report, err := a.Scheduler.Run(ctx, in.Manual)
	if err != nil {
		return Summary{}, err
	}
	if a.Log != nil {
		a.Log.Info("Pulse activity done", "manual", in.Manual, "due", report.Due, "failed", report.Failed)
	}
	return Summary{
		Manual:     report.Manual,
		Candidates: report.Candidates,
		Due:        report.Due,
		Delivered:  report.Delivered,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
	}, nil
}

// heartbeat records liveness until stop is called. Outside an activity
// context it is a no-op.
func heartbeat(ctx context.Context, every time.Duration) (stop func()) {
	if !activity.IsActivity(ctx) {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return func() { close(done) }
}
