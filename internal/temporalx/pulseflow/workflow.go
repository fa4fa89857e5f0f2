package pulseflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow runs one pulse. The activity is attempted once: per-user failures
// are already reported by the coordinator and a retry would double-send.
func Workflow(ctx workflow.Context, in Input) (Summary, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var out Summary
	if err := workflow.ExecuteActivity(ctx, ActivityRun, in).Get(ctx, &out); err != nil {
		return Summary{}, err
	}
	workflow.GetLogger(ctx).Info("Pulse finished",
		"manual", out.Manual, "due", out.Due, "delivered", out.Delivered, "failed", out.Failed)
	return out, nil
}
