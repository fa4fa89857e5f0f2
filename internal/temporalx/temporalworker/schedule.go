package temporalworker

import (
	"context"
	"errors"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/sprint-backend/internal/temporalx"
	"github.com/yungbote/sprint-backend/internal/temporalx/pulseflow"
)

// PulseScheduleOptions describes the recurring pulse. Overlapping runs are
// skipped so a slow pulse never stacks behind itself.
func PulseScheduleOptions(cfg temporalx.Config) temporalsdkclient.ScheduleOptions {
	return temporalsdkclient.ScheduleOptions{
		ID: cfg.ScheduleID,
		Spec: temporalsdkclient.ScheduleSpec{
			Intervals: []temporalsdkclient.ScheduleIntervalSpec{{Every: cfg.PulseInterval}},
		},
		Action: &temporalsdkclient.ScheduleWorkflowAction{
			ID:        cfg.ScheduleID + "-run",
			Workflow:  pulseflow.WorkflowName,
			Args:      []interface{}{pulseflow.Input{Manual: false}},
			TaskQueue: cfg.TaskQueue,
		},
		Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
	}
}

// EnsurePulseSchedule registers the hourly pulse. An existing schedule with
// the same id is left as is.
func (r *Runner) EnsurePulseSchedule(ctx context.Context) error {
	if r.cfg.ScheduleID == "" || r.cfg.PulseInterval <= 0 {
		r.log.Info("Pulse schedule disabled")
		return nil
	}
	_, err := r.tc.ScheduleClient().Create(ctx, PulseScheduleOptions(r.cfg))
	if err != nil && !errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
		return fmt.Errorf("create pulse schedule %q: %w", r.cfg.ScheduleID, err)
	}
	r.log.Info("Pulse schedule ready", "schedule_id", r.cfg.ScheduleID, "every", r.cfg.PulseInterval.String(), "existing", err != nil)
	return nil
}
