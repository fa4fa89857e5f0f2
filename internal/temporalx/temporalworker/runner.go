package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/sprint-backend/internal/pkg/httpx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/pulse"
	"github.com/yungbote/sprint-backend/internal/temporalx"
	"github.com/yungbote/sprint-backend/internal/temporalx/pulseflow"
)

// Runner hosts the pulse workflow and keeps the hourly schedule registered.
type Runner struct {
	log       *logger.Logger
	cfg       temporalx.Config
	tc        temporalsdkclient.Client
	scheduler pulse.Scheduler
}

func NewRunner(log *logger.Logger, cfg temporalx.Config, tc temporalsdkclient.Client, scheduler pulse.Scheduler) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("temporal worker missing pulse scheduler")
	}
	return &Runner{
		log:       log.With("service", "TemporalWorker"),
		cfg:       cfg,
		tc:        tc,
		scheduler: scheduler,
	}, nil
}

// Start begins polling and returns once the worker is running. The worker
// stops when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	r.log.Info("Starting Temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	deadline := time.Now().Add(r.cfg.DialMaxWait)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("Temporal worker started", "task_queue", r.cfg.TaskQueue, "attempts", attempt)
			return nil
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		if errors.As(startErr, &nfe) {
			if !r.cfg.AutoRegisterNamespace {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", r.cfg.Namespace, startErr)
			}
			if err := temporalx.EnsureNamespace(ctx, r.log, r.cfg); err != nil {
				r.log.Warn("Temporal namespace ensure failed", "namespace", r.cfg.Namespace, "error", err)
			}
		}
		if r.cfg.DialMaxWait <= 0 || time.Now().After(deadline) {
			return startErr
		}
		r.log.Warn("Temporal worker failed to start; retrying", "attempt", attempt, "error", startErr)
		if err := httpx.Sleep(ctx, temporalx.Backoff(r.cfg.BackoffBase, r.cfg.BackoffMax, attempt)); err != nil {
			return err
		}
	}
}

func (r *Runner) newWorker() worker.Worker {
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		// A pulse already fans out per user; one at a time per worker.
		MaxConcurrentActivityExecutionSize:     1,
		MaxConcurrentWorkflowTaskExecutionSize: 2,
	})
	acts := &pulseflow.Activities{Log: r.log, Scheduler: r.scheduler}
	w.RegisterWorkflowWithOptions(pulseflow.Workflow, workflow.RegisterOptions{Name: pulseflow.WorkflowName})
	w.RegisterActivityWithOptions(acts.Run, activity.RegisterOptions{Name: pulseflow.ActivityRun})
	return w
}
