package pulse

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/sprint-backend/internal/messaging"
	pkgerrors "github.com/yungbote/sprint-backend/internal/pkg/errors"
	"github.com/yungbote/sprint-backend/internal/pkg/httpx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchPause = time.Second
)

// Work is the per-user unit a Coordinator runs.
type Work func(ctx context.Context, userID int64) (BriefingResult, error)

// Outcome is one user's result inside a batch run.
type Outcome struct {
	UserID   int64          `json:"user_id"`
	Status   string         `json:"status"`
	Result   BriefingResult `json:"result"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}

type Coordinator struct {
	log      *logger.Logger
	notifier messaging.Notifier
	size     int
	pause    time.Duration
}

func NewCoordinator(baseLog *logger.Logger, notifier messaging.Notifier, size int, pause time.Duration) *Coordinator {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if pause < 0 {
		pause = 0
	}
	if notifier == nil {
		notifier = LogNotifier{Log: baseLog}
	}
	return &Coordinator{
		log:      baseLog.With("service", "BatchCoordinator"),
		notifier: notifier,
		size:     size,
		pause:    pause,
	}
}

// Run processes users in groups of the configured size. Members of a group run
// concurrently and the next group starts only after every member finished. A
// failing or panicking user is reported once and never affects siblings. Users
// not started because ctx ended are marked cancelled.
func (c *Coordinator) Run(ctx context.Context, userIDs []int64, manual bool, work Work) []Outcome {
	outcomes := make([]Outcome, len(userIDs))
	for i, id := range userIDs {
		outcomes[i] = Outcome{UserID: id, Status: StatusCancelled}
	}

	for start := 0; start < len(userIDs); start += c.size {
		if start > 0 {
			if err := httpx.Sleep(ctx, c.pause); err != nil {
				c.log.Warn("pulse batch interrupted", "remaining", len(userIDs)-start, "error", err)
				return outcomes
			}
		}
		if ctx.Err() != nil {
			return outcomes
		}
		end := start + c.size
		if end > len(userIDs) {
			end = len(userIDs)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				outcomes[i] = c.runOne(ctx, userIDs[i], manual, work)
				return nil
			})
		}
		_ = g.Wait()
		c.log.Debug("pulse batch done", "from", start, "to", end)
	}
	return outcomes
}

func (c *Coordinator) runOne(ctx context.Context, userID int64, manual bool, work Work) (out Outcome) {
	started := time.Now()
	out = Outcome{UserID: userID}
	defer func() {
		if p := recover(); p != nil {
			c.fail(ctx, &out, manual, fmt.Errorf("panic: %v", p))
			c.log.Error("pulse worker panic", "user_id", userID, "stack", string(debug.Stack()))
		}
		out.Duration = time.Since(started)
	}()

	res, err := work(ctx, userID)
	out.Result = res
	out.Status = res.Status
	if err != nil {
		c.fail(ctx, &out, manual, err)
	}
	return out
}

func (c *Coordinator) fail(ctx context.Context, out *Outcome, manual bool, err error) {
	out.Status = StatusFailed
	out.Error = err.Error()
	transient := pkgerrors.IsTransientStore(err)
	c.log.Error("pulse user failed", "user_id", out.UserID, "transient", transient, "error", err)
	report := messaging.OperatorReport{
		UserID:    out.UserID,
		Stage:     "briefing",
		Error:     err.Error(),
		Manual:    manual,
		Transient: transient,
		Occurred:  time.Now().UTC(),
	}
	if nerr := c.notifier.Notify(context.WithoutCancel(ctx), report); nerr != nil {
		c.log.Warn("operator notification failed", "user_id", out.UserID, "error", nerr)
	}
}
