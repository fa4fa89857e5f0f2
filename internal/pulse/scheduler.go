package pulse

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	repos "github.com/yungbote/sprint-backend/internal/data/repos"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/sprint-backend/internal/pkg/errors"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

var tracer = otel.Tracer("github.com/yungbote/sprint-backend/internal/pulse")

// Report summarises one pulse.
type Report struct {
	Manual     bool      `json:"manual"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Candidates int       `json:"candidates"`
	Due        int       `json:"due"`
	Delivered  int       `json:"delivered"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes"`
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusSent, StatusPlainFallback:
		r.Delivered++
	case StatusFailed:
		r.Failed++
	default:
		r.Skipped++
	}
}

type Scheduler interface {
	Run(ctx context.Context, manual bool) (Report, error)
}

type SchedulerOptions struct {
	Schedule ScheduleOptions
	Now      func() time.Time
}

type scheduler struct {
	log         *logger.Logger
	config      repos.UserConfigRepo
	generator   Generator
	coordinator *Coordinator
	notifier    messaging.Notifier
	opts        SchedulerOptions
}

func NewScheduler(baseLog *logger.Logger, config repos.UserConfigRepo, generator Generator, coordinator *Coordinator, notifier messaging.Notifier, opts SchedulerOptions) Scheduler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if notifier == nil {
		notifier = LogNotifier{Log: baseLog}
	}
	return &scheduler{
		log:         baseLog.With("service", "PulseScheduler"),
		config:      config,
		generator:   generator,
		coordinator: coordinator,
		notifier:    notifier,
		opts:        opts,
	}
}

// Run evaluates every user that has set a goal and generates briefings for the
// due ones. The returned error covers only failures to enumerate users.
func (s *scheduler) Run(ctx context.Context, manual bool) (Report, error) {
	ctx, span := tracer.Start(ctx, "pulse.Run")
	defer span.End()

	now := s.opts.Now()
	rep := Report{Manual: manual, StartedAt: now.UTC()}
	dbc := dbctx.Context{Ctx: ctx}

	ids, err := s.config.ListUserIDsWithKey(dbc, assistant.KeyCurrentSeason)
	if err != nil {
		return rep, fmt.Errorf("list active users: %w", err)
	}
	rep.Candidates = len(ids)

	var due []int64
	for _, id := range ids {
		rows, err := s.config.ListByUser(dbc, id)
		if err != nil {
			o := Outcome{UserID: id, Status: StatusFailed, Error: err.Error()}
			s.log.Error("pulse evaluation failed", "user_id", id, "error", err)
			if nerr := s.notifier.Notify(ctx, messaging.OperatorReport{
				UserID: id, Stage: "evaluate", Error: err.Error(), Manual: manual,
				Transient: pkgerrors.IsTransientStore(err), Occurred: now.UTC(),
			}); nerr != nil {
				s.log.Warn("operator notification failed", "user_id", id, "error", nerr)
			}
			rep.add(o)
			continue
		}
		if !IsDue(now, assistant.ConfigMap(rows), manual, s.opts.Schedule) {
			rep.add(Outcome{UserID: id, Status: StatusNotDue})
			continue
		}
		due = append(due, id)
	}
	rep.Due = len(due)
	span.SetAttributes(
		attribute.Bool("pulse.manual", manual),
		attribute.Int("pulse.candidates", rep.Candidates),
		attribute.Int("pulse.due", rep.Due),
	)

	work := func(ctx context.Context, userID int64) (BriefingResult, error) {
		return s.generator.Generate(ctx, userID, manual)
	}
	for _, o := range s.coordinator.Run(ctx, due, manual, work) {
		rep.add(o)
	}
	rep.FinishedAt = s.opts.Now().UTC()

	s.log.Info("pulse finished",
		"manual", manual,
		"candidates", rep.Candidates,
		"due", rep.Due,
		"delivered", rep.Delivered,
		"skipped", rep.Skipped,
		"failed", rep.Failed,
	)
	return rep, nil
}
