package pulse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	repos "github.com/yungbote/sprint-backend/internal/data/repos"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/sprint-backend/internal/pkg/errors"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/services"
)

// Model turns a prompt into text that should hold a JSON object.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

func (f ModelFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Per-user outcome statuses.
const (
	StatusSent          = "sent"
	StatusPlainFallback = "sent_plain"
	StatusUndeliverable = "undeliverable"
	StatusSilent        = "silent"
	StatusMalformed     = "malformed"
	StatusIdle          = "skipped_idle"
	StatusExpired       = "skipped_expired"
	StatusNotDue        = "skipped_not_due"
	StatusFailed        = "failed"
	StatusCancelled     = "cancelled"
)

// BriefingResult describes one Generate call. Err-free results may still be
// skips; see Status.
type BriefingResult struct {
	UserID         int64  `json:"user_id"`
	Status         string `json:"status"`
	NewTasks       int    `json:"new_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
	ProcessedDumps int    `json:"processed_dumps"`
	Ideas          int    `json:"ideas"`
}

type Generator interface {
	Generate(ctx context.Context, userID int64, manual bool) (BriefingResult, error)
}

type GeneratorOptions struct {
	// DedupeWindow drops new tasks whose title matches (case-insensitively) a task
	// created for the same user within the window. Zero disables it.
	DedupeWindow time.Duration
	Now          func() time.Time
}

type generator struct {
	log    *logger.Logger
	repos  repos.Set
	trial  services.TrialService
	model  Model
	sender messaging.Sender
	opts   GeneratorOptions
}

func NewGenerator(baseLog *logger.Logger, set repos.Set, trial services.TrialService, model Model, sender messaging.Sender, opts GeneratorOptions) Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &generator{
		log:    baseLog.With("service", "BriefingGenerator"),
		repos:  set,
		trial:  trial,
		model:  model,
		sender: sender,
		opts:   opts,
	}
}

func (g *generator) Generate(ctx context.Context, userID int64, manual bool) (BriefingResult, error) {
	ctx, span := tracer.Start(ctx, "pulse.Generate")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Bool("pulse.manual", manual))

	res := BriefingResult{UserID: userID}
	log := g.log.With("user_id", userID)
	dbc := dbctx.Context{Ctx: ctx}

	expired, err := g.trial.Expired(ctx, userID)
	if err != nil {
		return res, err
	}
	if expired {
		res.Status = StatusExpired
		return res, nil
	}

	rows, err := g.repos.Config.ListByUser(dbc, userID)
	if err != nil {
		return res, fmt.Errorf("load config: %w", err)
	}
	cfg := assistant.ConfigMap(rows)

	dumps, err := g.repos.RawDumps.ListUnprocessed(dbc, userID)
	if err != nil {
		return res, fmt.Errorf("load raw dumps: %w", err)
	}
	tasks, err := g.repos.Tasks.ListOpen(dbc, userID)
	if err != nil {
		return res, fmt.Errorf("load tasks: %w", err)
	}
	if len(dumps) == 0 && len(tasks) == 0 {
		res.Status = StatusIdle
		return res, nil
	}
	people, err := g.repos.People.ListByUser(dbc, userID)
	if err != nil {
		return res, fmt.Errorf("load people: %w", err)
	}

	prompt := BuildPrompt(PromptInput{
		UserName: cfg[assistant.KeyUserName],
		Persona:  cfg[assistant.KeyIdentity],
		Goal:     cfg[assistant.KeyCurrentSeason],
		People:   people,
		Tasks:    tasks,
		Dumps:    dumps,
	})
	raw, err := g.model.Complete(ctx, prompt)
	if err != nil {
		return res, fmt.Errorf("model: %w", err)
	}

	out, clean, perr := ParseOutput(raw)
	if perr != nil {
		log.Warn("model output malformed, skipping user", "error", perr, "chars", len(raw))
		res.Status = StatusMalformed
		g.record(dbc, userID, manual, res, clean, fmt.Errorf("%w: %v", pkgerrors.ErrMalformedOutput, perr))
		return res, nil
	}

	res.Status = g.deliver(ctx, userID, out.Briefing)

	var errs []error
	if n, err := g.markProcessed(dbc, userID, dumps); err != nil {
		errs = append(errs, err)
	} else {
		res.ProcessedDumps = n
	}
	if n, err := g.insertTasks(dbc, userID, out); err != nil {
		errs = append(errs, err)
	} else {
		res.NewTasks = n
	}
	if n, err := g.completeTasks(dbc, userID, out.CompletedTaskIDs, log); err != nil {
		errs = append(errs, err)
	} else {
		res.CompletedTasks = n
	}
	if n, err := g.storeIdeas(dbc, userID, out.Ideas); err != nil {
		errs = append(errs, err)
	} else {
		res.Ideas = n
	}

	joined := errors.Join(errs...)
	g.record(dbc, userID, manual, res, clean, joined)
	if joined != nil {
		res.Status = StatusFailed
		return res, joined
	}
	log.Info("briefing complete",
		"status", res.Status,
		"new_tasks", res.NewTasks,
		"completed", res.CompletedTasks,
		"dumps", res.ProcessedDumps,
	)
	return res, nil
}

// deliver sends the briefing with Markdown, then once more as plain text if the
// gateway rejects it. The fallback's own failure is not an error.
func (g *generator) deliver(ctx context.Context, userID int64, text string) string {
	if strings.TrimSpace(text) == "" {
		return StatusSilent
	}
	msg := messaging.Outbound{ChatID: userID, Text: text}
	err := g.sender.Send(ctx, msg)
	if err == nil {
		return StatusSent
	}
	g.log.Warn("markdown briefing rejected, retrying as plain text", "user_id", userID, "error", err)
	msg.Plain = true
	if err := g.sender.Send(ctx, msg); err != nil {
		g.log.Warn("plain briefing failed", "user_id", userID, "error", err)
		return StatusUndeliverable
	}
	return StatusPlainFallback
}

func (g *generator) markProcessed(dbc dbctx.Context, userID int64, dumps []*assistant.RawDump) (int, error) {
	if len(dumps) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(dumps))
	for _, d := range dumps {
		ids = append(ids, d.ID)
	}
	n, err := g.repos.RawDumps.MarkProcessed(dbc, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark dumps processed: %w", err)
	}
	return int(n), nil
}

func (g *generator) insertTasks(dbc dbctx.Context, userID int64, out *Output) (int, error) {
	seen := map[string]struct{}{}
	if g.opts.DedupeWindow > 0 {
		titles, err := g.repos.Tasks.ListTitlesSince(dbc, userID, g.opts.Now().Add(-g.opts.DedupeWindow))
		if err != nil {
			return 0, fmt.Errorf("load recent titles: %w", err)
		}
		for _, t := range titles {
			seen[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
	}

	var tasks []*assistant.Task
	for _, nt := range out.NewTasks {
		title := strings.TrimSpace(nt.Title)
		if title == "" {
			continue
		}
		if g.opts.DedupeWindow > 0 {
			key := strings.ToLower(title)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		tasks = append(tasks, &assistant.Task{
			UserID:   userID,
			Title:    title,
			Priority: assistant.NormalizePriority(nt.Priority),
			Status:   assistant.TaskStatusTodo,
			Source:   assistant.TaskSourceBriefing,
		})
	}
	if len(tasks) == 0 {
		return 0, nil
	}
	if _, err := g.repos.Tasks.Create(dbc, tasks); err != nil {
		return 0, fmt.Errorf("insert tasks: %w", err)
	}
	return len(tasks), nil
}

func (g *generator) completeTasks(dbc dbctx.Context, userID int64, raw []string, log *logger.Logger) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			log.Debug("ignoring completed id that is not a uuid", "id", s)
			continue
		}
		ids = append(ids, id)
	}
	n, err := g.repos.Tasks.MarkDone(dbc, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark tasks done: %w", err)
	}
	return int(n), nil
}

func (g *generator) storeIdeas(dbc dbctx.Context, userID int64, ideas []string) (int, error) {
	var entries []*assistant.LogEntry
	for _, idea := range ideas {
		idea = strings.TrimSpace(idea)
		if idea == "" {
			continue
		}
		entries = append(entries, &assistant.LogEntry{
			UserID:    userID,
			EntryType: assistant.LogEntryTypeIdeas,
			Content:   idea,
		})
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if _, err := g.repos.Logs.Create(dbc, entries); err != nil {
		return 0, fmt.Errorf("store ideas: %w", err)
	}
	return len(entries), nil
}

// record writes the audit row. Its failure is logged only.
func (g *generator) record(dbc dbctx.Context, userID int64, manual bool, res BriefingResult, output string, runErr error) {
	status := assistant.BriefingStatusSent
	switch res.Status {
	case StatusMalformed:
		status = assistant.BriefingStatusMalformed
	case StatusUndeliverable:
		status = assistant.BriefingStatusUndeliverable
	case StatusSilent:
		status = assistant.BriefingStatusSilent
	}
	if runErr != nil && res.Status != StatusMalformed {
		status = assistant.BriefingStatusFailed
	}

	rawJSON := []byte(output)
	if !json.Valid(rawJSON) {
		rawJSON, _ = json.Marshal(map[string]string{"text": output})
	}
	run := &assistant.BriefingRun{
		UserID:         userID,
		Manual:         manual,
		Status:         status,
		NewTasks:       res.NewTasks,
		CompletedTasks: res.CompletedTasks,
		RawOutput:      datatypes.JSON(rawJSON),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if _, err := g.repos.BriefingRun.Create(dbc, run); err != nil {
		g.log.Warn("briefing audit write failed", "user_id", userID, "error", err)
	}
}
