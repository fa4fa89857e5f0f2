package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	repos "github.com/yungbote/sprint-backend/internal/data/repos"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/services"
)

var tracer = otel.Tracer("github.com/yungbote/sprint-backend/internal/conversation")

// Inbound is one validated message from the chat transport.
type Inbound struct {
	ChatID    int64
	UserID    int64
	Text      string
	FirstName string
}

// Result is what the router did with an inbound message.
type Result struct {
	// Stage is the stage the user will be in for their next message.
	Stage Stage
	Reply messaging.Outbound
}

// Router owns the onboarding state machine and the command surface. Every call
// to Handle sends exactly one reply.
type Router interface {
	Handle(ctx context.Context, in Inbound) (Result, error)
}

type Deps struct {
	DB     *gorm.DB
	Repos  repos.Set
	Sender messaging.Sender
	Trial  services.TrialService
	Copy   *Copy
	Log    *logger.Logger
}

// turn carries the per-message state handlers need.
type turn struct {
	in    Inbound
	dbc   dbctx.Context
	cfg   map[string]string
	stage Stage
}

// reply is a handler's decision; the router turns it into exactly one send.
type reply struct {
	text     string
	keyboard *messaging.Keyboard
	next     Stage
}

type handler func(ctx context.Context, t *turn) (reply, error)

// route keys the dispatch table. An empty token is the stage default.
type route struct {
	stage Stage
	token string
}

type router struct {
	db     *gorm.DB
	repos  repos.Set
	sender messaging.Sender
	trial  services.TrialService
	copy   *Copy
	log    *logger.Logger
	routes map[route]handler
}

func NewRouter(deps Deps) (Router, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("conversation router: db required")
	}
	if deps.Sender == nil {
		return nil, fmt.Errorf("conversation router: sender required")
	}
	if deps.Trial == nil {
		return nil, fmt.Errorf("conversation router: trial service required")
	}
	if deps.Log == nil {
		return nil, fmt.Errorf("conversation router: logger required")
	}
	if deps.Copy == nil {
		c, err := DefaultCopy()
		if err != nil {
			return nil, err
		}
		deps.Copy = c
	}
	r := &router{
		db:     deps.DB,
		repos:  deps.Repos,
		sender: deps.Sender,
		trial:  deps.Trial,
		copy:   deps.Copy,
		log:    deps.Log.With("service", "ConversationRouter"),
	}
	r.routes = r.buildRoutes()
	return r, nil
}

func (r *router) buildRoutes() map[route]handler {
	routes := map[route]handler{
		{StageAwaitingPersona, ""}:  r.onPersona,
		{StageAwaitingSchedule, ""}: r.onSchedule,
		{StageAwaitingTimezone, ""}: r.onTimezone,
		{StageAwaitingGoal, ""}:     r.onGoal,
		{StageAwaitingPeople, ""}:   r.onPeople,
		{StageActive, ""}:           r.onCapture,
	}
	active := map[string]handler{
		ButtonUrgent:         r.viewUrgent,
		ButtonBrief:          r.viewBrief,
		ButtonPeople:         r.viewPeople,
		ButtonVault:          r.viewVault,
		ButtonGoal:           r.viewGoal,
		ButtonSettings:       r.viewSettings,
		ButtonChangePersona:  r.changeSetting(assistant.KeyIdentity, "change_persona", PersonaKeyboard),
		ButtonChangeSchedule: r.changeSetting(assistant.KeyPulseSchedule, "change_schedule", ScheduleKeyboard),
		ButtonChangeLocation: r.changeSetting(assistant.KeyTimezoneOffset, "change_location", messaging.RemoveKeyboard),
		ButtonChangeGoal:     r.changeSetting(assistant.KeyCurrentSeason, "change_goal", messaging.RemoveKeyboard),
		ButtonBack:           r.backToDashboard,
		"/urgent":            r.viewUrgent,
		"/brief":             r.viewBrief,
		"/people":            r.viewPeople,
		"/vault":             r.viewVault,
		"/goal":              r.viewGoal,
		"/settings":          r.viewSettings,
		"/help":              r.viewHelp,
		"/person":            r.addPerson,
	}
	for token, h := range active {
		routes[route{StageActive, token}] = h
	}
	return routes
}

// commandToken returns the dispatch token for text: slash commands reduce to
// their lowercased first word without any @bot suffix; anything else is matched
// verbatim.
func commandToken(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	word := strings.Fields(text)[0]
	if i := strings.IndexByte(word, '@'); i > 0 {
		word = word[:i]
	}
	return strings.ToLower(word)
}

func isStart(text string) bool {
	return strings.HasPrefix(text, "/start")
}

func (r *router) Handle(ctx context.Context, in Inbound) (Result, error) {
	ctx, span := tracer.Start(ctx, "conversation.Handle")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", in.UserID))

	log := r.log.With("user_id", in.UserID)

	var (
		rep reply
		err error
	)
	if isStart(in.Text) {
		rep, err = r.start(ctx, in)
	} else {
		rep, err = r.dispatch(ctx, in)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("conversation handler failed", "error", err)
		return Result{}, err
	}

	out := messaging.Outbound{ChatID: in.ChatID, Text: rep.text, Keyboard: rep.keyboard}
	span.SetAttributes(attribute.String("conversation.next_stage", rep.next.String()))
	if err := r.sender.Send(ctx, out); err != nil {
		log.Warn("markdown reply rejected, retrying as plain text", "error", err)
		out.Plain = true
		if err := r.sender.Send(ctx, out); err != nil {
			span.RecordError(err)
			log.Warn("reply delivery failed", "error", err)
			return Result{Stage: rep.next, Reply: out}, fmt.Errorf("send reply: %w", err)
		}
	}
	return Result{Stage: rep.next, Reply: out}, nil
}

func (r *router) dispatch(ctx context.Context, in Inbound) (reply, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := r.repos.Config.ListByUser(dbc, in.UserID)
	if err != nil {
		return reply{}, fmt.Errorf("load config: %w", err)
	}
	t := &turn{in: in, dbc: dbc, cfg: assistant.ConfigMap(rows)}
	t.stage = InferStage(t.cfg)

	if t.stage == StageActive {
		expired, err := r.trial.Expired(ctx, in.UserID)
		if err != nil {
			return reply{}, err
		}
		if expired {
			return reply{text: r.copy.Render("concluded", nil), keyboard: MainKeyboard(), next: StageActive}, nil
		}
		if h, ok := r.routes[route{StageActive, commandToken(in.Text)}]; ok {
			return h(ctx, t)
		}
	}
	return r.routes[route{t.stage, ""}](ctx, t)
}

// start wipes the user's configuration and stakeholders and begins onboarding.
func (r *router) start(ctx context.Context, in Inbound) (reply, error) {
	name := SanitizeName(in.FirstName)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := r.repos.Config.DeleteAllForUser(dbc, in.UserID); err != nil {
			return err
		}
		if err := r.repos.People.DeleteAllForUser(dbc, in.UserID); err != nil {
			return err
		}
		return r.repos.Config.Set(dbc, in.UserID, assistant.KeyUserName, name)
	})
	if err != nil {
		return reply{}, fmt.Errorf("reset user: %w", err)
	}
	r.log.Info("user reset", "user_id", in.UserID)
	return reply{
		text:     r.copy.Render("welcome", map[string]any{"Name": name}),
		keyboard: PersonaKeyboard(),
		next:     StageAwaitingPersona,
	}, nil
}

// changing reports whether onboarding already finished once, in which case a
// completed step only confirms instead of continuing the walkthrough.
func (t *turn) changing() bool {
	_, ok := t.cfg[assistant.KeyInitialPeopleSetup]
	return ok
}

// set stores key and returns the stage that follows.
func (r *router) set(t *turn, key, value string) (Stage, error) {
	if err := r.repos.Config.Set(t.dbc, t.in.UserID, key, value); err != nil {
		return t.stage, fmt.Errorf("set %s: %w", key, err)
	}
	t.cfg[key] = value
	return InferStage(t.cfg), nil
}

func (r *router) onPersona(ctx context.Context, t *turn) (reply, error) {
	code, ok := ParsePersona(t.in.Text)
	if !ok {
		return reply{text: r.copy.Render("persona_reprompt", nil), keyboard: PersonaKeyboard(), next: t.stage}, nil
	}
	next, err := r.set(t, assistant.KeyIdentity, code)
	if err != nil {
		return reply{}, err
	}
	if t.changing() {
		return reply{text: r.copy.Render("persona_updated", nil), keyboard: MainKeyboard(), next: next}, nil
	}
	return reply{text: r.copy.Render("persona_locked", nil), keyboard: ScheduleKeyboard(), next: next}, nil
}

func (r *router) onSchedule(ctx context.Context, t *turn) (reply, error) {
	code, ok := ParseSchedule(t.in.Text)
	if !ok {
		return reply{text: r.copy.Render("schedule_reprompt", nil), keyboard: ScheduleKeyboard(), next: t.stage}, nil
	}
	next, err := r.set(t, assistant.KeyPulseSchedule, code)
	if err != nil {
		return reply{}, err
	}
	if t.changing() {
		return reply{text: r.copy.Render("schedule_updated", nil), keyboard: MainKeyboard(), next: next}, nil
	}
	return reply{text: r.copy.Render("schedule_locked", nil), keyboard: messaging.RemoveKeyboard(), next: next}, nil
}

func (r *router) onTimezone(ctx context.Context, t *turn) (reply, error) {
	offset, ok := ParseTimezone(t.in.Text)
	if !ok {
		return reply{text: r.copy.Render("timezone_reprompt", nil), keyboard: messaging.RemoveKeyboard(), next: t.stage}, nil
	}
	next, err := r.set(t, assistant.KeyTimezoneOffset, offset)
	if err != nil {
		return reply{}, err
	}
	data := map[string]any{"Offset": FormatOffset(offset)}
	if t.changing() {
		return reply{text: r.copy.Render("timezone_updated", data), keyboard: MainKeyboard(), next: next}, nil
	}
	return reply{text: r.copy.Render("timezone_locked", data), keyboard: messaging.RemoveKeyboard(), next: next}, nil
}

func (r *router) onGoal(ctx context.Context, t *turn) (reply, error) {
	goal, ok := ParseGoal(t.in.Text)
	if !ok {
		return reply{text: r.copy.Render("goal_reprompt", nil), keyboard: messaging.RemoveKeyboard(), next: t.stage}, nil
	}
	next, err := r.set(t, assistant.KeyCurrentSeason, goal)
	if err != nil {
		return reply{}, err
	}
	if t.changing() {
		return reply{text: r.copy.Render("goal_updated", nil), keyboard: MainKeyboard(), next: next}, nil
	}
	return reply{text: r.copy.Render("goal_locked", nil), keyboard: messaging.RemoveKeyboard(), next: next}, nil
}

func (r *router) onPeople(ctx context.Context, t *turn) (reply, error) {
	text := t.in.Text
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "/") || text == ButtonPeople {
		return reply{text: r.copy.Render("people_reprompt", nil), keyboard: messaging.RemoveKeyboard(), next: t.stage}, nil
	}

	var people []*assistant.Person
	if !IsSkip(text) {
		for _, p := range ParsePeople(text) {
			people = append(people, &assistant.Person{
				UserID:          t.in.UserID,
				Name:            p.Name,
				Role:            p.Role,
				StrategicWeight: p.Weight,
			})
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := r.repos.People.Create(dbc, people); err != nil {
			return fmt.Errorf("insert people: %w", err)
		}
		return r.repos.Config.Set(dbc, t.in.UserID, assistant.KeyInitialPeopleSetup, "true")
	})
	if err != nil {
		return reply{}, err
	}
	t.cfg[assistant.KeyInitialPeopleSetup] = "true"

	offset := t.cfg[assistant.KeyTimezoneOffset]
	if offset == "" {
		offset = "5.5"
	}
	summary := r.copy.Render("setup_complete", map[string]any{
		"Persona":  r.copy.Blurb("persona_blurbs", t.cfg[assistant.KeyIdentity], "Default"),
		"Schedule": r.copy.Blurb("schedule_blurbs", t.cfg[assistant.KeyPulseSchedule], "Standard"),
		"Offset":   FormatOffset(offset),
		"Goal":     t.cfg[assistant.KeyCurrentSeason],
		"People":   len(people),
	})
	r.log.Info("onboarding complete", "user_id", t.in.UserID, "people", len(people))
	return reply{text: summary, keyboard: MainKeyboard(), next: InferStage(t.cfg)}, nil
}

// onCapture is the ACTIVE default: store free text for the next briefing.
func (r *router) onCapture(ctx context.Context, t *turn) (reply, error) {
	text := t.in.Text
	switch {
	case strings.TrimSpace(text) == "":
		return reply{text: r.copy.Render("empty_text", nil), keyboard: MainKeyboard(), next: StageActive}, nil
	case strings.HasPrefix(text, "/"):
		return reply{text: r.copy.Render("unknown_command", nil), keyboard: MainKeyboard(), next: StageActive}, nil
	}
	if _, err := r.repos.RawDumps.Create(t.dbc, &assistant.RawDump{UserID: t.in.UserID, Content: text}); err != nil {
		return reply{}, fmt.Errorf("capture: %w", err)
	}
	return reply{text: r.copy.Render("capture_ack", nil), keyboard: MainKeyboard(), next: StageActive}, nil
}
