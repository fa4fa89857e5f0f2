package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	repos "github.com/yungbote/sprint-backend/internal/data/repos"
	"github.com/yungbote/sprint-backend/internal/data/repos/testutil"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/services"
)

type harness struct {
	t      *testing.T
	db     *gorm.DB
	repos  repos.Set
	sender *messaging.Recorder
	router Router
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		t:      t,
		db:     db,
		repos:  repos.NewSet(db, log),
		sender: &messaging.Recorder{},
		now:    time.Now(),
	}
	trial := services.NewTrialServiceWithClock(log, h.repos.Config, services.TrialLength, func() time.Time { return h.now })
	r, err := NewRouter(Deps{DB: db, Repos: h.repos, Sender: h.sender, Trial: trial, Log: log})
	require.NoError(t, err)
	h.router = r
	return h
}

func (h *harness) say(userID int64, text string) Result {
	h.t.Helper()
	res, err := h.router.Handle(context.Background(), Inbound{ChatID: userID, UserID: userID, Text: text, FirstName: "Ada"})
	require.NoError(h.t, err, "text=%q", text)
	return res
}

func (h *harness) config(userID int64) map[string]string {
	h.t.Helper()
	rows, err := h.repos.Config.ListByUser(dbctx.Context{Ctx: context.Background()}, userID)
	require.NoError(h.t, err)
	return assistant.ConfigMap(rows)
}

func (h *harness) people(userID int64) []*assistant.Person {
	h.t.Helper()
	people, err := h.repos.People.ListByUser(dbctx.Context{Ctx: context.Background()}, userID)
	require.NoError(h.t, err)
	return people
}

func (h *harness) dumps(userID int64) []*assistant.RawDump {
	h.t.Helper()
	dumps, err := h.repos.RawDumps.ListUnprocessed(dbctx.Context{Ctx: context.Background()}, userID)
	require.NoError(h.t, err)
	return dumps
}

func TestOnboarding_EndToEnd(t *testing.T) {
	h := newHarness(t)
	const user int64 = 100

	steps := []struct {
		text string
		want Stage
	}{
		{"/start", StageAwaitingPersona},
		{"⚔️ Commander", StageAwaitingSchedule},
		{"☀️ Standard", StageAwaitingTimezone},
		{"3", StageAwaitingGoal},
		{"Close the seed round", StageAwaitingPeople},
		{"Skip", StageActive},
	}
	for _, s := range steps {
		res := h.say(user, s.text)
		assert.Equal(t, s.want, res.Stage, "after %q", s.text)
	}

	cfg := h.config(user)
	assert.Equal(t, "Ada", cfg[assistant.KeyUserName])
	assert.Equal(t, "1", cfg[assistant.KeyIdentity])
	assert.Equal(t, "2", cfg[assistant.KeyPulseSchedule])
	assert.Equal(t, "3", cfg[assistant.KeyTimezoneOffset])
	assert.Equal(t, "Close the seed round", cfg[assistant.KeyCurrentSeason])
	assert.Equal(t, "true", cfg[assistant.KeyInitialPeopleSetup])
	assert.Equal(t, StageActive, InferStage(cfg))
	assert.Empty(t, h.people(user))

	sent := h.sender.To(user)
	require.Len(t, sent, len(steps))
	assert.Contains(t, sent[0].Text, "Welcome to your 14-Day Sprint, Ada.")
	assert.Equal(t, PersonaKeyboard(), sent[0].Keyboard)
	assert.Contains(t, sent[3].Text, "GMT+3")
	last := sent[len(sent)-1]
	assert.Contains(t, last.Text, "Setup Complete")
	assert.Contains(t, last.Text, "None registered yet")
	assert.Equal(t, MainKeyboard(), last.Keyboard)
}

func TestOnboarding_PeopleList(t *testing.T) {
	h := newHarness(t)
	const user int64 = 101
	for _, text := range []string{"/start", "🌿 Nurturer", "🌙 Late", "-5", "Hire two engineers"} {
		h.say(user, text)
	}

	res := h.say(user, "/people")
	assert.Equal(t, StageAwaitingPeople, res.Stage, "commands re-prompt during the people step")
	res = h.say(user, ButtonPeople)
	assert.Equal(t, StageAwaitingPeople, res.Stage)

	res = h.say(user, "Jane (Wife), John (Client Partner), Bob")
	assert.Equal(t, StageActive, res.Stage)
	assert.Contains(t, res.Reply.Text, "3 key stakeholders registered.")

	people := h.people(user)
	require.Len(t, people, 3)
	assert.Equal(t, "Jane", people[0].Name)
	assert.Equal(t, "Wife", people[0].Role)
	assert.Equal(t, assistant.DefaultPersonRole, people[2].Role)
	for _, p := range people {
		assert.Equal(t, assistant.DefaultStrategicWeight, p.StrategicWeight)
	}

	res = h.say(user, ButtonPeople)
	assert.Contains(t, res.Reply.Text, "• John (Client Partner)")
}

func TestOnboarding_RepromptsKeepStage(t *testing.T) {
	h := newHarness(t)
	const user int64 = 102
	h.say(user, "/start")

	res := h.say(user, "commander")
	assert.Equal(t, StageAwaitingPersona, res.Stage)
	assert.Equal(t, PersonaKeyboard(), res.Reply.Keyboard)

	h.say(user, "Architect")
	res = h.say(user, "whenever")
	assert.Equal(t, StageAwaitingSchedule, res.Stage)

	h.say(user, "Early")
	res = h.say(user, "London")
	assert.Equal(t, StageAwaitingTimezone, res.Stage)
	assert.Contains(t, res.Reply.Text, "valid number")

	h.say(user, "UTC+5.5")
	assert.Equal(t, "5.5", h.config(user)[assistant.KeyTimezoneOffset])

	res = h.say(user, "Win")
	assert.Equal(t, StageAwaitingGoal, res.Stage)
	res = h.say(user, "/goal is big")
	assert.Equal(t, StageAwaitingGoal, res.Stage)
}

func TestStart_ResetsEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	const user int64 = 200
	testutil.SeedActiveUser(t, ctx, h.db, user, h.now)
	testutil.SeedPerson(t, ctx, h.db, user, "Jane", "Wife")
	testutil.SeedActiveUser(t, ctx, h.db, 201, h.now)

	res := h.say(user, "/start@sprintbot")
	assert.Equal(t, StageAwaitingPersona, res.Stage)

	cfg := h.config(user)
	assert.Equal(t, map[string]string{assistant.KeyUserName: "Ada"}, cfg)
	assert.Empty(t, h.people(user))
	assert.Equal(t, StageActive, InferStage(h.config(201)), "other users are untouched")
}

func TestCapture_IsNotDeduplicated(t *testing.T) {
	h := newHarness(t)
	const user int64 = 300
	testutil.SeedActiveUser(t, context.Background(), h.db, user, h.now)

	h.say(user, "call the accountant")
	h.say(user, "call the accountant")

	dumps := h.dumps(user)
	require.Len(t, dumps, 2)
	assert.NotEqual(t, dumps[0].ID, dumps[1].ID)

	sent := h.sender.To(user)
	require.Len(t, sent, 2)
	for _, m := range sent {
		assert.Equal(t, "✅", m.Text)
	}
}

func TestActive_UnknownCommandAndEmptyText(t *testing.T) {
	h := newHarness(t)
	const user int64 = 301
	testutil.SeedActiveUser(t, context.Background(), h.db, user, h.now)

	res := h.say(user, "/dance")
	assert.Contains(t, res.Reply.Text, "/help")
	res = h.say(user, "")
	assert.Contains(t, res.Reply.Text, "only read text")
	res = h.say(user, "/help")
	assert.Contains(t, res.Reply.Text, "/person Name | Weight")

	assert.Empty(t, h.dumps(user))
	assert.Len(t, h.sender.To(user), 3)
}

func TestActive_TrialExpired(t *testing.T) {
	h := newHarness(t)
	const user int64 = 400
	testutil.SeedActiveUser(t, context.Background(), h.db, user, h.now.Add(-15*24*time.Hour))

	for _, text := range []string{"remember the milk", ButtonBrief, "/person Jane"} {
		res := h.say(user, text)
		assert.Contains(t, res.Reply.Text, "Your 14-Day Sprint has concluded.")
	}
	assert.Empty(t, h.dumps(user))
	assert.Empty(t, h.people(user))

	// Re-acknowledgment through /start stays available.
	res := h.say(user, "/start")
	assert.Equal(t, StageAwaitingPersona, res.Stage)
}

func TestChangeFlow_ConfirmsInsteadOfOnboarding(t *testing.T) {
	h := newHarness(t)
	const user int64 = 500
	testutil.SeedActiveUser(t, context.Background(), h.db, user, h.now)

	res := h.say(user, ButtonSettings)
	assert.Equal(t, SettingsKeyboard(), res.Reply.Keyboard)

	res = h.say(user, ButtonChangePersona)
	assert.Equal(t, StageAwaitingPersona, res.Stage)
	assert.Equal(t, PersonaKeyboard(), res.Reply.Keyboard)

	res = h.say(user, "🌿 Nurturer")
	assert.Equal(t, StageActive, res.Stage)
	assert.Equal(t, "✅ **Persona Updated.**", res.Reply.Text)
	assert.Equal(t, "3", h.config(user)[assistant.KeyIdentity])

	h.say(user, ButtonChangeLocation)
	res = h.say(user, "-3.5")
	assert.Equal(t, "✅ **Timezone Updated to GMT-3.5.**", res.Reply.Text)

	h.say(user, ButtonChangeGoal)
	res = h.say(user, "Launch the beta")
	assert.Equal(t, "✅ **Main Goal Updated.**", res.Reply.Text)

	h.say(user, ButtonChangeSchedule)
	res = h.say(user, "🌙 Late")
	assert.Equal(t, "✅ **Schedule Updated.**", res.Reply.Text)

	cfg := h.config(user)
	assert.Equal(t, "3", cfg[assistant.KeyPulseSchedule])
	assert.Equal(t, "Launch the beta", cfg[assistant.KeyCurrentSeason])

	res = h.say(user, ButtonBack)
	assert.Equal(t, MainKeyboard(), res.Reply.Keyboard)
}

func TestViews(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	const user int64 = 600
	testutil.SeedActiveUser(t, ctx, h.db, user, h.now)

	res := h.say(user, ButtonUrgent)
	assert.Equal(t, "✅ No active fires.", res.Reply.Text)
	res = h.say(user, ButtonBrief)
	assert.Equal(t, "The list is empty.", res.Reply.Text)
	res = h.say(user, ButtonVault)
	assert.Equal(t, "The Vault is empty.", res.Reply.Text)
	res = h.say(user, ButtonPeople)
	assert.Equal(t, "No one registered.", res.Reply.Text)

	testutil.SeedTask(t, ctx, h.db, user, "chore one", assistant.PriorityChore, assistant.TaskStatusTodo)
	testutil.SeedTask(t, ctx, h.db, user, "put out fire", assistant.PriorityUrgent, assistant.TaskStatusTodo)
	testutil.SeedTask(t, ctx, h.db, user, "finished", assistant.PriorityUrgent, assistant.TaskStatusDone)
	testutil.SeedTask(t, ctx, h.db, 601, "not mine", assistant.PriorityUrgent, assistant.TaskStatusTodo)

	res = h.say(user, ButtonUrgent)
	assert.Equal(t, "🔴 **ACTION REQUIRED:**\n\n🔥 put out fire", res.Reply.Text)

	res = h.say(user, "/brief")
	assert.Equal(t, "📋 **EXECUTIVE BRIEF:**\n\n🔴 put out fire\n⚪ chore one", res.Reply.Text)

	when := time.Date(2026, 4, 9, 10, 0, 0, 0, time.UTC)
	testutil.SeedLogEntry(t, ctx, h.db, user, assistant.LogEntryTypeIdeas, "podcast about sprints", when)
	res = h.say(user, ButtonVault)
	assert.Equal(t, "🔓 **THE IDEA VAULT (Last 5):**\n\n💡 *04/09/2026:* podcast about sprints", res.Reply.Text)

	res = h.say(user, ButtonGoal)
	assert.Contains(t, res.Reply.Text, "🧭 **CURRENT MAIN GOAL:**")

	res = h.say(user, "/person Jane Doe | 8")
	assert.Contains(t, res.Reply.Text, "Stakeholder Registered:** Jane Doe")
	assert.Contains(t, res.Reply.Text, "8/10")
	res = h.say(user, "/person")
	assert.Contains(t, res.Reply.Text, "Format")
	res = h.say(user, "/person Ex Boss | 0")
	assert.Contains(t, res.Reply.Text, "0/10")
	people := h.people(user)
	require.Len(t, people, 2)
	assert.Equal(t, 8, people[0].StrategicWeight)
	assert.Equal(t, "Ex Boss", people[1].Name)
	assert.Equal(t, 0, people[1].StrategicWeight)

	assert.Empty(t, h.dumps(user), "views never capture")
}

func TestHandle_SendFailureIsReturned(t *testing.T) {
	h := newHarness(t)
	h.sender.FailWhen = func(messaging.Outbound) error { return assert.AnError }
	_, err := h.router.Handle(context.Background(), Inbound{ChatID: 1, UserID: 1, Text: "/start"})
	require.ErrorIs(t, err, assert.AnError)
	sent := h.sender.Sent()
	require.Len(t, sent, 2)
	assert.False(t, sent[0].Plain)
	assert.True(t, sent[1].Plain)
}

func TestHandle_RejectedMarkdownFallsBackToPlain(t *testing.T) {
	h := newHarness(t)
	const user int64 = 55
	for _, text := range []string{"/start", "⚔️ Commander", "☀️ Standard", "0"} {
		h.say(user, text)
	}

	h.sender.Reset()
	h.sender.FailWhen = func(m messaging.Outbound) error {
		if !m.Plain {
			return assert.AnError
		}
		return nil
	}
	res := h.say(user, "ship v2_final")
	assert.Equal(t, StageAwaitingPeople, res.Stage)
	assert.True(t, res.Reply.Plain)
	assert.Equal(t, "ship v2_final", h.config(user)[assistant.KeyCurrentSeason])

	sent := h.sender.To(user)
	require.Len(t, sent, 2)
	assert.Equal(t, sent[0].Text, sent[1].Text)
	assert.Equal(t, sent[0].Keyboard, sent[1].Keyboard)
	assert.True(t, sent[1].Plain)
}
