package pulse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprint-backend/internal/data/repos/testutil"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
)

func TestScheduler_Run(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	// 14:00 UTC on a Wednesday.
	clock := time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)
	e.now = clock
	created := clock.Add(-time.Hour)

	// Schedule 1 at offset 0: due at 14.
	testutil.SeedActiveUser(t, ctx, e.db, 1, created)
	testutil.SeedRawDump(t, ctx, e.db, 1, "draft the memo")

	// Schedule 2 at offset 0: not due at 14.
	testutil.SeedActiveUser(t, ctx, e.db, 2, created)
	require.NoError(t, e.repos.Config.Set(e.dbc(), 2, assistant.KeyPulseSchedule, "2"))
	testutil.SeedRawDump(t, ctx, e.db, 2, "not yet")

	// Due but expired.
	testutil.SeedActiveUser(t, ctx, e.db, 3, clock.Add(-30*24*time.Hour))
	testutil.SeedRawDump(t, ctx, e.db, 3, "too late")

	// Due, nothing to say.
	testutil.SeedActiveUser(t, ctx, e.db, 4, created)

	// Due, model blows up.
	testutil.SeedActiveUser(t, ctx, e.db, 5, created)
	testutil.SeedRawDump(t, ctx, e.db, 5, "boom")

	// No goal yet: never a candidate.
	testutil.SeedConfig(t, ctx, e.db, 6, assistant.KeyIdentity, "1", created)

	model := ModelFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "boom") {
			return "", errors.New("model exploded")
		}
		return `{"briefing":"Hello","new_tasks":[{"title":"Draft memo","priority":"urgent"}]}`, nil
	})
	notifier := &recordingNotifier{}
	gen := e.generator(t, model, GeneratorOptions{})
	coord := NewCoordinator(log, notifier, 2, 0)
	s := NewScheduler(log, e.repos.Config, gen, coord, notifier, SchedulerOptions{Now: func() time.Time { return clock }})

	rep, err := s.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Candidates)
	assert.Equal(t, 4, rep.Due)
	assert.Equal(t, 1, rep.Delivered)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 3, rep.Skipped)

	status := map[int64]string{}
	for _, o := range rep.Outcomes {
		status[o.UserID] = o.Status
	}
	assert.Equal(t, map[int64]string{
		1: StatusSent,
		2: StatusNotDue,
		3: StatusExpired,
		4: StatusIdle,
		5: StatusFailed,
	}, status)

	require.Len(t, e.sender.To(1), 1)
	assert.Empty(t, e.sender.To(2))
	assert.Empty(t, e.sender.To(3))

	reports := notifier.all()
	require.Len(t, reports, 1)
	assert.EqualValues(t, 5, reports[0].UserID)
	assert.Contains(t, reports[0].Error, "model exploded")
}

func TestScheduler_ManualIgnoresHour(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	clock := time.Date(2026, 3, 4, 3, 0, 0, 0, time.UTC)
	e.now = clock
	testutil.SeedActiveUser(t, ctx, e.db, 1, clock)
	testutil.SeedRawDump(t, ctx, e.db, 1, "x")

	gen := e.generator(t, fixed(`{"briefing":"manual"}`), GeneratorOptions{})
	s := NewScheduler(log, e.repos.Config, gen, NewCoordinator(log, nil, 10, 0), nil, SchedulerOptions{Now: func() time.Time { return clock }})

	rep, err := s.Run(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, rep.Due)

	rep, err = s.Run(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Due)
	assert.Equal(t, 1, rep.Delivered)
	assert.True(t, rep.Manual)
}

func TestScheduler_ManualFlagReachesBriefingRun(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	clock := time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)
	e.now = clock
	testutil.SeedActiveUser(t, ctx, e.db, 1, clock.Add(-time.Hour))
	testutil.SeedRawDump(t, ctx, e.db, 1, "call the bank")

	gen := e.generator(t, fixed(`{"briefing":"go"}`), GeneratorOptions{})
	s := NewScheduler(log, e.repos.Config, gen, NewCoordinator(log, nil, 10, 0), nil, SchedulerOptions{Now: func() time.Time { return clock }})

	rep, err := s.Run(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Delivered)

	testutil.SeedRawDump(t, ctx, e.db, 1, "call the bank again")
	rep, err = s.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Delivered)

	runs, err := e.repos.BriefingRun.ListByUser(e.dbc(), 1, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	manual := 0
	for _, r := range runs {
		if r.Manual {
			manual++
		}
	}
	assert.Equal(t, 1, manual)
}
