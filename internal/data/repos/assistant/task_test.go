package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprint-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sprint-backend/internal/domain"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
)

func TestTaskRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewTaskRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	created, err := repo.Create(dbc, []*types.Task{
		{UserID: 1, Title: "Call the bank", Priority: "URGENT"},
		{UserID: 1, Title: "Draft memo", Priority: "whatever"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Equal(t, assistant.PriorityUrgent, created[0].Priority)
	require.Equal(t, assistant.PriorityChore, created[1].Priority)
	require.Equal(t, assistant.TaskStatusTodo, created[1].Status)

	testutil.SeedTask(t, ctx, db, 1, "Old", assistant.PriorityChore, assistant.TaskStatusCancelled)
	other := testutil.SeedTask(t, ctx, db, 2, "Someone else's", assistant.PriorityUrgent, assistant.TaskStatusTodo)

	open, err := repo.ListOpen(dbc, 1)
	require.NoError(t, err)
	require.Len(t, open, 2)

	fire, err := repo.FirstTodoByPriority(dbc, 1, assistant.PriorityUrgent)
	require.NoError(t, err)
	require.NotNil(t, fire)
	require.Equal(t, "Call the bank", fire.Title)

	// A foreign id in the list must not be touched.
	n, err := repo.MarkDone(dbc, 1, []uuid.UUID{created[0].ID, other.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	fire, err = repo.FirstTodoByPriority(dbc, 1, assistant.PriorityUrgent)
	require.NoError(t, err)
	require.Nil(t, fire)

	stillOpen, err := repo.FirstTodoByPriority(dbc, 2, assistant.PriorityUrgent)
	require.NoError(t, err)
	require.NotNil(t, stillOpen)

	titles, err := repo.ListTitlesSince(dbc, 1, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Call the bank", "Draft memo", "Old"}, titles)
}

func TestRawDumpRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRawDumpRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	a, err := repo.Create(dbc, &types.RawDump{UserID: 5, Content: "buy milk"})
	require.NoError(t, err)
	b, err := repo.Create(dbc, &types.RawDump{UserID: 5, Content: "buy milk"})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
	foreign := testutil.SeedRawDump(t, ctx, db, 6, "not yours")

	pending, err := repo.ListUnprocessed(dbc, 5)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	n, err := repo.MarkProcessed(dbc, 5, []uuid.UUID{a.ID, b.ID, foreign.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	pending, err = repo.ListUnprocessed(dbc, 5)
	require.NoError(t, err)
	require.Empty(t, pending)

	pending, err = repo.ListUnprocessed(dbc, 6)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestPersonRepo_ClampsWeight(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPersonRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := repo.Create(dbc, []*types.Person{
		{UserID: 3, Name: "Jane", Role: "Wife", StrategicWeight: 42},
		{UserID: 3, Name: "John", Role: "Client", StrategicWeight: -1},
	})
	require.NoError(t, err)

	people, err := repo.ListByUser(dbc, 3)
	require.NoError(t, err)
	require.Len(t, people, 2)
	require.Equal(t, 10, people[0].StrategicWeight)
	require.Equal(t, 0, people[1].StrategicWeight)

	require.NoError(t, repo.DeleteAllForUser(dbc, 3))
	people, err = repo.ListByUser(dbc, 3)
	require.NoError(t, err)
	require.Empty(t, people)
}

func TestPersonRepo_KeepsZeroWeight(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPersonRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := repo.Create(dbc, []*types.Person{{UserID: 4, Name: "Ghost", Role: "Ex-colleague", StrategicWeight: 0}})
	require.NoError(t, err)

	people, err := repo.ListByUser(dbc, 4)
	require.NoError(t, err)
	require.Len(t, people, 1)
	require.Equal(t, 0, people[0].StrategicWeight)
}

func TestLogEntryRepo_ListRecentByType(t *testing.T) {
	db := testutil.DB(t)
	repo := NewLogEntryRepo(db, testutil.Logger(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		testutil.SeedLogEntry(t, ctx, db, 9, "WORK_IDEAS", "idea", base.Add(time.Duration(i)*time.Hour))
	}
	testutil.SeedLogEntry(t, ctx, db, 9, "journal", "not an idea", base.Add(24*time.Hour))
	testutil.SeedLogEntry(t, ctx, db, 8, assistant.LogEntryTypeIdeas, "someone else", base)

	got, err := repo.ListRecentByType(dbctx.Context{Ctx: ctx}, 9, "ideas", 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	require.True(t, got[0].CreatedAt.Equal(base.Add(6*time.Hour)))
	for _, e := range got {
		require.Equal(t, int64(9), e.UserID)
	}
}
