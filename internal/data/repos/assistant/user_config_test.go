package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprint-backend/internal/data/repos/testutil"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
)

func TestUserConfigRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserConfigRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	const userID int64 = 1001

	require.NoError(t, repo.Set(dbc, userID, assistant.KeyIdentity, "1"))
	require.NoError(t, repo.Set(dbc, userID, assistant.KeyIdentity, "3"))

	rows, err := repo.ListByUser(dbc, userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	cfg := assistant.ConfigMap(rows)
	require.Equal(t, "3", cfg[assistant.KeyIdentity], "set must replace, not append")
	_, ok := cfg[assistant.KeyPulseSchedule]
	require.False(t, ok)

	require.NoError(t, repo.Delete(dbc, userID, assistant.KeyIdentity))
	rows, err = repo.ListByUser(dbc, userID)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestUserConfigRepo_EarliestCreatedAt(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserConfigRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	got, err := repo.EarliestCreatedAt(dbc, 7)
	require.NoError(t, err)
	require.Nil(t, got)

	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	testutil.SeedConfig(t, ctx, db, 7, assistant.KeyIdentity, "2", first.Add(time.Hour))
	testutil.SeedConfig(t, ctx, db, 7, assistant.KeyUserName, "Ada", first)

	got, err = repo.EarliestCreatedAt(dbc, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.Equal(first), "got %s", got)
}

func TestUserConfigRepo_ListUserIDsWithKey(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserConfigRepo(db, testutil.Logger(t))
	ctx := context.Background()
	now := time.Now().UTC()

	testutil.SeedConfig(t, ctx, db, 1, assistant.KeyCurrentSeason, "goal one", now)
	testutil.SeedConfig(t, ctx, db, 2, assistant.KeyCurrentSeason, "goal two", now)
	testutil.SeedConfig(t, ctx, db, 2, assistant.KeyIdentity, "1", now)
	testutil.SeedConfig(t, ctx, db, 3, assistant.KeyIdentity, "1", now)

	ids, err := repo.ListUserIDsWithKey(dbctx.Context{Ctx: ctx}, assistant.KeyCurrentSeason)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, ids)
}

func TestUserConfigRepo_DeleteAllForUserIsScoped(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserConfigRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	now := time.Now().UTC()

	testutil.SeedActiveUser(t, ctx, db, 10, now)
	testutil.SeedActiveUser(t, ctx, db, 11, now)

	require.NoError(t, repo.DeleteAllForUser(dbc, 10))

	rows, err := repo.ListByUser(dbc, 10)
	require.NoError(t, err)
	require.Empty(t, rows)

	rows, err = repo.ListByUser(dbc, 11)
	require.NoError(t, err)
	require.Len(t, rows, 6)
}
