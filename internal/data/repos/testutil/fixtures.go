package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/sprint-backend/internal/domain"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
)

func SeedConfig(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64, key, value string, createdAt time.Time) *types.UserConfig {
	tb.Helper()
	row := &types.UserConfig{
		UserID:    userID,
		Key:       key,
		Value:     value,
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed config %s: %v", key, err)
	}
	return row
}

// SeedActiveUser writes every onboarding key so the user is past onboarding.
func SeedActiveUser(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64, createdAt time.Time) {
	tb.Helper()
	SeedConfig(tb, ctx, tx, userID, assistant.KeyUserName, "Ada", createdAt)
	SeedConfig(tb, ctx, tx, userID, assistant.KeyIdentity, "1", createdAt)
	SeedConfig(tb, ctx, tx, userID, assistant.KeyPulseSchedule, "1", createdAt)
	SeedConfig(tb, ctx, tx, userID, assistant.KeyTimezoneOffset, "0", createdAt)
	SeedConfig(tb, ctx, tx, userID, assistant.KeyCurrentSeason, "Ship the v2 launch", createdAt)
	SeedConfig(tb, ctx, tx, userID, assistant.KeyInitialPeopleSetup, "true", createdAt)
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64, title, priority, status string) *types.Task {
	tb.Helper()
	t := &types.Task{
		UserID:   userID,
		Title:    title,
		Priority: priority,
		Status:   status,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}

func SeedRawDump(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64, content string) *types.RawDump {
	tb.Helper()
	d := &types.RawDump{UserID: userID, Content: content}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed raw dump: %v", err)
	}
	return d
}

func SeedPerson(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64, name, role string) *types.Person {
	tb.Helper()
	p := &types.Person{UserID: userID, Name: name, Role: role, StrategicWeight: assistant.DefaultStrategicWeight}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed person: %v", err)
	}
	return p
}

func SeedLogEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64, entryType, content string, createdAt time.Time) *types.LogEntry {
	tb.Helper()
	l := &types.LogEntry{UserID: userID, EntryType: entryType, Content: content, CreatedAt: createdAt}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed log entry: %v", err)
	}
	return l
}
