package assistant

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/sprint-backend/internal/domain"
	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

type LogEntryRepo interface {
	Create(dbc dbctx.Context, entries []*types.LogEntry) ([]*types.LogEntry, error)
	// ListRecentByType matches entry_type case-insensitively as a substring, newest first.
	ListRecentByType(dbc dbctx.Context, userID int64, entryType string, limit int) ([]*types.LogEntry, error)
}

type logEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLogEntryRepo(db *gorm.DB, baseLog *logger.Logger) LogEntryRepo {
	return &logEntryRepo{db: db, log: baseLog.With("repo", "LogEntryRepo")}
}

func (r *logEntryRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctxutil.Default(dbc.Ctx))
}

func (r *logEntryRepo) Create(dbc dbctx.Context, entries []*types.LogEntry) ([]*types.LogEntry, error) {
	if len(entries) == 0 {
		return []*types.LogEntry{}, nil
	}
	if err := r.tx(dbc).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *logEntryRepo) ListRecentByType(dbc dbctx.Context, userID int64, entryType string, limit int) ([]*types.LogEntry, error) {
	var results []*types.LogEntry
	// UPPER/LIKE instead of ILIKE keeps the query portable to SQLite.
	q := r.tx(dbc).
		Where("user_id = ? AND UPPER(entry_type) LIKE ?", userID, "%"+strings.ToUpper(entryType)+"%").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
