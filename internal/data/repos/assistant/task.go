package assistant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/sprint-backend/internal/domain"
	"github.com/yungbote/sprint-backend/internal/domain/assistant"
	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

type TaskRepo interface {
	Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error)
	// ListOpen returns tasks that are neither done nor cancelled, oldest first.
	ListOpen(dbc dbctx.Context, userID int64) ([]*types.Task, error)
	ListTodo(dbc dbctx.Context, userID int64, limit int) ([]*types.Task, error)
	// FirstTodoByPriority returns nil when nothing matches.
	FirstTodoByPriority(dbc dbctx.Context, userID int64, priority string) (*types.Task, error)
	// MarkDone only touches rows owned by userID.
	MarkDone(dbc dbctx.Context, userID int64, ids []uuid.UUID) (int64, error)
	ListTitlesSince(dbc dbctx.Context, userID int64, since time.Time) ([]string, error)
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctxutil.Default(dbc.Ctx))
}

func (r *taskRepo) Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error) {
	if len(tasks) == 0 {
		return []*types.Task{}, nil
	}
	if err := r.tx(dbc).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) ListOpen(dbc dbctx.Context, userID int64) ([]*types.Task, error) {
	var results []*types.Task
	if err := r.tx(dbc).
		Where("user_id = ?", userID).
		Where("status NOT IN ?", []string{assistant.TaskStatusDone, assistant.TaskStatusCancelled}).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskRepo) ListTodo(dbc dbctx.Context, userID int64, limit int) ([]*types.Task, error) {
	var results []*types.Task
	q := r.tx(dbc).
		Where("user_id = ? AND status = ?", userID, assistant.TaskStatusTodo).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskRepo) FirstTodoByPriority(dbc dbctx.Context, userID int64, priority string) (*types.Task, error) {
	var results []*types.Task
	if err := r.tx(dbc).
		Where("user_id = ? AND status = ? AND priority = ?", userID, assistant.TaskStatusTodo, priority).
		Order("created_at ASC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *taskRepo) MarkDone(dbc dbctx.Context, userID int64, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.tx(dbc).
		Model(&types.Task{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(map[string]any{
			"status":     assistant.TaskStatusDone,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *taskRepo) ListTitlesSince(dbc dbctx.Context, userID int64, since time.Time) ([]string, error) {
	var titles []string
	if err := r.tx(dbc).
		Model(&types.Task{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("title", &titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}
