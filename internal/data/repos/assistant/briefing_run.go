package assistant

import (
	"gorm.io/gorm"

	types "github.com/yungbote/sprint-backend/internal/domain"
	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

type BriefingRunRepo interface {
	Create(dbc dbctx.Context, run *types.BriefingRun) (*types.BriefingRun, error)
	ListByUser(dbc dbctx.Context, userID int64, limit int) ([]*types.BriefingRun, error)
}

type briefingRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBriefingRunRepo(db *gorm.DB, baseLog *logger.Logger) BriefingRunRepo {
	return &briefingRunRepo{db: db, log: baseLog.With("repo", "BriefingRunRepo")}
}

func (r *briefingRunRepo) Create(dbc dbctx.Context, run *types.BriefingRun) (*types.BriefingRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctxutil.Default(dbc.Ctx)).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *briefingRunRepo) ListByUser(dbc dbctx.Context, userID int64, limit int) ([]*types.BriefingRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.BriefingRun
	q := transaction.WithContext(ctxutil.Default(dbc.Ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
