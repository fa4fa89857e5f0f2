package assistant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/sprint-backend/internal/domain"
	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

type RawDumpRepo interface {
	Create(dbc dbctx.Context, dump *types.RawDump) (*types.RawDump, error)
	ListUnprocessed(dbc dbctx.Context, userID int64) ([]*types.RawDump, error)
	MarkProcessed(dbc dbctx.Context, userID int64, ids []uuid.UUID) (int64, error)
}

type rawDumpRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRawDumpRepo(db *gorm.DB, baseLog *logger.Logger) RawDumpRepo {
	return &rawDumpRepo{db: db, log: baseLog.With("repo", "RawDumpRepo")}
}

func (r *rawDumpRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctxutil.Default(dbc.Ctx))
}

func (r *rawDumpRepo) Create(dbc dbctx.Context, dump *types.RawDump) (*types.RawDump, error) {
	if err := r.tx(dbc).Create(dump).Error; err != nil {
		return nil, err
	}
	return dump, nil
}

func (r *rawDumpRepo) ListUnprocessed(dbc dbctx.Context, userID int64) ([]*types.RawDump, error) {
	var results []*types.RawDump
	if err := r.tx(dbc).
		Where("user_id = ? AND is_processed = ?", userID, false).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rawDumpRepo) MarkProcessed(dbc dbctx.Context, userID int64, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.tx(dbc).
		Model(&types.RawDump{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("is_processed", true)
	return res.RowsAffected, res.Error
}
