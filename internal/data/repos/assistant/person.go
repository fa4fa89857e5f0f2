package assistant

import (
	"gorm.io/gorm"

	types "github.com/yungbote/sprint-backend/internal/domain"
	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

type PersonRepo interface {
	Create(dbc dbctx.Context, people []*types.Person) ([]*types.Person, error)
	ListByUser(dbc dbctx.Context, userID int64) ([]*types.Person, error)
	DeleteAllForUser(dbc dbctx.Context, userID int64) error
}

type personRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return &personRepo{db: db, log: baseLog.With("repo", "PersonRepo")}
}

func (r *personRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctxutil.Default(dbc.Ctx))
}

func (r *personRepo) Create(dbc dbctx.Context, people []*types.Person) ([]*types.Person, error) {
	if len(people) == 0 {
		return []*types.Person{}, nil
	}
	if err := r.tx(dbc).Create(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func (r *personRepo) ListByUser(dbc dbctx.Context, userID int64) ([]*types.Person, error) {
	var results []*types.Person
	if err := r.tx(dbc).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *personRepo) DeleteAllForUser(dbc dbctx.Context, userID int64) error {
	return r.tx(dbc).
		Where("user_id = ?", userID).
		Delete(&types.Person{}).Error
}
