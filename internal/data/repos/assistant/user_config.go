package assistant

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/sprint-backend/internal/domain"
	"github.com/yungbote/sprint-backend/internal/pkg/ctxutil"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

// UserConfigRepo is the typed accessor over the per-user key/value configuration table.
type UserConfigRepo interface {
	ListByUser(dbc dbctx.Context, userID int64) ([]*types.UserConfig, error)
	// Set replaces the value for key: delete then insert, last writer wins.
	Set(dbc dbctx.Context, userID int64, key, value string) error
	Delete(dbc dbctx.Context, userID int64, key string) error
	DeleteAllForUser(dbc dbctx.Context, userID int64) error
	// EarliestCreatedAt returns nil when the user has no configuration rows.
	EarliestCreatedAt(dbc dbctx.Context, userID int64) (*time.Time, error)
	ListUserIDsWithKey(dbc dbctx.Context, key string) ([]int64, error)
}

type userConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserConfigRepo(db *gorm.DB, baseLog *logger.Logger) UserConfigRepo {
	return &userConfigRepo{db: db, log: baseLog.With("repo", "UserConfigRepo")}
}

func (r *userConfigRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctxutil.Default(dbc.Ctx))
}

func (r *userConfigRepo) ListByUser(dbc dbctx.Context, userID int64) ([]*types.UserConfig, error) {
	var rows []*types.UserConfig
	if err := r.tx(dbc).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userConfigRepo) Set(dbc dbctx.Context, userID int64, key, value string) error {
	if key == "" {
		return fmt.Errorf("config key required")
	}
	write := func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND config_key = ?", userID, key).
			Delete(&types.UserConfig{}).Error; err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		row := &types.UserConfig{UserID: userID, Key: key, Value: value}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
		return nil
	}
	if dbc.Tx != nil {
		return write(r.tx(dbc))
	}
	return r.tx(dbc).Transaction(write)
}

func (r *userConfigRepo) Delete(dbc dbctx.Context, userID int64, key string) error {
	return r.tx(dbc).
		Where("user_id = ? AND config_key = ?", userID, key).
		Delete(&types.UserConfig{}).Error
}

func (r *userConfigRepo) DeleteAllForUser(dbc dbctx.Context, userID int64) error {
	return r.tx(dbc).
		Where("user_id = ?", userID).
		Delete(&types.UserConfig{}).Error
}

func (r *userConfigRepo) EarliestCreatedAt(dbc dbctx.Context, userID int64) (*time.Time, error) {
	var rows []*types.UserConfig
	if err := r.tx(dbc).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	t := rows[0].CreatedAt
	return &t, nil
}

func (r *userConfigRepo) ListUserIDsWithKey(dbc dbctx.Context, key string) ([]int64, error) {
	var ids []int64
	if err := r.tx(dbc).
		Model(&types.UserConfig{}).
		Where("config_key = ?", key).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
