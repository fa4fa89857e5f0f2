package services

import (
	"context"
	"fmt"
	"time"

	repos "github.com/yungbote/sprint-backend/internal/data/repos"
	"github.com/yungbote/sprint-backend/internal/pkg/dbctx"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

// TrialLength is the free sprint window measured from a user's first configuration row.
const TrialLength = 14 * 24 * time.Hour

type TrialService interface {
	// Expired reports whether more than TrialLength has elapsed since the user's
	// earliest configuration row. Users with no rows are never expired.
	Expired(ctx context.Context, userID int64) (bool, error)
}

type trialService struct {
	log    *logger.Logger
	config repos.UserConfigRepo
	length time.Duration
	now    func() time.Time
}

func NewTrialService(baseLog *logger.Logger, config repos.UserConfigRepo) TrialService {
	return NewTrialServiceWithClock(baseLog, config, TrialLength, time.Now)
}

func NewTrialServiceWithClock(baseLog *logger.Logger, config repos.UserConfigRepo, length time.Duration, now func() time.Time) TrialService {
	if length <= 0 {
		length = TrialLength
	}
	if now == nil {
		now = time.Now
	}
	return &trialService{
		log:    baseLog.With("service", "TrialService"),
		config: config,
		length: length,
		now:    now,
	}
}

func (s *trialService) Expired(ctx context.Context, userID int64) (bool, error) {
	started, err := s.config.EarliestCreatedAt(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return false, fmt.Errorf("load trial start: %w", err)
	}
	if started == nil {
		return false, nil
	}
	elapsed := s.now().Sub(*started)
	if elapsed > s.length {
		s.log.Debug("trial expired", "user_id", userID, "started", started.UTC().Format(time.RFC3339))
		return true, nil
	}
	return false, nil
}
