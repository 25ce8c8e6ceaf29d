package streaks

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/reading-tracker/internal/entities"
	"github.com/mrlokans/reading-tracker/internal/errs"
)

// Service computes a Summary from a user's stored sessions. Session starts
// are bucketed into days of a single configured time zone.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
	loc *time.Location
	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, log: log, loc: loc, now: time.Now}
}

// Summary uses the current date in the service's time zone as today.
func (s *Service) Summary(ctx context.Context, userID uint) (*Summary, error) {
	return s.SummaryAt(ctx, userID, DayOf(s.now(), s.loc))
}

// SummaryAt computes the summary with an explicit today.
func (s *Service) SummaryAt(ctx context.Context, userID uint, today Day) (*Summary, error) {
	db := s.db.WithContext(ctx)

	var totals struct {
		Sessions int64
		Total    int64
	}
	err := db.Model(&entities.ReadingSession{}).
		Select("COUNT(*) AS sessions, COALESCE(SUM(duration_sec), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		s.log.Error("failed to load session totals", zap.Uint("user_id", userID), zap.Error(err))
		return nil, errs.Store("session totals", err)
	}

	var starts []time.Time
	if err := db.Model(&entities.ReadingSession{}).Where("user_id = ?", userID).Pluck("start_ts", &starts).Error; err != nil {
		s.log.Error("failed to load session starts", zap.Uint("user_id", userID), zap.Error(err))
		return nil, errs.Store("session starts", err)
	}

	days := DistinctDays(starts, s.loc)
	return &Summary{
		Sessions:         totals.Sessions,
		TotalDurationSec: totals.Total,
		CurrentStreak:    CurrentStreak(days, today),
		LongestStreak:    LongestStreak(days),
	}, nil
}
