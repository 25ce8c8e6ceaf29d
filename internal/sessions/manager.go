// Package sessions keeps at most one open reading session per user and book.
package sessions

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/reading-tracker/internal/entities"
	"github.com/mrlokans/reading-tracker/internal/errs"
)

// ListLimit caps the number of sessions List returns.
const ListLimit = 50

type Manager struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(db *gorm.DB, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{db: db, log: log, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start closes every open session of the pair and opens a new one, in one
// transaction. The book must belong to the user, otherwise errs.ErrNotFound.
func (m *Manager) Start(ctx context.Context, userID, bookID uint) (*entities.ReadingSession, error) {
	now := m.now().UTC()
	var session entities.ReadingSession

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&entities.Book{}).Where("id = ? AND user_id = ?", bookID, userID).Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return errs.ErrNotFound
		}

		var open []entities.ReadingSession
		if err := openSessions(tx, userID, bookID).Find(&open).Error; err != nil {
			return err
		}
		for i := range open {
			closed, err := closeSession(tx, &open[i], now)
			if err != nil {
				return err
			}
			if closed {
				m.log.Debug("closed previous session",
					zap.Uint("session_id", open[i].ID),
					zap.Int64("duration_sec", *open[i].DurationSec),
				)
			}
		}

		session = entities.ReadingSession{UserID: userID, BookID: bookID, StartTS: now}
		return tx.Omit(clause.Associations).Create(&session).Error
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		m.log.Error("failed to start session", zap.Uint("user_id", userID), zap.Uint("book_id", bookID), zap.Error(err))
		return nil, errs.Store("start session", err)
	}
	return &session, nil
}

// Stop closes the most recently started open session of the pair. When none
// is open, or another caller closed it first, it returns errs.ErrNoActiveSession.
func (m *Manager) Stop(ctx context.Context, userID, bookID uint) (*entities.ReadingSession, error) {
	now := m.now().UTC()
	db := m.db.WithContext(ctx)

	var session entities.ReadingSession
	err := openSessions(db, userID, bookID).Order("start_ts DESC").Order("id DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNoActiveSession
	}
	if err != nil {
		m.log.Error("failed to load open session", zap.Uint("user_id", userID), zap.Uint("book_id", bookID), zap.Error(err))
		return nil, errs.Store("stop session", err)
	}

	closed, err := closeSession(db, &session, now)
	if err != nil {
		m.log.Error("failed to stop session", zap.Uint("session_id", session.ID), zap.Error(err))
		return nil, errs.Store("stop session", err)
	}
	if !closed {
		return nil, errs.ErrNoActiveSession
	}
	return &session, nil
}

// List returns the newest sessions of the pair, at most ListLimit.
func (m *Manager) List(ctx context.Context, userID, bookID uint) ([]entities.ReadingSession, error) {
	var list []entities.ReadingSession
	err := m.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("start_ts DESC").Order("id DESC").
		Limit(ListLimit).
		Find(&list).Error
	if err != nil {
		return nil, errs.Store("list sessions", err)
	}
	return list, nil
}

func openSessions(db *gorm.DB, userID, bookID uint) *gorm.DB {
	return db.Where("user_id = ? AND book_id = ? AND end_ts IS NULL", userID, bookID)
}

// closeSession stamps end time and whole-second duration, but only while the
// row is still open. It reports whether this call closed it.
func closeSession(db *gorm.DB, s *entities.ReadingSession, now time.Time) (bool, error) {
	duration := int64(now.Sub(s.StartTS) / time.Second)
	if duration < 0 {
		duration = 0
	}

	result := db.Model(&entities.ReadingSession{}).
		Where("id = ? AND end_ts IS NULL", s.ID).
		Updates(map[string]interface{}{"end_ts": now, "duration_sec": duration})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	s.EndTS = &now
	s.DurationSec = &duration
	return true, nil
}
