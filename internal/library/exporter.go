package library

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/reading-tracker/internal/entities"
	"github.com/mrlokans/reading-tracker/internal/errs"
)

// Exporter builds snapshot documents. It never writes.
type Exporter struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewExporter(db *gorm.DB, log *zap.Logger) *Exporter {
	return &Exporter{db: db, log: log, now: time.Now}
}

// Export reads everything userID owns. A failed read fails the whole call
// with an error matching errs.ErrStoreUnavailable.
func (e *Exporter) Export(ctx context.Context, userID uint) (*Snapshot, error) {
	db := e.db.WithContext(ctx)
	owned := func() *gorm.DB { return db.Where("user_id = ?", userID) }

	var books []entities.Book
	if err := owned().Order("created_at DESC").Order("id DESC").Find(&books).Error; err != nil {
		return nil, e.fail("export books", userID, err)
	}

	var categories []entities.Category
	if err := owned().Order("name").Order("id").Find(&categories).Error; err != nil {
		return nil, e.fail("export categories", userID, err)
	}

	var pairs []entities.BookCategory
	err := db.Model(&entities.BookCategory{}).
		Select("book_categories.book_id, book_categories.category_id").
		Joins("JOIN books ON books.id = book_categories.book_id").
		Where("books.user_id = ?", userID).
		Order("book_categories.book_id").Order("book_categories.category_id").
		Find(&pairs).Error
	if err != nil {
		return nil, e.fail("export book categories", userID, err)
	}

	var challenges []entities.Challenge
	if err := owned().Order("start_date DESC").Order("id DESC").Find(&challenges).Error; err != nil {
		return nil, e.fail("export challenges", userID, err)
	}

	var sessions []entities.ReadingSession
	if err := owned().Order("start_ts DESC").Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, e.fail("export sessions", userID, err)
	}

	var highlights []entities.Highlight
	if err := owned().Order("created_at DESC").Order("id DESC").Find(&highlights).Error; err != nil {
		return nil, e.fail("export highlights", userID, err)
	}

	snap := &Snapshot{
		ExportedAt:     e.now().UTC(),
		Books:          make([]BookRecord, 0, len(books)),
		Categories:     make([]CategoryRecord, 0, len(categories)),
		BookCategories: make([]BookCategoryRecord, 0, len(pairs)),
		Challenges:     make([]ChallengeRecord, 0, len(challenges)),
		Sessions:       make([]SessionRecord, 0, len(sessions)),
		Highlights:     make([]HighlightRecord, 0, len(highlights)),
	}
	for _, b := range books {
		snap.Books = append(snap.Books, bookRecord(b))
	}
	for _, c := range categories {
		snap.Categories = append(snap.Categories, categoryRecord(c))
	}
	for _, p := range pairs {
		snap.BookCategories = append(snap.BookCategories, BookCategoryRecord{BookID: p.BookID, CategoryID: p.CategoryID})
	}
	for _, c := range challenges {
		snap.Challenges = append(snap.Challenges, challengeRecord(c))
	}
	for _, s := range sessions {
		snap.Sessions = append(snap.Sessions, sessionRecord(s))
	}
	for _, h := range highlights {
		snap.Highlights = append(snap.Highlights, highlightRecord(h))
	}

	e.log.Debug("snapshot exported", zap.Uint("user_id", userID), zap.Any("counts", snap.Counts()))
	return snap, nil
}

func (e *Exporter) fail(op string, userID uint, err error) error {
	e.log.Error("snapshot export failed", zap.String("op", op), zap.Uint("user_id", userID), zap.Error(err))
	return errs.Store(op, err)
}
