package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/reading-tracker/internal/entities"
	"github.com/mrlokans/reading-tracker/internal/errs"
)

// IDPolicy decides what happens to the id a snapshot row carries.
type IDPolicy int

const (
	// AlwaysReassign ignores the snapshot id and lets the store assign one.
	AlwaysReassign IDPolicy = iota
	// PreserveOrReassign keeps the snapshot id when it is free and silently
	// falls back to a store-assigned id when it is taken.
	PreserveOrReassign
)

func (p IDPolicy) String() string {
	if p == PreserveOrReassign {
		return "preserve-or-reassign"
	}
	return "always-reassign"
}

// DefaultIDPolicies returns the policy per kind used by NewReconciler.
func DefaultIDPolicies() map[Kind]IDPolicy {
	return map[Kind]IDPolicy{
		KindBooks:      PreserveOrReassign,
		KindCategories: AlwaysReassign,
		KindChallenges: AlwaysReassign,
		KindSessions:   AlwaysReassign,
		KindHighlights: AlwaysReassign,
	}
}

// ImportResult describes what an import did.
type ImportResult struct {
	Inserted map[Kind]int `json:"inserted"`
	// Remapped lists snapshot ids that were stored under a different id.
	Remapped map[Kind]map[uint]uint `json:"remapped,omitempty"`
	// Dropped counts rows whose references could not be translated.
	Dropped map[Kind]int `json:"dropped,omitempty"`
}

func newImportResult() *ImportResult {
	return &ImportResult{
		Inserted: make(map[Kind]int),
		Remapped: make(map[Kind]map[uint]uint),
		Dropped:  make(map[Kind]int),
	}
}

func (r *ImportResult) remap(kind Kind, from, to uint) {
	if from == to {
		return
	}
	if r.Remapped[kind] == nil {
		r.Remapped[kind] = make(map[uint]uint)
	}
	r.Remapped[kind][from] = to
}

// Reconciler replaces a user's whole library with the content of a snapshot.
type Reconciler struct {
	db        *gorm.DB
	log       *zap.Logger
	validator *Validator
	policies  map[Kind]IDPolicy
	now       func() time.Time
}

type ReconcilerOption func(*Reconciler)

// WithIDPolicy overrides the id policy of one kind.
func WithIDPolicy(kind Kind, policy IDPolicy) ReconcilerOption {
	return func(r *Reconciler) {
		r.policies[kind] = policy
	}
}

// WithClock sets the time used for rows that carry no created_at.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.now = now
	}
}

func NewReconciler(db *gorm.DB, log *zap.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		db:        db,
		log:       log,
		validator: NewValidator(),
		policies:  DefaultIDPolicies(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Import validates the snapshot, then deletes every row the user owns and
// inserts the snapshot's rows in a single transaction. Validation problems
// return an error matching errs.ErrValidation before anything is changed.
// Any other failure, including a cancelled context, rolls everything back
// and returns an error matching errs.ErrStoreUnavailable.
func (r *Reconciler) Import(ctx context.Context, userID uint, snap *Snapshot) (*ImportResult, error) {
	if snap == nil {
		snap = &Snapshot{}
	}
	if err := r.validator.Validate(snap); err != nil {
		return nil, err
	}

	result := newImportResult()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range deleteOrder {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := operations[kind].purge(tx, userID); err != nil {
				return fmt.Errorf("delete %s: %w", kind, err)
			}
		}

		st := &importState{
			tx:         tx,
			userID:     userID,
			snap:       snap,
			policies:   r.policies,
			now:        r.now(),
			books:      make(map[uint]uint, len(snap.Books)),
			categories: make(map[uint]uint, len(snap.Categories)),
			result:     result,
		}
		for _, kind := range insertOrder {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := operations[kind].load(st); err != nil {
				return fmt.Errorf("insert %s: %w", kind, err)
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error("snapshot import rolled back", zap.Uint("user_id", userID), zap.Error(err))
		return nil, errs.Store("import", err)
	}

	r.log.Info("snapshot imported",
		zap.Uint("user_id", userID),
		zap.Any("inserted", result.Inserted),
		zap.Any("dropped", result.Dropped),
	)
	return result, nil
}

type kindOps struct {
	purge func(tx *gorm.DB, userID uint) error
	load  func(st *importState) error
}

var operations = map[Kind]kindOps{
	KindBooks:          {purge: purgeOwned(&entities.Book{}), load: loadBooks},
	KindCategories:     {purge: purgeOwned(&entities.Category{}), load: loadCategories},
	KindBookCategories: {purge: purgeBookCategories, load: loadBookCategories},
	KindChallenges:     {purge: purgeOwned(&entities.Challenge{}), load: loadChallenges},
	KindSessions:       {purge: purgeOwned(&entities.ReadingSession{}), load: loadSessions},
	KindHighlights:     {purge: purgeOwned(&entities.Highlight{}), load: loadHighlights},
}

func purgeOwned(model interface{}) func(tx *gorm.DB, userID uint) error {
	return func(tx *gorm.DB, userID uint) error {
		return tx.Where("user_id = ?", userID).Delete(model).Error
	}
}

// Only pairs touching the user's books are removed.
func purgeBookCategories(tx *gorm.DB, userID uint) error {
	owned := tx.Model(&entities.Book{}).Select("id").Where("user_id = ?", userID)
	return tx.Where("book_id IN (?)", owned).Delete(&entities.BookCategory{}).Error
}

// importState is owned by a single Import call and its transaction.
type importState struct {
	tx       *gorm.DB
	userID   uint
	snap     *Snapshot
	policies map[Kind]IDPolicy
	now      time.Time

	// snapshot id -> stored id
	books      map[uint]uint
	categories map[uint]uint

	result *ImportResult
}

// create inserts row applying the kind's id policy. id points at the row's
// primary key field; want is the id the snapshot carried.
func (st *importState) create(kind Kind, want *uint, row interface{}, id *uint) error {
	*id = 0
	if st.policies[kind] == PreserveOrReassign && want != nil && *want != 0 {
		taken, err := st.idTaken(row, *want)
		if err != nil {
			return err
		}
		if !taken {
			*id = *want
			err := st.tx.Transaction(func(sp *gorm.DB) error {
				return sp.Omit(clause.Associations).Create(row).Error
			})
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			*id = 0
		}
	}
	return st.tx.Omit(clause.Associations).Create(row).Error
}

func (st *importState) idTaken(model interface{}, id uint) (bool, error) {
	var n int64
	err := st.tx.Model(model).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (st *importState) record(kind Kind, table map[uint]uint, want *uint, got uint) {
	st.result.Inserted[kind]++
	if want == nil || *want == 0 {
		return
	}
	table[*want] = got
	st.result.remap(kind, *want, got)
}

func loadBooks(st *importState) error {
	for _, rec := range st.snap.Books {
		book := rec.toEntity(st.userID, st.now)
		if err := st.create(KindBooks, rec.ID, &book, &book.ID); err != nil {
			return err
		}
		st.record(KindBooks, st.books, rec.ID, book.ID)
	}
	return nil
}

func loadCategories(st *importState) error {
	for _, rec := range st.snap.Categories {
		category := rec.toEntity(st.userID, st.now)
		if err := st.create(KindCategories, rec.ID, &category, &category.ID); err != nil {
			return err
		}
		st.record(KindCategories, st.categories, rec.ID, category.ID)
	}
	return nil
}

// Pairs are translated through both tables. Untranslatable pairs are
// dropped and duplicates collapse to one row.
func loadBookCategories(st *importState) error {
	type key struct{ book, category uint }
	seen := make(map[key]bool, len(st.snap.BookCategories))
	pairs := make([]entities.BookCategory, 0, len(st.snap.BookCategories))
	for _, rec := range st.snap.BookCategories {
		bookID, okBook := st.books[rec.BookID]
		categoryID, okCategory := st.categories[rec.CategoryID]
		if !okBook || !okCategory {
			st.result.Dropped[KindBookCategories]++
			continue
		}
		k := key{bookID, categoryID}
		if seen[k] {
			continue
		}
		seen[k] = true
		pairs = append(pairs, entities.BookCategory{BookID: bookID, CategoryID: categoryID})
	}
	if len(pairs) == 0 {
		return nil
	}
	if err := st.tx.Omit(clause.Associations).CreateInBatches(&pairs, 100).Error; err != nil {
		return err
	}
	st.result.Inserted[KindBookCategories] += len(pairs)
	return nil
}

func loadChallenges(st *importState) error {
	for _, rec := range st.snap.Challenges {
		challenge := rec.toEntity(st.userID, st.now)
		if err := st.create(KindChallenges, rec.ID, &challenge, &challenge.ID); err != nil {
			return err
		}
		st.result.Inserted[KindChallenges]++
	}
	return nil
}

func loadSessions(st *importState) error {
	for _, rec := range st.snap.Sessions {
		bookID, ok := st.books[rec.BookID]
		if !ok {
			st.result.Dropped[KindSessions]++
			continue
		}
		session := rec.toEntity(st.userID, bookID)
		if err := st.create(KindSessions, rec.ID, &session, &session.ID); err != nil {
			return err
		}
		st.result.Inserted[KindSessions]++
	}
	return nil
}

func loadHighlights(st *importState) error {
	for _, rec := range st.snap.Highlights {
		bookID, ok := st.books[rec.BookID]
		if !ok {
			st.result.Dropped[KindHighlights]++
			continue
		}
		highlight := rec.toEntity(st.userID, bookID, st.now)
		if err := st.create(KindHighlights, rec.ID, &highlight, &highlight.ID); err != nil {
			return err
		}
		st.result.Inserted[KindHighlights]++
	}
	return nil
}
