package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/mrlokans/reading-tracker/internal/entities"
	"github.com/mrlokans/reading-tracker/internal/errs"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day, encoded as YYYY-MM-DD.
// Decoding also accepts RFC 3339 timestamps and keeps the date as written.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s: want a string", string(data))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}

func (d *Date) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// Snapshot is the complete, self-contained library of one user.
type Snapshot struct {
	ExportedAt     time.Time            `json:"exportedAt"`
	Books          []BookRecord         `json:"books"`
	Categories     []CategoryRecord     `json:"categories"`
	BookCategories []BookCategoryRecord `json:"book_categories"`
	Challenges     []ChallengeRecord    `json:"challenges"`
	Sessions       []SessionRecord      `json:"sessions"`
	Highlights     []HighlightRecord    `json:"highlights"`
}

type BookRecord struct {
	ID          *uint      `json:"id,omitempty"`
	GoogleID    string     `json:"google_id,omitempty" validate:"max=64"`
	Title       string     `json:"title" validate:"required,max=255"`
	Authors     string     `json:"authors,omitempty" validate:"max=255"`
	StartDate   *Date      `json:"start_date,omitempty"`
	EndDate     *Date      `json:"end_date,omitempty"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=planned reading completed on-hold dropped"`
	Notes       string     `json:"notes,omitempty"`
	CurrentPage int        `json:"current_page" validate:"gte=0"`
	Rating      *int       `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Review      string     `json:"review,omitempty"`
	Shelf       string     `json:"shelf,omitempty" validate:"max=50"`
	Tags        string     `json:"tags,omitempty"`
	Series      string     `json:"series,omitempty" validate:"max=120"`
	SeriesIndex *int       `json:"series_index,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	TotalPages  *int       `json:"total_pages,omitempty" validate:"omitempty,gte=0"`
}

type CategoryRecord struct {
	ID        *uint      `json:"id,omitempty"`
	Name      string     `json:"name" validate:"required,max=100"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type BookCategoryRecord struct {
	BookID     uint `json:"book_id" validate:"required"`
	CategoryID uint `json:"category_id" validate:"required"`
}

type ChallengeRecord struct {
	ID          *uint      `json:"id,omitempty"`
	TargetBooks int        `json:"target_books" validate:"gte=0"`
	TargetPages int        `json:"target_pages" validate:"gte=0"`
	StartDate   *Date      `json:"start_date" validate:"required"`
	EndDate     *Date      `json:"end_date" validate:"required"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type SessionRecord struct {
	ID          *uint      `json:"id,omitempty"`
	BookID      uint       `json:"book_id" validate:"required"`
	StartTS     time.Time  `json:"start_ts" validate:"required"`
	EndTS       *time.Time `json:"end_ts"`
	DurationSec *int64     `json:"duration_sec" validate:"omitempty,gte=0"`
}

type HighlightRecord struct {
	ID        *uint      `json:"id,omitempty"`
	BookID    uint       `json:"book_id" validate:"required"`
	Page      *int       `json:"page,omitempty" validate:"omitempty,gte=0"`
	Text      string     `json:"text" validate:"required"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Counts returns the number of rows per kind.
func (s *Snapshot) Counts() map[Kind]int {
	return map[Kind]int{
		KindBooks:          len(s.Books),
		KindCategories:     len(s.Categories),
		KindBookCategories: len(s.BookCategories),
		KindChallenges:     len(s.Challenges),
		KindSessions:       len(s.Sessions),
		KindHighlights:     len(s.Highlights),
	}
}

// DecodeSnapshot parses an untrusted snapshot document. Missing or null
// arrays decode as empty. Any shape problem is reported as a validation
// error so nothing is mutated.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errs.NewValidationError(map[string]string{"document": "is empty"})
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, decodeError(err)
	}
	return &snap, nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "document"
		}
		return errs.NewValidationError(map[string]string{
			field: fmt.Sprintf("must be %s, got %s", jsonKind(typeErr.Type), typeErr.Value),
		})
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return errs.NewValidationError(map[string]string{
			"document": fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset),
		})
	}
	return errs.NewValidationError(map[string]string{"document": err.Error()})
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a number"
	}
}

func (r BookRecord) toEntity(userID uint, now time.Time) entities.Book {
	status := entities.BookStatus(r.Status)
	if status == "" {
		status = entities.BookStatusPlanned
	}
	return entities.Book{
		UserID:      userID,
		GoogleID:    r.GoogleID,
		Title:       r.Title,
		Authors:     r.Authors,
		StartDate:   r.StartDate.timePtr(),
		EndDate:     r.EndDate.timePtr(),
		Status:      status,
		Notes:       r.Notes,
		CurrentPage: r.CurrentPage,
		TotalPages:  r.TotalPages,
		Rating:      r.Rating,
		Review:      r.Review,
		Shelf:       r.Shelf,
		Tags:        r.Tags,
		Series:      r.Series,
		SeriesIndex: r.SeriesIndex,
		CreatedAt:   timeOr(r.CreatedAt, now),
	}
}

func bookRecord(b entities.Book) BookRecord {
	id := b.ID
	created := b.CreatedAt
	return BookRecord{
		ID:          &id,
		GoogleID:    b.GoogleID,
		Title:       b.Title,
		Authors:     b.Authors,
		StartDate:   datePtr(b.StartDate),
		EndDate:     datePtr(b.EndDate),
		Status:      string(b.Status),
		Notes:       b.Notes,
		CurrentPage: b.CurrentPage,
		Rating:      b.Rating,
		Review:      b.Review,
		Shelf:       b.Shelf,
		Tags:        b.Tags,
		Series:      b.Series,
		SeriesIndex: b.SeriesIndex,
		CreatedAt:   &created,
		TotalPages:  b.TotalPages,
	}
}

func (r CategoryRecord) toEntity(userID uint, now time.Time) entities.Category {
	return entities.Category{
		UserID:    userID,
		Name:      r.Name,
		CreatedAt: timeOr(r.CreatedAt, now),
	}
}

func categoryRecord(c entities.Category) CategoryRecord {
	id := c.ID
	created := c.CreatedAt
	return CategoryRecord{ID: &id, Name: c.Name, CreatedAt: &created}
}

func (r ChallengeRecord) toEntity(userID uint, now time.Time) entities.Challenge {
	return entities.Challenge{
		UserID:      userID,
		TargetBooks: r.TargetBooks,
		TargetPages: r.TargetPages,
		StartDate:   r.StartDate.Time,
		EndDate:     r.EndDate.Time,
		CreatedAt:   timeOr(r.CreatedAt, now),
	}
}

func challengeRecord(c entities.Challenge) ChallengeRecord {
	id := c.ID
	created := c.CreatedAt
	start := NewDate(c.StartDate)
	end := NewDate(c.EndDate)
	return ChallengeRecord{
		ID:          &id,
		TargetBooks: c.TargetBooks,
		TargetPages: c.TargetPages,
		StartDate:   &start,
		EndDate:     &end,
		CreatedAt:   &created,
	}
}

func (r SessionRecord) toEntity(userID, bookID uint) entities.ReadingSession {
	return entities.ReadingSession{
		UserID:      userID,
		BookID:      bookID,
		StartTS:     r.StartTS,
		EndTS:       r.EndTS,
		DurationSec: r.DurationSec,
	}
}

func sessionRecord(s entities.ReadingSession) SessionRecord {
	id := s.ID
	return SessionRecord{
		ID:          &id,
		BookID:      s.BookID,
		StartTS:     s.StartTS,
		EndTS:       s.EndTS,
		DurationSec: s.DurationSec,
	}
}

func (r HighlightRecord) toEntity(userID, bookID uint, now time.Time) entities.Highlight {
	return entities.Highlight{
		UserID:    userID,
		BookID:    bookID,
		Page:      r.Page,
		Text:      r.Text,
		CreatedAt: timeOr(r.CreatedAt, now),
	}
}

func highlightRecord(h entities.Highlight) HighlightRecord {
	id := h.ID
	created := h.CreatedAt
	return HighlightRecord{
		ID:        &id,
		BookID:    h.BookID,
		Page:      h.Page,
		Text:      h.Text,
		CreatedAt: &created,
	}
}

func timeOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return *t
}
