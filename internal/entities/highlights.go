package entities

import (
	"time"
)

type BookStatus string

const (
	BookStatusPlanned   BookStatus = "planned"
	BookStatusReading   BookStatus = "reading"
	BookStatusCompleted BookStatus = "completed"
	BookStatusOnHold    BookStatus = "on-hold"
	BookStatusDropped   BookStatus = "dropped"
)

// BookStatuses lists every accepted status in display order.
var BookStatuses = []BookStatus{
	BookStatusPlanned,
	BookStatusReading,
	BookStatusCompleted,
	BookStatusOnHold,
	BookStatusDropped,
}

type Book struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	GoogleID    string     `gorm:"size:64" json:"google_id,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Authors     string     `gorm:"size:255" json:"authors,omitempty"`
	StartDate   *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	Status      BookStatus `gorm:"size:32;default:'planned'" json:"status"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CurrentPage int        `gorm:"default:0" json:"current_page"`
	TotalPages  *int       `json:"total_pages,omitempty"`
	Rating      *int       `json:"rating,omitempty"` // 1-5
	Review      string     `gorm:"type:text" json:"review,omitempty"`
	Shelf       string     `gorm:"size:50" json:"shelf,omitempty"`
	Tags        string     `gorm:"type:text" json:"tags,omitempty"` // free text, not the tags table
	Series      string     `gorm:"size:120" json:"series,omitempty"`
	SeriesIndex *int       `json:"series_index,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	User        User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"` // unique only by convention
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BookCategory is the many-to-many association between books and categories.
// Both sides must belong to the same user; the store only checks existence.
type BookCategory struct {
	BookID     uint     `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	CategoryID uint     `gorm:"primaryKey;autoIncrement:false" json:"category_id"`
	Book       Book     `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	Category   Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	TargetBooks int       `gorm:"default:0" json:"target_books"`
	TargetPages int       `gorm:"default:0" json:"target_pages"`
	StartDate   time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time `gorm:"type:date;not null" json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// ReadingSession is one timed reading interval. A nil EndTS means the
// session is still open.
type ReadingSession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	BookID      uint       `gorm:"index;not null" json:"book_id"`
	StartTS     time.Time  `gorm:"column:start_ts;not null;index" json:"start_ts"`
	EndTS       *time.Time `gorm:"column:end_ts" json:"end_ts"`
	DurationSec *int64     `gorm:"column:duration_sec" json:"duration_sec"`
	User        User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book        Book       `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsOpen reports whether the session has not been stopped yet.
func (s *ReadingSession) IsOpen() bool {
	return s.EndTS == nil
}

type Highlight struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	BookID    uint      `gorm:"index;not null" json:"book_id"`
	Page      *int      `json:"page,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

func (Category) TableName() string {
	return "categories"
}

func (BookCategory) TableName() string {
	return "book_categories"
}

func (Challenge) TableName() string {
	return "reading_challenges"
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

func (Highlight) TableName() string {
	return "highlights"
}
