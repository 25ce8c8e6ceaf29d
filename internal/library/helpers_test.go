package library

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/reading-tracker/internal/config"
	"github.com/mrlokans/reading-tracker/internal/database"
	"github.com/mrlokans/reading-tracker/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "library.db"),
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func createUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	user := entities.User{Username: name}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func uintp(v uint) *uint    { return &v }
func intp(v int) *int       { return &v }
func int64p(v int64) *int64 { return &v }

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsp(s string) *time.Time {
	t := ts(s)
	return &t
}

func datep(s string) *Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

// fixtureSnapshot is a small library with every kind represented.
func fixtureSnapshot() *Snapshot {
	return &Snapshot{
		Books: []BookRecord{
			{
				ID: uintp(1), Title: "Dune", Authors: "Frank Herbert", Status: "reading",
				StartDate: datep("2024-01-01"), CurrentPage: 120, TotalPages: intp(412),
				Rating: intp(5), Shelf: "nightstand", Tags: "sf, classic", Series: "Dune", SeriesIndex: intp(1),
				CreatedAt: tsp("2024-01-01T09:00:00Z"),
			},
			{
				ID: uintp(2), Title: "Emma", Authors: "Jane Austen", Status: "completed",
				StartDate: datep("2023-11-01"), EndDate: datep("2023-12-15"), Review: "Delightful",
				CreatedAt: tsp("2023-11-01T09:00:00Z"),
			},
			{
				ID: uintp(3), Title: "Untouched", CreatedAt: tsp("2023-01-01T09:00:00Z"),
			},
		},
		Categories: []CategoryRecord{
			{ID: uintp(7), Name: "Classics", CreatedAt: tsp("2023-01-01T00:00:00Z")},
			{ID: uintp(8), Name: "Sci-Fi", CreatedAt: tsp("2023-01-02T00:00:00Z")},
		},
		BookCategories: []BookCategoryRecord{
			{BookID: 1, CategoryID: 8},
			{BookID: 2, CategoryID: 7},
		},
		Challenges: []ChallengeRecord{
			{TargetBooks: 12, TargetPages: 4000, StartDate: datep("2024-01-01"), EndDate: datep("2024-12-31"),
				CreatedAt: tsp("2024-01-01T00:00:00Z")},
		},
		Sessions: []SessionRecord{
			{BookID: 1, StartTS: ts("2024-01-02T20:00:00Z"), EndTS: tsp("2024-01-02T20:30:00Z"), DurationSec: int64p(1800)},
			{BookID: 1, StartTS: ts("2024-01-03T21:00:00Z")},
			{BookID: 2, StartTS: ts("2023-12-01T08:00:00Z"), EndTS: tsp("2023-12-01T08:10:00Z"), DurationSec: int64p(600)},
		},
		Highlights: []HighlightRecord{
			{BookID: 1, Page: intp(42), Text: "Fear is the mind-killer.", CreatedAt: tsp("2024-01-02T20:10:00Z")},
			{BookID: 2, Text: "Badly done, Emma!", CreatedAt: tsp("2023-12-01T08:05:00Z")},
		},
	}
}

// logicalView renders a snapshot without identifier values, so two
// snapshots compare equal when they describe the same library.
type logicalView struct {
	Books      []string
	Categories []string
	Pairs      []string
	Challenges []string
	Sessions   []string
	Highlights []string
}

func logical(t *testing.T, snap *Snapshot) logicalView {
	t.Helper()
	titles := make(map[uint]string)
	for _, b := range snap.Books {
		if b.ID != nil {
			titles[*b.ID] = b.Title
		}
	}
	names := make(map[uint]string)
	for _, c := range snap.Categories {
		if c.ID != nil {
			names[*c.ID] = c.Name
		}
	}

	var v logicalView
	for _, b := range snap.Books {
		b.ID = nil
		if b.CreatedAt != nil {
			b.CreatedAt = tsp(b.CreatedAt.UTC().Format(time.RFC3339))
		}
		if b.Status == "" {
			b.Status = string(entities.BookStatusPlanned)
		}
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		v.Books = append(v.Books, string(raw))
	}
	for _, c := range snap.Categories {
		v.Categories = append(v.Categories, c.Name)
	}
	for _, p := range snap.BookCategories {
		v.Pairs = append(v.Pairs, titles[p.BookID]+"|"+names[p.CategoryID])
	}
	for _, c := range snap.Challenges {
		v.Challenges = append(v.Challenges, fmt.Sprintf("%d|%d|%s|%s", c.TargetBooks, c.TargetPages, c.StartDate, c.EndDate))
	}
	for _, s := range snap.Sessions {
		end, dur := "open", "-"
		if s.EndTS != nil {
			end = s.EndTS.UTC().Format(time.RFC3339)
		}
		if s.DurationSec != nil {
			dur = fmt.Sprint(*s.DurationSec)
		}
		v.Sessions = append(v.Sessions, fmt.Sprintf("%s|%s|%s|%s", titles[s.BookID], s.StartTS.UTC().Format(time.RFC3339), end, dur))
	}
	for _, h := range snap.Highlights {
		page := "-"
		if h.Page != nil {
			page = fmt.Sprint(*h.Page)
		}
		v.Highlights = append(v.Highlights, fmt.Sprintf("%s|%s|%s", titles[h.BookID], page, h.Text))
	}

	for _, list := range [][]string{v.Books, v.Categories, v.Pairs, v.Challenges, v.Sessions, v.Highlights} {
		sort.Strings(list)
	}
	return v
}

func exportView(t *testing.T, db *gorm.DB, userID uint) logicalView {
	t.Helper()
	snap, err := NewExporter(db, zap.NewNop()).Export(context.Background(), userID)
	require.NoError(t, err)
	return logical(t, snap)
}

func mustImport(t *testing.T, db *gorm.DB, userID uint, snap *Snapshot) *ImportResult {
	t.Helper()
	result, err := NewReconciler(db, zap.NewNop()).Import(context.Background(), userID, snap)
	require.NoError(t, err)
	return result
}
