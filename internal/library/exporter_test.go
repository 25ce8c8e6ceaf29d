package library

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/errs"
)

func TestExporter_Ordering(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db, "reader")
	mustImport(t, db, userID, fixtureSnapshot())

	snap, err := NewExporter(db, zap.NewNop()).Export(context.Background(), userID)
	require.NoError(t, err)

	// books newest first
	require.Len(t, snap.Books, 3)
	assert.Equal(t, "Dune", snap.Books[0].Title)
	assert.Equal(t, "Emma", snap.Books[1].Title)
	assert.Equal(t, "Untouched", snap.Books[2].Title)

	// categories by name
	require.Len(t, snap.Categories, 2)
	assert.Equal(t, "Classics", snap.Categories[0].Name)
	assert.Equal(t, "Sci-Fi", snap.Categories[1].Name)

	// sessions newest first
	require.Len(t, snap.Sessions, 3)
	assert.True(t, snap.Sessions[0].StartTS.Equal(ts("2024-01-03T21:00:00Z")))
	assert.Nil(t, snap.Sessions[0].EndTS)
	assert.True(t, snap.Sessions[2].StartTS.Equal(ts("2023-12-01T08:00:00Z")))

	// highlights newest first
	require.Len(t, snap.Highlights, 2)
	assert.Equal(t, "Fear is the mind-killer.", snap.Highlights[0].Text)

	require.Len(t, snap.Challenges, 1)
	assert.Equal(t, "2024-01-01", snap.Challenges[0].StartDate.String())
	assert.Equal(t, "2024-12-31", snap.Challenges[0].EndDate.String())

	assert.WithinDuration(t, time.Now(), snap.ExportedAt, time.Minute)
}

func TestExporter_OnlyOwnRows(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	mustImport(t, db, bob, fixtureSnapshot())

	snap, err := NewExporter(db, zap.NewNop()).Export(context.Background(), alice)
	require.NoError(t, err)

	assert.Empty(t, snap.Books)
	assert.Empty(t, snap.Categories)
	assert.Empty(t, snap.BookCategories)
	assert.Empty(t, snap.Challenges)
	assert.Empty(t, snap.Sessions)
	assert.Empty(t, snap.Highlights)
	assert.NotNil(t, snap.Books, "empty kinds export as empty lists")
}

func TestExporter_PairsFollowBookIDs(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db, "reader")
	mustImport(t, db, userID, fixtureSnapshot())

	snap, err := NewExporter(db, zap.NewNop()).Export(context.Background(), userID)
	require.NoError(t, err)

	bookIDs := map[uint]bool{}
	for _, b := range snap.Books {
		bookIDs[*b.ID] = true
	}
	categoryIDs := map[uint]bool{}
	for _, c := range snap.Categories {
		categoryIDs[*c.ID] = true
	}
	require.Len(t, snap.BookCategories, 2)
	for _, p := range snap.BookCategories {
		assert.True(t, bookIDs[p.BookID])
		assert.True(t, categoryIDs[p.CategoryID])
	}
}

func TestExporter_StoreFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `books`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title"}).AddRow(1, 1, "Dune"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `categories`")).
		WillReturnError(errors.New("connection refused"))

	snap, err := NewExporter(db, zap.NewNop()).Export(context.Background(), 1)

	assert.Nil(t, snap, "no partial document")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrStoreUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}
