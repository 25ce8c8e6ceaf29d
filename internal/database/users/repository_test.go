package users

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/reading-tracker/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.User{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_CreateUser(t *testing.T) {
	repo := setupTestDB(t)

	user, err := repo.CreateUser(context.Background(), "testuser", "test@example.com")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Empty(t, user.TokenHash)
}

func TestRepository_CreateUser_DuplicateUsername(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "testuser", "")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "testuser", "")
	assert.Error(t, err)
}

func TestRepository_TokenHash(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "testuser", "")
	require.NoError(t, err)

	require.NoError(t, repo.SetTokenHash(ctx, created.ID, "abc123"))

	user, err := repo.GetUserByTokenHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotNil(t, user.TokenCreatedAt)

	_, err = repo.GetUserByTokenHash(ctx, "nonexistent")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.SetTokenHash(ctx, 999, "x"), gorm.ErrRecordNotFound)
}

func TestRepository_EmptyTokenHashNeverMatches(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "tokenless", "")
	require.NoError(t, err)

	_, err = repo.GetUserByTokenHash(ctx, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Lookups(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	a, err := repo.CreateUser(ctx, "alice", "")
	require.NoError(t, err)
	b, err := repo.CreateUser(ctx, "bob", "")
	require.NoError(t, err)

	byID, err := repo.GetUserByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Username)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byName.ID)

	ids, err := repo.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, ids)
}
