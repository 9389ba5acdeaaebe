package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plantpedia/plantpedia/internal/config"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	repo := &UserRepository{DB: initTestDB(t)}
	ctx := context.Background()

	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	user, err := repo.Register(ctx, "alice", "password", "Nguyen", "F", dob, "")
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	got, err := repo.Login(ctx, "alice", "password")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.Login)
	require.Equal(t, "alice", got.Login.Username)
	require.NotNil(t, got.Login.LastLoginAt)

	// Stored credential is a (hash, salt) pair, never the password.
	require.NotEqual(t, "password", got.Login.PasswordHash)
	require.NotEmpty(t, got.Login.PasswordSalt)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := &UserRepository{DB: initTestDB(t)}
	ctx := context.Background()

	_, err := repo.Register(ctx, "alice", "password", "Nguyen", "F", time.Time{}, "")
	require.NoError(t, err)

	wrongPassword, err := repo.Login(ctx, "alice", "not-the-password")
	require.NoError(t, err)
	require.Nil(t, wrongPassword)

	unknownUser, err := repo.Login(ctx, "nobody", "password")
	require.NoError(t, err)
	require.Nil(t, unknownUser)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := &UserRepository{DB: initTestDB(t)}
	ctx := context.Background()

	_, err := repo.Register(ctx, "alice", "password", "Nguyen", "F", time.Time{}, "")
	require.NoError(t, err)

	_, err = repo.Register(ctx, "alice", "other", "Tran", "M", time.Time{}, "")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestGetByIDMissing(t *testing.T) {
	repo := &UserRepository{DB: initTestDB(t)}

	user, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	require.Nil(t, user)
}
