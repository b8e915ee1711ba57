//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/pkg/database"
)

func TestUserRepositoryPostgres(t *testing.T) {
	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("sponsorship_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)
	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.OpenPostgres(ctx, dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	repo := NewUserRepository(db)
	u := &models.User{ID: "u-1", Name: "Lina", Email: "lina@example.com", Role: models.RoleSponsor,
		Profile: map[string]any{"organization": "Atlas"}}
	require.NoError(t, repo.Insert(ctx, u))

	got, err := repo.FindByEmail(ctx, "lina@example.com")
	require.NoError(t, err)
	require.Equal(t, "u-1", got.ID)
	require.Equal(t, "Atlas", got.Profile["organization"])

	_, err = repo.FindByEmail(ctx, "LINA@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	dup := &models.User{ID: "u-2", Name: "Other", Email: "lina@example.com", Role: models.RoleStartup}
	require.ErrorIs(t, repo.Insert(ctx, dup), ErrDuplicateEmail)

	_, err = repo.FindByID(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}
