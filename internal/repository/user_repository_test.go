package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sponsorship-studio/engine/internal/models"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()

	u := &models.User{ID: "u1", Name: "Lina", Email: "lina@example.com", Role: models.RoleSponsor}
	require.NoError(t, r.Insert(ctx, u))
	require.ErrorIs(t, r.Insert(ctx, &models.User{ID: "u2", Email: "lina@example.com"}), ErrDuplicateEmail)

	got, err := r.FindByEmail(ctx, "lina@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)

	_, err = r.FindByEmail(ctx, "LINA@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	got, err = r.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, models.RoleSponsor, got.Role)

	got.Name = "changed"
	again, _ := r.FindByID(ctx, "u1")
	require.Equal(t, "Lina", again.Name)
}
