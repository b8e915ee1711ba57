package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/internal/repository"
	"github.com/sponsorship-studio/engine/pkg/logger"
)

// SentinelPassword is the shared password of every seeded account.
const SentinelPassword = "password"

// SeedUsers returns the mock directory, without password hashes.
func SeedUsers() []models.User {
	return []models.User{
		{
			ID:    "1",
			Name:  "أمين بن علي",
			Email: "startup@example.com",
			Role:  models.RoleStartup,
			Profile: map[string]any{
				"company": "تقنيات الغد",
				"wilaya":  "الجزائر",
			},
		},
		{
			ID:    "2",
			Name:  "سارة منصوري",
			Email: "sponsor@example.com",
			Role:  models.RoleSponsor,
			Profile: map[string]any{
				"organization": "مؤسسة الأمل للتجهيزات",
			},
		},
		{
			ID:    "3",
			Name:  "مدير المنصة",
			Email: "admin@example.com",
			Role:  models.RoleAdmin,
		},
	}
}

// SeedDirectory inserts the seeded accounts that are missing from users,
// hashing the sentinel password with cost.
func SeedDirectory(ctx context.Context, users repository.UserRepository, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(SentinelPassword), cost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, u := range SeedUsers() {
		if _, err := users.FindByEmail(ctx, u.Email); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}
		u.PasswordHash = string(hash)
		u.CreatedAt = now
		u.UpdatedAt = now
		if err := users.Insert(ctx, &u); err != nil {
			return err
		}
		logger.L().Debug("seeded user", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	}
	return nil
}
