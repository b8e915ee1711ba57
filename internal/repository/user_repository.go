package repository

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/sponsorship-studio/engine/internal/models"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// ErrUserNotFound is returned by lookups that match no directory entry.
var ErrUserNotFound = appErr.New(appErr.CodeNotFound, "user not found")

// ErrDuplicateEmail is returned by Insert when the email is already taken.
var ErrDuplicateEmail = appErr.New(appErr.CodeConflict, "email already registered")

// UserRepository is the user directory consulted by the identity provider.
// Emails are matched case-sensitively.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

// NewUserRepository returns a gorm-backed directory.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db), db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get user by email failed")
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.GetByID(ctx, id, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Insert(ctx context.Context, u *models.User) error {
	if err := r.Create(ctx, u); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// MemoryUserRepository is an in-process directory, used for the mock
// deployment and in tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

var _ UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			c := u
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			c := u
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	r.users = append(r.users, *u)
	return nil
}
