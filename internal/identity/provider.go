// Package identity owns who is acting in a session and the transitions that
// change it: login, registration and logout.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/internal/repository"
	"github.com/sponsorship-studio/engine/internal/slot"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
	"github.com/sponsorship-studio/engine/pkg/logger"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// State is the authentication state of a session.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

var landingRoutes = map[models.Role]string{
	models.RoleStartup: "/startup/dashboard",
	models.RoleSponsor: "/sponsor/dashboard",
	models.RoleAdmin:   "/admin/dashboard",
}

// LandingRoute is where an actor is sent after a successful login.
func LandingRoute(role models.Role) string {
	if r, ok := landingRoutes[role]; ok {
		return r
	}
	return "/"
}

// RegisterInput is a self-registration request. Profile holds optional
// role-specific fields.
type RegisterInput struct {
	Name     string      `validate:"required"`
	Email    string      `validate:"required"`
	Password string      `validate:"required"`
	Role     models.Role `validate:"required"`
	Avatar   string
	Profile  map[string]any
}

// Provider hands out sessions over a user directory and a slot backend.
type Provider struct {
	users    repository.UserRepository
	slots    slot.Store
	cost     int
	validate *validator.Validate

	mu       sync.Mutex
	inflight map[string]int
}

type Option func(*Provider)

// WithBcryptCost sets the cost used to hash registered passwords.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

func NewProvider(users repository.UserRepository, slots slot.Store, opts ...Option) *Provider {
	p := &Provider{
		users:    users,
		slots:    slots,
		cost:     bcrypt.DefaultCost,
		validate: validator.New(),
		inflight: map[string]int{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session returns the handle for sessionID. Handles are cheap; all state
// lives in the session's slot.
func (p *Provider) Session(sessionID string) *Session {
	return &Session{p: p, id: sessionID, slot: slot.ForSession(p.slots, sessionID)}
}

func (p *Provider) begin(id string) {
	p.mu.Lock()
	p.inflight[id]++
	p.mu.Unlock()
}

func (p *Provider) end(id string) {
	p.mu.Lock()
	if p.inflight[id] <= 1 {
		delete(p.inflight, id)
	} else {
		p.inflight[id]--
	}
	p.mu.Unlock()
}

func (p *Provider) authenticating(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight[id] > 0
}

// Session is one actor's identity state. Concurrent logins on the same
// session are not cancelled; the last one to finish wins.
type Session struct {
	p    *Provider
	id   string
	slot *slot.Slot
}

func (s *Session) ID() string { return s.id }

// CurrentUser returns the persisted user, or nil when unauthenticated.
// Unreadable identity content is discarded and treated as absent.
func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	raw, err := s.slot.Get(ctx, slot.KeyCurrentUser)
	if err != nil {
		if errors.Is(err, slot.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
		logger.L().Warn("discarding unreadable session identity", zap.String("session_id", s.id), zap.Error(err))
		if derr := s.slot.Delete(ctx, slot.KeyCurrentUser); derr != nil {
			return nil, derr
		}
		return nil, nil
	}
	return &u, nil
}

// State reports the session's position in the authentication state machine.
func (s *Session) State(ctx context.Context) (State, error) {
	if s.p.authenticating(s.id) {
		return StateAuthenticating, nil
	}
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return StateUnauthenticated, err
	}
	if u == nil {
		return StateUnauthenticated, nil
	}
	return StateAuthenticated, nil
}

func (s *Session) IsAuthenticated(ctx context.Context) bool {
	u, err := s.CurrentUser(ctx)
	return err == nil && u != nil
}

// HasRole reports whether a current user exists and holds one of roles.
func (s *Session) HasRole(ctx context.Context, roles ...models.Role) bool {
	u, err := s.CurrentUser(ctx)
	if err != nil || u == nil {
		return false
	}
	return slices.Contains(roles, u.Role)
}

// Login authenticates against the directory. On failure the session ends up
// unauthenticated and ErrInvalidCredentials is returned.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.p.begin(s.id)
	defer s.p.end(s.id)

	u, err := s.p.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		logger.L().Info("login rejected: unknown email", zap.String("session_id", s.id))
		return nil, s.fail(ctx)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.L().Info("login rejected: wrong password", zap.String("session_id", s.id), zap.String("user_id", u.ID))
		return nil, s.fail(ctx)
	}

	if err := s.persist(ctx, u); err != nil {
		return nil, err
	}
	logger.L().Info("login succeeded", zap.String("session_id", s.id), zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *Session) fail(ctx context.Context) error {
	if err := s.slot.Delete(ctx, slot.KeyCurrentUser); err != nil {
		return err
	}
	return ErrInvalidCredentials
}

// Register creates a directory entry and authenticates the session as it.
// The admin role is refused before any other check.
func (s *Session) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	s.p.begin(s.id)
	defer s.p.end(s.id)

	if in.Role == models.RoleAdmin {
		return nil, ErrAdminSelfRegistration
	}
	if err := s.p.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			e := *ErrMissingFields
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, e.WithMeta("fields", fields)
		}
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid registration")
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if _, err := s.p.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.p.cost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Avatar:       in.Avatar,
		Profile:      in.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.p.users.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if err := s.persist(ctx, u); err != nil {
		return nil, err
	}
	logger.L().Info("user registered", zap.String("session_id", s.id), zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Logout clears the session's identity.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.slot.Delete(ctx, slot.KeyCurrentUser); err != nil {
		return err
	}
	logger.L().Info("logout", zap.String("session_id", s.id))
	return nil
}

func (s *Session) persist(ctx context.Context, u *models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "encode user failed")
	}
	return s.slot.Put(ctx, slot.KeyCurrentUser, b)
}
