// Package store is the entity store: the single source of truth for projects
// and pledges. Every mutation is a full read-modify-write of the affected
// collection in the durable slot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/internal/slot"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
	"github.com/sponsorship-studio/engine/pkg/logger"
)

// ErrDetached is returned by writes on a store that has no durable slot.
var ErrDetached = appErr.New(appErr.CodeUnavailable, "store has no durable slot")

// EntityStore is the data-access surface consumed by the API.
// Absence is reported through the boolean result; errors are reserved for
// backend failures and invalid input.
type EntityStore interface {
	Initialize(ctx context.Context) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int) (*models.Project, bool, error)
	CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id int, patch ProjectPatch) (*models.Project, bool, error)
	CreatePledge(ctx context.Context, in PledgeInput) (*models.Pledge, error)
	ListPledges(ctx context.Context) ([]models.Pledge, error)
	ListPledgesForProject(ctx context.Context, projectID int) ([]models.Pledge, error)
	AddMessage(ctx context.Context, projectID int, in MessageInput) (*models.Message, bool, error)
	AddUpdate(ctx context.Context, projectID int, content string) (*models.Update, bool, error)
}

// ProjectInput is a project without its store-assigned fields.
type ProjectInput struct {
	Title       string
	Description string
	Category    string
	Wilaya      string
	Status      string
	Verified    bool
	OwnerID     string
	Goal        *models.ResourceCommitment
	Raised      *models.ResourceCommitment
	Documents   []models.Document
	Images      []string
}

// PledgeInput is a pledge without its store-assigned fields.
type PledgeInput struct {
	ProjectID int
	Sponsor   string
	Resource  *models.ResourceCommitment
}

type MessageInput struct {
	Sender  string
	Content string
}

// ProjectPatch holds top-level project fields keyed by their JSON name.
// A field present with a null value clears it.
type ProjectPatch map[string]json.RawMessage

// Store implements EntityStore over a slot.
type Store struct {
	slot *slot.Slot
	seed func() []models.Project
	now  func() time.Time

	// mu serializes read-modify-write cycles issued through this Store.
	// Writers in other processes sharing the slot still race; last write wins.
	mu sync.Mutex
}

var _ EntityStore = (*Store)(nil)

type Option func(*Store)

// WithSeed replaces the built-in dataset used when the projects collection
// is initialized.
func WithSeed(seed func() []models.Project) Option {
	return func(s *Store) { s.seed = seed }
}

// WithClock overrides the time source used to stamp messages, updates and pledges.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a store persisting into sl. A nil slot produces a detached store
// whose reads are empty and whose Initialize is a no-op.
func New(sl *slot.Slot, opts ...Option) *Store {
	s := &Store{slot: sl, seed: SeedProjects, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == nil {
		s.seed = func() []models.Project { return nil }
	}
	return s
}

func (s *Store) detached() bool { return s.slot == nil }

// Initialize seeds missing collections. Existing data is never reset.
func (s *Store) Initialize(ctx context.Context) error {
	if s.detached() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{slot.KeyProjects, slot.KeyPledges} {
		_, err := s.slot.Get(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, slot.ErrNotFound) {
			return err
		}
		if err := s.reset(ctx, key); err != nil {
			return err
		}
		logger.L().Info("collection initialized", zap.String("namespace", s.slot.Namespace()), zap.String("key", key))
	}
	return nil
}

func (s *Store) reset(ctx context.Context, key string) error {
	switch key {
	case slot.KeyProjects:
		return s.saveProjects(ctx, normalizeProjects(s.seed()))
	default:
		return s.savePledges(ctx, []models.Pledge{})
	}
}

// load decodes the collection under key. Absent or undecodable content is
// replaced by the initial collection, which is then returned instead.
func load[T any](ctx context.Context, s *Store, key string) (T, error) {
	var out T
	raw, err := s.slot.Get(ctx, key)
	switch {
	case err == nil:
		jerr := json.Unmarshal(raw, &out)
		if jerr == nil {
			return out, nil
		}
		logger.L().Warn("slot content corrupt, reinitializing",
			zap.String("namespace", s.slot.Namespace()), zap.String("key", key), zap.Error(jerr))
	case errors.Is(err, slot.ErrNotFound):
	default:
		return out, err
	}

	if err := s.reset(ctx, key); err != nil {
		return out, err
	}
	raw, err = s.slot.Get(ctx, key)
	if err != nil {
		return out, err
	}
	var fresh T
	if err := json.Unmarshal(raw, &fresh); err != nil {
		return fresh, appErr.Wrap(err, appErr.CodeCorrupt, "reinitialized collection unreadable")
	}
	return fresh, nil
}

func (s *Store) loadProjects(ctx context.Context) ([]models.Project, error) {
	out, err := load[[]models.Project](ctx, s, slot.KeyProjects)
	if err != nil {
		return nil, err
	}
	return normalizeProjects(out), nil
}

func (s *Store) loadPledges(ctx context.Context) ([]models.Pledge, error) {
	out, err := load[[]models.Pledge](ctx, s, slot.KeyPledges)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Pledge{}
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "encode collection failed")
	}
	return s.slot.Put(ctx, key, b)
}

func (s *Store) saveProjects(ctx context.Context, projects []models.Project) error {
	return s.save(ctx, slot.KeyProjects, projects)
}

func (s *Store) savePledges(ctx context.Context, pledges []models.Pledge) error {
	return s.save(ctx, slot.KeyPledges, pledges)
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	if s.detached() {
		return []models.Project{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProjects(ctx)
}

func (s *Store) GetProject(ctx context.Context, id int) (*models.Project, bool, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, false, err
	}
	if i := indexOfProject(projects, id); i >= 0 {
		return &projects[i], true, nil
	}
	return nil, false, nil
}

func (s *Store) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	if s.detached() {
		return nil, ErrDetached
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.ProjectStatusPending
	}
	p := models.Project{
		ID:          nextProjectID(projects),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Wilaya:      in.Wilaya,
		Status:      status,
		Verified:    in.Verified,
		OwnerID:     in.OwnerID,
		Goal:        in.Goal,
		Raised:      in.Raised,
		Documents:   in.Documents,
		Images:      in.Images,
		CreatedAt:   s.now().UTC(),
	}
	normalizeProject(&p)

	projects = append(projects, p)
	if err := s.saveProjects(ctx, projects); err != nil {
		return nil, err
	}
	logger.L().Info("project created", zap.Int("project_id", p.ID), zap.String("owner_id", p.OwnerID))
	return &p, nil
}

// UpdateProject shallow-merges patch into the project. The id is not patchable.
func (s *Store) UpdateProject(ctx context.Context, id int, patch ProjectPatch) (*models.Project, bool, error) {
	if s.detached() {
		return nil, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadProjects(ctx)
	if err != nil {
		return nil, false, err
	}
	i := indexOfProject(projects, id)
	if i < 0 {
		return nil, false, nil
	}

	merged, err := mergeProject(projects[i], patch)
	if err != nil {
		return nil, true, err
	}
	projects[i] = merged
	if err := s.saveProjects(ctx, projects); err != nil {
		return nil, true, err
	}
	logger.L().Info("project updated", zap.Int("project_id", id), zap.Int("fields", len(patch)))
	return &merged, true, nil
}

func mergeProject(p models.Project, patch ProjectPatch) (models.Project, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return p, appErr.Wrap(err, appErr.CodeInternal, "encode project failed")
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return p, appErr.Wrap(err, appErr.CodeInternal, "decode project failed")
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		fields[k] = v
	}
	b, err = json.Marshal(fields)
	if err != nil {
		return p, appErr.Wrap(err, appErr.CodeInvalid, "invalid project patch")
	}
	var out models.Project
	if err := json.Unmarshal(b, &out); err != nil {
		return p, appErr.Wrap(err, appErr.CodeInvalid, "invalid project patch")
	}
	out.ID = p.ID
	normalizeProject(&out)
	return out, nil
}

// CreatePledge records the pledge and folds its quantity into the project's
// raised commitment. A pledge whose resource type differs from an already
// raised type is kept in the ledger without touching the aggregate.
func (s *Store) CreatePledge(ctx context.Context, in PledgeInput) (*models.Pledge, error) {
	if s.detached() {
		return nil, ErrDetached
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	pledges, err := s.loadPledges(ctx)
	if err != nil {
		return nil, err
	}

	pl := models.Pledge{
		ID:        nextPledgeID(pledges),
		ProjectID: in.ProjectID,
		Sponsor:   in.Sponsor,
		Resource:  copyCommitment(in.Resource),
		Timestamp: s.now().UTC(),
	}

	// Ledger before aggregate: raised never exceeds what recorded pledges
	// account for.
	pledges = append(pledges, pl)
	if err := s.savePledges(ctx, pledges); err != nil {
		return nil, err
	}

	if i := indexOfProject(projects, in.ProjectID); i >= 0 {
		if aggregate(&projects[i], pl.Resource) {
			if err := s.saveProjects(ctx, projects); err != nil {
				return nil, err
			}
		} else if pl.Resource != nil {
			logger.L().Info("pledge resource type differs from raised, aggregate unchanged",
				zap.Int("project_id", in.ProjectID),
				zap.String("pledge_type", pl.Resource.ResourceType),
				zap.String("raised_type", projects[i].Raised.ResourceType))
		}
	} else {
		logger.L().Warn("pledge recorded for unknown project", zap.Int("project_id", in.ProjectID))
	}
	logger.L().Info("pledge created", zap.Int("pledge_id", pl.ID), zap.Int("project_id", pl.ProjectID))
	return &pl, nil
}

// aggregate applies r to p.Raised and reports whether p changed.
func aggregate(p *models.Project, r *models.ResourceCommitment) bool {
	if r == nil {
		return false
	}
	if p.Raised == nil {
		p.Raised = copyCommitment(r)
		return true
	}
	if p.Raised.ResourceType != r.ResourceType {
		return false
	}
	p.Raised.Quantity += r.Quantity
	return true
}

func (s *Store) ListPledges(ctx context.Context) ([]models.Pledge, error) {
	if s.detached() {
		return []models.Pledge{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPledges(ctx)
}

func (s *Store) ListPledgesForProject(ctx context.Context, projectID int) ([]models.Pledge, error) {
	all, err := s.ListPledges(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Pledge{}
	for _, pl := range all {
		if pl.ProjectID == projectID {
			out = append(out, pl)
		}
	}
	return out, nil
}

// AddMessage appends a message to the project's thread.
func (s *Store) AddMessage(ctx context.Context, projectID int, in MessageInput) (*models.Message, bool, error) {
	var msg models.Message
	found, err := s.mutateProject(ctx, projectID, func(p *models.Project) {
		msg = models.Message{
			ID:        nextMessageID(p.Messages),
			Sender:    in.Sender,
			Content:   in.Content,
			Timestamp: s.now().UTC(),
		}
		p.Messages = append(p.Messages, msg)
	})
	if err != nil || !found {
		return nil, found, err
	}
	logger.L().Info("message added", zap.Int("project_id", projectID), zap.Int("message_id", msg.ID))
	return &msg, true, nil
}

// AddUpdate appends a progress note. Ids follow the same max+1 rule as messages.
func (s *Store) AddUpdate(ctx context.Context, projectID int, content string) (*models.Update, bool, error) {
	var up models.Update
	found, err := s.mutateProject(ctx, projectID, func(p *models.Project) {
		up = models.Update{
			ID:        nextUpdateID(p.Updates),
			Timestamp: s.now().UTC(),
			Content:   content,
		}
		p.Updates = append(p.Updates, up)
	})
	if err != nil || !found {
		return nil, found, err
	}
	logger.L().Info("update added", zap.Int("project_id", projectID), zap.Int("update_id", up.ID))
	return &up, true, nil
}

// mutateProject applies fn to the project with id and persists the collection.
// Nothing is written when the project does not exist.
func (s *Store) mutateProject(ctx context.Context, id int, fn func(*models.Project)) (bool, error) {
	if s.detached() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadProjects(ctx)
	if err != nil {
		return false, err
	}
	i := indexOfProject(projects, id)
	if i < 0 {
		return false, nil
	}
	fn(&projects[i])
	if err := s.saveProjects(ctx, projects); err != nil {
		return true, err
	}
	return true, nil
}
