package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/internal/slot"
)

var fixedNow = time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*Store, *slot.MemoryStore) {
	t.Helper()
	mem := slot.NewMemoryStore()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s := New(slot.New(mem, "test"), opts...)
	require.NoError(t, s.Initialize(context.Background()))
	return s, mem
}

func emptySeed() []models.Project { return nil }

func servers(qty float64) *models.ResourceCommitment {
	return &models.ResourceCommitment{ResourceType: "servers", Quantity: qty, Condition: "new"}
}

func TestInitializeSeedsOnce(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, len(SeedProjects()))

	_, err = s.CreateProject(ctx, ProjectInput{Title: "extra"})
	require.NoError(t, err)

	require.NoError(t, s.Initialize(ctx))
	projects, err = s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, len(SeedProjects())+1)
	assert.Equal(t, "extra", projects[len(projects)-1].Title)

	pledges, err := s.ListPledges(ctx)
	require.NoError(t, err)
	assert.Empty(t, pledges)
}

func TestCreateProjectAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithSeed(emptySeed))

	for want := 1; want <= 5; want++ {
		p, err := s.CreateProject(ctx, ProjectInput{Title: "p", Goal: servers(10)})
		require.NoError(t, err)
		require.Equal(t, want, p.ID)
		assert.Equal(t, models.ProjectStatusPending, p.Status)
		assert.Empty(t, p.Updates)
		assert.Empty(t, p.Messages)
		assert.NotNil(t, p.Images)
	}

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 5)
	for i, p := range projects {
		assert.Equal(t, i+1, p.ID)
	}
}

func TestCreateProjectAfterSeedUsesMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithSeed(func() []models.Project {
		return []models.Project{{ID: 7}, {ID: 3}}
	}))
	p, err := s.CreateProject(ctx, ProjectInput{Title: "next"})
	require.NoError(t, err)
	require.Equal(t, 8, p.ID)
}

func TestGetProject(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, found, err := s.GetProject(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, p.ID)

	p, found, err = s.GetProject(ctx, 999)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, p)
}

func TestCreatePledgeAggregation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithSeed(emptySeed))
	p, err := s.CreateProject(ctx, ProjectInput{Title: "datacenter", Goal: servers(20)})
	require.NoError(t, err)

	pl, err := s.CreatePledge(ctx, PledgeInput{ProjectID: p.ID, Sponsor: "acme", Resource: servers(5)})
	require.NoError(t, err)
	assert.Equal(t, 1, pl.ID)
	assert.Equal(t, fixedNow, pl.Timestamp)

	got, _, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Raised)
	assert.Equal(t, "servers", got.Raised.ResourceType)
	assert.Equal(t, 5.0, got.Raised.Quantity)

	_, err = s.CreatePledge(ctx, PledgeInput{ProjectID: p.ID, Sponsor: "acme", Resource: servers(3)})
	require.NoError(t, err)
	got, _, _ = s.GetProject(ctx, p.ID)
	assert.Equal(t, 8.0, got.Raised.Quantity)

	laptops := &models.ResourceCommitment{ResourceType: "laptops", Quantity: 4}
	pl, err = s.CreatePledge(ctx, PledgeInput{ProjectID: p.ID, Sponsor: "globex", Resource: laptops})
	require.NoError(t, err)
	assert.Equal(t, 3, pl.ID)
	got, _, _ = s.GetProject(ctx, p.ID)
	assert.Equal(t, "servers", got.Raised.ResourceType)
	assert.Equal(t, 8.0, got.Raised.Quantity)

	forProject, err := s.ListPledgesForProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, forProject, 3)
}

func TestCreatePledgeForUnknownProjectIsRecorded(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	before, err := s.ListProjects(ctx)
	require.NoError(t, err)

	pl, err := s.CreatePledge(ctx, PledgeInput{ProjectID: 404, Sponsor: "ghost", Resource: servers(1)})
	require.NoError(t, err)
	assert.Equal(t, 404, pl.ProjectID)

	after, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	all, err := s.ListPledges(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	other, err := s.ListPledgesForProject(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPledgeDoesNotAliasInput(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithSeed(emptySeed))
	p, err := s.CreateProject(ctx, ProjectInput{Title: "x"})
	require.NoError(t, err)

	r := servers(2)
	_, err = s.CreatePledge(ctx, PledgeInput{ProjectID: p.ID, Resource: r})
	require.NoError(t, err)
	r.Quantity = 100

	got, _, _ := s.GetProject(ctx, p.ID)
	assert.Equal(t, 2.0, got.Raised.Quantity)
}

func TestAddMessageAndUpdate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithSeed(emptySeed))
	p, err := s.CreateProject(ctx, ProjectInput{Title: "x"})
	require.NoError(t, err)

	m1, found, err := s.AddMessage(ctx, p.ID, MessageInput{Sender: "a", Content: "hello"})
	require.NoError(t, err)
	require.True(t, found)
	m2, _, err := s.AddMessage(ctx, p.ID, MessageInput{Sender: "b", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, m1.ID)
	assert.Equal(t, 2, m2.ID)
	assert.Equal(t, fixedNow, m2.Timestamp)

	u1, found, err := s.AddUpdate(ctx, p.ID, "first")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, u1.ID)
	u2, _, _ := s.AddUpdate(ctx, p.ID, "second")
	assert.Equal(t, 2, u2.ID)

	got, _, _ := s.GetProject(ctx, p.ID)
	assert.Len(t, got.Messages, 2)
	assert.Len(t, got.Updates, 2)
}

func TestAddToSeededThreadContinuesIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	m, found, err := s.AddMessage(ctx, 3, MessageInput{Sender: "x", Content: "y"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, m.ID)
}

func TestAddToMissingProjectChangesNothing(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	before, err := mem.Get(ctx, "test", slot.KeyProjects)
	require.NoError(t, err)

	m, found, err := s.AddMessage(ctx, 999, MessageInput{Sender: "x", Content: "y"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, m)

	u, found, err := s.AddUpdate(ctx, 999, "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, u)

	after, err := mem.Get(ctx, "test", slot.KeyProjects)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateProjectShallowMerge(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	patch := ProjectPatch{
		"status": json.RawMessage(`"funded"`),
		"raised": json.RawMessage(`null`),
		"id":     json.RawMessage(`42`),
	}
	p, found, err := s.UpdateProject(ctx, 1, patch)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, models.ProjectStatusFunded, p.Status)
	assert.Nil(t, p.Raised)
	assert.NotNil(t, p.Goal)

	stored, _, _ := s.GetProject(ctx, 1)
	assert.Equal(t, p, stored)

	_, found, err = s.UpdateProject(ctx, 999, patch)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateProjectRejectsBadField(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, found, err := s.UpdateProject(ctx, 1, ProjectPatch{"verified": json.RawMessage(`"yes"`)})
	require.Error(t, err)
	assert.True(t, found)
}

func TestCorruptSlotIsReinitialized(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.Put(ctx, "test", slot.KeyProjects, []byte("{not json")))
	require.NoError(t, mem.Put(ctx, "test", slot.KeyPledges, []byte("[{")))

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, len(SeedProjects()))

	pledges, err := s.ListPledges(ctx)
	require.NoError(t, err)
	assert.Empty(t, pledges)
}

func TestMissingCollectionIsInitializedOnRead(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemoryStore()
	s := New(slot.New(mem, "lazy"))

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, len(SeedProjects()))
	_, err = mem.Get(ctx, "lazy", slot.KeyProjects)
	require.NoError(t, err)
}

func TestDetachedStore(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	require.NoError(t, s.Initialize(ctx))
	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	_, found, err := s.GetProject(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.CreateProject(ctx, ProjectInput{Title: "x"})
	require.ErrorIs(t, err, ErrDetached)
}

func TestFilter(t *testing.T) {
	projects := SeedProjects()
	got := ProjectFilter{Status: models.ProjectStatusAvailable}.Filter(projects)
	require.Len(t, got, 2)
	got = ProjectFilter{Wilaya: "سطيف"}.Filter(projects)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)
	assert.Len(t, ProjectFilter{}.Filter(projects), len(projects))
}

// failingStore rejects writes to the listed keys once armed.
type failingStore struct {
	*slot.MemoryStore
	armed bool
	keys  map[string]bool
}

func (f *failingStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	if f.armed && f.keys[key] {
		return errors.New("disk full")
	}
	return f.MemoryStore.Put(ctx, namespace, key, value)
}

func TestFailedLedgerWriteLeavesRaisedUntouched(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{MemoryStore: slot.NewMemoryStore(), keys: map[string]bool{slot.KeyPledges: true}}
	s := New(slot.New(fs, "test"), WithSeed(emptySeed), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, s.Initialize(ctx))
	p, err := s.CreateProject(ctx, ProjectInput{Title: "lab", Goal: servers(10)})
	require.NoError(t, err)

	fs.armed = true
	_, err = s.CreatePledge(ctx, PledgeInput{ProjectID: p.ID, Sponsor: "acme", Resource: servers(4)})
	require.Error(t, err)

	got, _, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Raised)
	pledges, err := s.ListPledges(ctx)
	require.NoError(t, err)
	assert.Empty(t, pledges)
}
