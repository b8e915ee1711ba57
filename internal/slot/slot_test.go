package slot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "ns", KeyProjects)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "ns", KeyProjects, []byte(`[{"id":1}]`)))
	v, err := s.Get(ctx, "ns", KeyProjects)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(v))

	_, err = s.Get(ctx, "other", KeyProjects)
	require.ErrorIs(t, err, ErrNotFound, "namespaces are isolated")

	require.NoError(t, s.Put(ctx, "ns", KeyProjects, []byte(`[]`)))
	v, err = s.Get(ctx, "ns", KeyProjects)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v))

	require.NoError(t, s.Delete(ctx, "ns", KeyProjects))
	_, err = s.Get(ctx, "ns", KeyProjects)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "ns", "never-written"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	in := []byte(`{"a":1}`)
	require.NoError(t, m.Put(ctx, "ns", "k", in))
	in[2] = 'b'

	out, err := m.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out))
	out[2] = 'c'

	again, err := m.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestSlotBinding(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	assert.Nil(t, New(nil, "ns"))

	s := ForSession(m, "abc")
	require.NotNil(t, s)
	assert.Equal(t, "session:abc", s.Namespace())
	assert.True(t, IsSessionNamespace(s.Namespace()))
	assert.False(t, IsSessionNamespace("default"))

	require.NoError(t, s.Put(ctx, KeyCurrentUser, []byte(`{"id":"1"}`)))
	raw, err := m.Get(ctx, "session:abc", KeyCurrentUser)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(raw))

	require.NoError(t, s.Delete(ctx, KeyCurrentUser))
	_, err = s.Get(ctx, KeyCurrentUser)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKeyAndTTL(t *testing.T) {
	s := NewRedisStore(nil, 0)
	assert.Equal(t, "slot:default:projects", redisKey("default", KeyProjects))
	assert.Zero(t, s.ttlFor("session:x"))

	s = NewRedisStore(nil, time.Hour)
	assert.Equal(t, time.Hour, s.ttlFor("session:x"))
	assert.Zero(t, s.ttlFor("default"))
}
