package tasks

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sponsorship-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type mockPurger struct {
	mock.Mock
}

func (m *mockPurger) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

func newHandler(p SessionPurger, ttl time.Duration) *PurgeTaskHandler {
	h := NewPurgeTaskHandler(p, ttl)
	h.now = func() time.Time { return fixedNow }
	return h
}

func TestHandlePurgeUsesConfiguredTTL(t *testing.T) {
	p := &mockPurger{}
	p.On("PurgeSessions", mock.Anything, fixedNow.Add(-24*time.Hour)).Return(int64(3), nil)

	task, err := NewPurgeTask(0)
	require.NoError(t, err)
	require.Equal(t, TypePurgeSessions, task.Type())

	require.NoError(t, newHandler(p, 24*time.Hour).HandlePurge(context.Background(), task))
	p.AssertExpectations(t)
}

func TestHandlePurgePayloadOverridesTTL(t *testing.T) {
	p := &mockPurger{}
	p.On("PurgeSessions", mock.Anything, fixedNow.Add(-time.Hour)).Return(int64(0), nil)

	task, err := NewPurgeTask(time.Hour)
	require.NoError(t, err)

	require.NoError(t, newHandler(p, 24*time.Hour).HandlePurge(context.Background(), task))
	p.AssertExpectations(t)
}

func TestHandlePurgeDisabledTTL(t *testing.T) {
	p := &mockPurger{}
	task := asynq.NewTask(TypePurgeSessions, nil)

	require.NoError(t, newHandler(p, 0).HandlePurge(context.Background(), task))
	p.AssertNotCalled(t, "PurgeSessions", mock.Anything, mock.Anything)
}

func TestHandlePurgeErrors(t *testing.T) {
	p := &mockPurger{}
	p.On("PurgeSessions", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	task, err := NewPurgeTask(0)
	require.NoError(t, err)
	require.Error(t, newHandler(p, time.Hour).HandlePurge(context.Background(), task))

	bad := asynq.NewTask(TypePurgeSessions, []byte("{"))
	err = newHandler(p, time.Hour).HandlePurge(context.Background(), bad)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
