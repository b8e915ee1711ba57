package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sponsorship-studio/engine/pkg/logger"
)

// TypePurgeSessions removes session slots that outlived the session TTL.
const TypePurgeSessions = "slots:purge"

// PurgePayload is the task payload. A zero MaxAge falls back to the handler's
// configured TTL.
type PurgePayload struct {
	MaxAge time.Duration `json:"max_age,omitempty"`
}

// SessionPurger deletes session slot entries last written before cutoff.
type SessionPurger interface {
	PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewPurgeTask builds a purge task. Only one may be queued at a time.
func NewPurgeTask(maxAge time.Duration) (*asynq.Task, error) {
	b, err := json.Marshal(PurgePayload{MaxAge: maxAge})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePurgeSessions, b, asynq.MaxRetry(3), asynq.Unique(time.Minute)), nil
}

type PurgeTaskHandler struct {
	purger SessionPurger
	ttl    time.Duration
	now    func() time.Time
}

func NewPurgeTaskHandler(purger SessionPurger, ttl time.Duration) *PurgeTaskHandler {
	return &PurgeTaskHandler{purger: purger, ttl: ttl, now: time.Now}
}

func (h *PurgeTaskHandler) HandlePurge(ctx context.Context, t *asynq.Task) error {
	var p PurgePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			logger.L().Error("invalid purge task payload", zap.Error(err))
			return fmt.Errorf("decode purge payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	maxAge := p.MaxAge
	if maxAge <= 0 {
		maxAge = h.ttl
	}
	if maxAge <= 0 {
		logger.L().Info("session ttl disabled, skipping purge")
		return nil
	}

	cutoff := h.now().Add(-maxAge)
	n, err := h.purger.PurgeSessions(ctx, cutoff)
	if err != nil {
		logger.L().Error("purge session slots failed", zap.Error(err))
		return err
	}
	logger.L().Info("purged session slots", zap.Int64("removed", n), zap.Time("cutoff", cutoff))
	return nil
}
