package handlers

import (
	"context"
	"net/http"

	"github.com/sponsorship-studio/engine/internal/api/types"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// HealthHandler serves liveness and readiness probes. Readiness runs check,
// which typically reads the store.
type HealthHandler struct {
	check func(ctx context.Context) error
}

func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{check: check}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]string{"status": "ok"}})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			writeError(w, r, appErr.Wrap(err, appErr.CodeUnavailable, "not ready"))
			return
		}
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]string{"status": "ready"}})
}
