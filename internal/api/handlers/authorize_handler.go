package handlers

import (
	"net/http"

	"github.com/sponsorship-studio/engine/internal/api/types"
	"github.com/sponsorship-studio/engine/internal/guard"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// AuthorizeHandler lets clients ask whether the current actor may view a path
// before navigating to it.
type AuthorizeHandler struct {
	guard *guard.Guard
}

func NewAuthorizeHandler(g *guard.Guard) *AuthorizeHandler {
	return &AuthorizeHandler{guard: g}
}

func (h *AuthorizeHandler) Check(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" || path[0] != '/' {
		writeErrorStr(w, r, appErr.CodeInvalid, "path query parameter must be an absolute path")
		return
	}
	s := session(w, r)
	if s == nil {
		return
	}
	u, err := s.CurrentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, types.AuthorizeResponse{Path: path, Decision: h.guard.Decide(path, u)})
}
