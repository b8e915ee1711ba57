package handlers

import (
	"net/http"

	"github.com/sponsorship-studio/engine/internal/api/types"
	"github.com/sponsorship-studio/engine/internal/api/validators"
	"github.com/sponsorship-studio/engine/internal/store"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

type PledgesHandler struct {
	store store.EntityStore
}

func NewPledgesHandler(s store.EntityStore) *PledgesHandler {
	return &PledgesHandler{store: s}
}

func (h *PledgesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPledges(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, items)
}

func (h *PledgesHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	items, err := h.store.ListPledgesForProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, items)
}

// Create records a pledge against an existing project. The sponsor defaults to
// the current user's name.
func (h *PledgesHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req types.PledgeCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, err.Error()))
		return
	}
	if _, found, err := h.store.GetProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	} else if !found {
		notFound(w, r)
		return
	}
	sponsor := req.Sponsor
	if sponsor == "" {
		sponsor = u.Name
	}
	pl, err := h.store.CreatePledge(r.Context(), store.PledgeInput{ProjectID: id, Sponsor: sponsor, Resource: req.Resource})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, pl)
}
