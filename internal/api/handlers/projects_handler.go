package handlers

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sponsorship-studio/engine/internal/api/middleware"
	"github.com/sponsorship-studio/engine/internal/api/types"
	"github.com/sponsorship-studio/engine/internal/api/validators"
	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/internal/store"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
	"github.com/sponsorship-studio/engine/pkg/utils"
)

type ProjectsHandler struct {
	store store.EntityStore
}

func NewProjectsHandler(s store.EntityStore) *ProjectsHandler {
	return &ProjectsHandler{store: s}
}

func projectID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeErrorStr(w, r, appErr.CodeInvalid, "invalid project id")
		return 0, false
	}
	return id, true
}

func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	s := middleware.GetSession(r.Context())
	if s == nil {
		writeErrorStr(w, r, appErr.CodeUnauthorized, "no session")
		return nil, false
	}
	u, err := s.CurrentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if u == nil {
		writeErrorStr(w, r, appErr.CodeUnauthorized, "login required")
		return nil, false
	}
	return u, true
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeErrorStr(w, r, appErr.CodeNotFound, "project not found")
}

// List returns the filtered, paginated projects with derived progress.
// The ETag covers the filtered collection before pagination.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	items = store.ProjectFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Wilaya:   q.Get("wilaya"),
		OwnerID:  q.Get("owner_id"),
	}.Filter(items)

	if b, err := json.Marshal(items); err == nil {
		etag := utils.ETag(b)
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    types.NewProjectViews(items[start:end]),
		Meta: &types.Meta{
			RequestID: middleware.GetRequestID(r.Context()),
			Page:      page,
			PageSize:  size,
			Total:     int64(len(items)),
		},
	})
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, found, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		notFound(w, r)
		return
	}
	w.Header().Set("ETag", projectETag(p))
	writeData(w, r, http.StatusOK, types.NewProjectView(*p))
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req types.ProjectCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, err.Error()))
		return
	}
	p, err := h.store.CreateProject(r.Context(), store.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Wilaya:      req.Wilaya,
		OwnerID:     u.ID,
		Goal:        req.Goal,
		Documents:   req.Documents,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, types.NewProjectView(*p))
}

// Fields a project owner may patch. Raised totals, threads and timestamps
// change only through pledges, messages and updates.
var ownerPatchable = map[string]bool{
	"title":       true,
	"description": true,
	"category":    true,
	"wilaya":      true,
	"status":      true,
	"goal":        true,
	"documents":   true,
	"images":      true,
}

// Admins may additionally verify, reassign and correct the raised total.
var adminPatchable = map[string]bool{
	"verified": true,
	"ownerId":  true,
	"raised":   true,
}

// disallowedFields returns the sorted patch keys role may not set. "id" is
// ignored by the store and always tolerated.
func disallowedFields(patch store.ProjectPatch, role models.Role) []string {
	var bad []string
	for k := range patch {
		if k == "id" || ownerPatchable[k] || (role == models.RoleAdmin && adminPatchable[k]) {
			continue
		}
		bad = append(bad, k)
	}
	slices.Sort(bad)
	return bad
}

// requireOwner loads the project and answers 404 or 403 unless u is an admin
// or owns it.
func (h *ProjectsHandler) requireOwner(w http.ResponseWriter, r *http.Request, u *models.User, id int) (*models.Project, bool) {
	p, found, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if !found {
		notFound(w, r)
		return nil, false
	}
	if u.Role != models.RoleAdmin && p.OwnerID != u.ID {
		writeErrorStr(w, r, appErr.CodeForbidden, "user does not own project")
		return nil, false
	}
	return p, true
}

// projectETag tags the stored representation of p.
func projectETag(p *models.Project) string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return utils.ETag(b)
}

// Update shallow-merges the JSON object body into the project. Startups may
// only patch the descriptive fields of their own projects. An If-Match header
// makes the write conditional on the caller having seen the current version.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var patch store.ProjectPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	existing, ok := h.requireOwner(w, r, u, id)
	if !ok {
		return
	}
	if bad := disallowedFields(patch, u.Role); len(bad) > 0 {
		writeError(w, r, appErr.New(appErr.CodeInvalid, "fields cannot be patched").WithMeta("fields", bad))
		return
	}
	if im := r.Header.Get("If-Match"); im != "" && im != projectETag(existing) {
		writeError(w, r, appErr.New(appErr.CodeConflict, "project was modified").WithMeta("project_id", id))
		return
	}
	p, found, err := h.store.UpdateProject(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		notFound(w, r)
		return
	}
	w.Header().Set("ETag", projectETag(p))
	writeData(w, r, http.StatusOK, types.NewProjectView(*p))
}

func (h *ProjectsHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req types.MessageCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, err.Error()))
		return
	}
	msg, found, err := h.store.AddMessage(r.Context(), id, store.MessageInput{Sender: u.Name, Content: req.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		notFound(w, r)
		return
	}
	writeData(w, r, http.StatusCreated, msg)
}

// AddUpdate appends a progress note. Only the owner or an admin may post.
func (h *ProjectsHandler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if _, ok := h.requireOwner(w, r, u, id); !ok {
		return
	}
	var req types.UpdateCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, err.Error()))
		return
	}
	up, found, err := h.store.AddUpdate(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		notFound(w, r)
		return
	}
	writeData(w, r, http.StatusCreated, up)
}
