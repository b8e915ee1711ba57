package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// PagesHandler serves client navigations that passed the route guard. With a
// static directory it behaves like a single-page-app host: existing files are
// served as-is and everything else falls back to index.html.
type PagesHandler struct {
	dir string
}

func NewPagesHandler(dir string) *PagesHandler {
	return &PagesHandler{dir: dir}
}

type pageResponse struct {
	Path string `json:"path"`
}

func (h *PagesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h.dir == "" {
		writeData(w, r, http.StatusOK, pageResponse{Path: r.URL.Path})
		return
	}
	clean := path.Clean("/" + r.URL.Path)
	name := filepath.Join(h.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		http.ServeFile(w, r, name)
		return
	}
	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		writeErrorStr(w, r, appErr.CodeNotFound, "page not found")
		return
	}
	http.ServeFile(w, r, index)
}
