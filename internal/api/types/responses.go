package types

import (
	"github.com/sponsorship-studio/engine/internal/guard"
	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/internal/progress"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Page      int    `json:"page,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	Total     int64  `json:"total,omitempty"`
}

// ProjectView is a project with its derived completion percentage.
type ProjectView struct {
	models.Project
	Progress int `json:"progress"`
}

func NewProjectView(p models.Project) ProjectView {
	return ProjectView{Project: p, Progress: progress.Of(&p)}
}

func NewProjectViews(ps []models.Project) []ProjectView {
	out := make([]ProjectView, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProjectView(p))
	}
	return out
}

type SessionResponse struct {
	State        string       `json:"state"`
	User         *models.User `json:"user,omitempty"`
	LandingRoute string       `json:"landing_route,omitempty"`
	Token        string       `json:"token,omitempty"`
}

type AuthorizeResponse struct {
	Path string `json:"path"`
	guard.Decision
}
