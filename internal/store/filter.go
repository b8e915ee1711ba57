package store

import "github.com/sponsorship-studio/engine/internal/models"

// ProjectFilter narrows a project listing. Empty fields match everything.
type ProjectFilter struct {
	Status   string
	Category string
	Wilaya   string
	OwnerID  string
}

// Filter returns the projects matching f, preserving order.
func (f ProjectFilter) Filter(projects []models.Project) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Wilaya != "" && p.Wilaya != f.Wilaya {
			continue
		}
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, p)
	}
	return out
}
