package store

import "github.com/sponsorship-studio/engine/internal/models"

// Every id in the store is max(existing)+1, or 1 for an empty collection.

func nextID[T any](items []T, id func(T) int) int {
	hi := 0
	for _, it := range items {
		if v := id(it); v > hi {
			hi = v
		}
	}
	return hi + 1
}

func nextProjectID(ps []models.Project) int {
	return nextID(ps, func(p models.Project) int { return p.ID })
}

func nextPledgeID(ps []models.Pledge) int {
	return nextID(ps, func(p models.Pledge) int { return p.ID })
}

func nextMessageID(ms []models.Message) int {
	return nextID(ms, func(m models.Message) int { return m.ID })
}

func nextUpdateID(us []models.Update) int {
	return nextID(us, func(u models.Update) int { return u.ID })
}

func indexOfProject(ps []models.Project, id int) int {
	for i := range ps {
		if ps[i].ID == id {
			return i
		}
	}
	return -1
}

func copyCommitment(r *models.ResourceCommitment) *models.ResourceCommitment {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// normalizeProject replaces nil collections with empty ones so that they
// serialize as [] rather than null.
func normalizeProject(p *models.Project) {
	if p.Documents == nil {
		p.Documents = []models.Document{}
	}
	if p.Updates == nil {
		p.Updates = []models.Update{}
	}
	if p.Messages == nil {
		p.Messages = []models.Message{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}

func normalizeProjects(ps []models.Project) []models.Project {
	if ps == nil {
		return []models.Project{}
	}
	for i := range ps {
		normalizeProject(&ps[i])
	}
	return ps
}
