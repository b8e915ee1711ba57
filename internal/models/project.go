package models

import "time"

// Project lifecycle status tags.
const (
	ProjectStatusPending   = "pending"
	ProjectStatusAvailable = "available"
	ProjectStatusFunded    = "funded"
	ProjectStatusClosed    = "closed"
)

// ResourceCommitment is a typed quantity of in-kind material, pledged toward
// or raised for a project.
type ResourceCommitment struct {
	ResourceType string  `json:"resourceType" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	Condition    string  `json:"condition"`
}

// Project is a startup's request for material sponsorship. It is persisted as
// part of the projects collection in a durable slot.
type Project struct {
	ID          int                 `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Wilaya      string              `json:"wilaya"`
	Status      string              `json:"status"`
	Verified    bool                `json:"verified"`
	OwnerID     string              `json:"ownerId,omitempty"`
	Goal        *ResourceCommitment `json:"goal"`
	Raised      *ResourceCommitment `json:"raised"`
	Documents   []Document          `json:"documents"`
	Updates     []Update            `json:"updates"`
	Messages    []Message           `json:"messages"`
	Images      []string            `json:"images"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// Document is a supporting file attached to a project.
type Document struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Update is a progress note posted by the project owner.
type Update struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// Message is an entry in a project's conversation thread.
type Message struct {
	ID        int       `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
