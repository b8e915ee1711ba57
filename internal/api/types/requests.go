package types

import "github.com/sponsorship-studio/engine/internal/models"

type RegisterRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     models.Role    `json:"role"`
	Avatar   string         `json:"avatar"`
	Profile  map[string]any `json:"profile"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProjectCreateRequest struct {
	Title       string                     `json:"title" validate:"required,max=200"`
	Description string                     `json:"description" validate:"max=5000"`
	Category    string                     `json:"category" validate:"required"`
	Wilaya      string                     `json:"wilaya" validate:"required"`
	Goal        *models.ResourceCommitment `json:"goal" validate:"omitempty"`
	Documents   []models.Document          `json:"documents" validate:"dive"`
	Images      []string                   `json:"images" validate:"dive,required"`
}

type PledgeCreateRequest struct {
	Sponsor  string                     `json:"sponsor" validate:"max=200"`
	Resource *models.ResourceCommitment `json:"resource" validate:"required"`
}

type MessageCreateRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type UpdateCreateRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}
