package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role is the closed set of actor kinds.
type Role string

const (
	RoleStartup Role = "startup"
	RoleSponsor Role = "sponsor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStartup, RoleSponsor, RoleAdmin:
		return true
	}
	return false
}

// User is a member of the directory. Profile carries role-specific fields
// (company name for startups, organisation for sponsors, ...).
type User struct {
	ID           string            `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name         string            `gorm:"not null" json:"name"`
	Email        string            `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string            `gorm:"not null" json:"-"`
	Role         Role              `gorm:"type:varchar(16);index;not null" json:"role"`
	Avatar       string            `json:"avatar,omitempty"`
	Profile      datatypes.JSONMap `gorm:"type:jsonb" json:"profile,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}
