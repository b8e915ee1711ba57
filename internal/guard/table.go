package guard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sponsorship-studio/engine/internal/models"
)

// Rule grants the listed roles access to every path matching Pattern.
type Rule struct {
	Pattern string        `yaml:"pattern"`
	Roles   []models.Role `yaml:"roles"`
}

// Table is the route authorization table in declaration order.
type Table []Rule

var everyone = []models.Role{models.RoleStartup, models.RoleSponsor, models.RoleAdmin}

// DefaultTable is the application's route table.
func DefaultTable() Table {
	return Table{
		{Pattern: "/startup/dashboard", Roles: []models.Role{models.RoleStartup}},
		{Pattern: "/startup/projects/new", Roles: []models.Role{models.RoleStartup}},
		{Pattern: "/startup/projects/:id", Roles: []models.Role{models.RoleStartup}},
		{Pattern: "/sponsor/dashboard", Roles: []models.Role{models.RoleSponsor}},
		{Pattern: "/sponsor/pledges", Roles: []models.Role{models.RoleSponsor}},
		{Pattern: "/projects/:id/pledge", Roles: []models.Role{models.RoleSponsor}},
		{Pattern: "/messages/:projectId", Roles: []models.Role{models.RoleStartup, models.RoleSponsor}},
		{Pattern: "/admin/dashboard", Roles: []models.Role{models.RoleAdmin}},
		{Pattern: "/admin/users", Roles: []models.Role{models.RoleAdmin}},
		{Pattern: "/admin/projects/:id", Roles: []models.Role{models.RoleAdmin}},
		{Pattern: "/profile", Roles: everyone},
	}
}

type tableFile struct {
	Routes Table `yaml:"routes"`
}

// LoadTable reads a YAML route table of the form
//
//	routes:
//	  - pattern: /admin/dashboard
//	    roles: [admin]
func LoadTable(path string) (Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse route table %s: %w", path, err)
	}
	if len(f.Routes) == 0 {
		return nil, fmt.Errorf("route table %s has no routes", path)
	}
	return f.Routes, nil
}
