package guard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponsorship-studio/engine/internal/models"
)

func user(role models.Role) *models.User {
	return &models.User{ID: "u", Role: role}
}

func TestDefaultTableCompiles(t *testing.T) {
	_, err := Compile(DefaultTable())
	require.NoError(t, err)
}

func TestDecide(t *testing.T) {
	g := MustCompile(DefaultTable())

	d := g.Decide("/admin/dashboard", user(models.RoleStartup))
	assert.False(t, d.Allowed)
	assert.True(t, d.Protected)
	assert.Equal(t, LoginRoute, d.Redirect)

	d = g.Decide("/admin/dashboard", user(models.RoleAdmin))
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Redirect)

	d = g.Decide("/about", nil)
	assert.True(t, d.Allowed)
	assert.False(t, d.Protected)

	d = g.Decide("/profile", nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, LoginRoute, d.Redirect)
}

func TestDynamicSegments(t *testing.T) {
	g := MustCompile(DefaultTable())

	d := g.Decide("/admin/projects/12", user(models.RoleAdmin))
	assert.True(t, d.Allowed)
	assert.Equal(t, "/admin/projects/{id}", d.Pattern)

	assert.False(t, g.Decide("/admin/projects/12", user(models.RoleSponsor)).Allowed)
	assert.True(t, g.Decide("/projects/7/pledge", user(models.RoleSponsor)).Allowed)
	assert.True(t, g.Decide("/messages/3", user(models.RoleStartup)).Allowed)
	assert.False(t, g.Decide("/messages/3", user(models.RoleAdmin)).Allowed)
}

func TestNoPrefixCollisions(t *testing.T) {
	g := MustCompile(Table{
		{Pattern: "/projects/:id", Roles: []models.Role{models.RoleAdmin}},
	})
	assert.False(t, g.Decide("/projects-archive/1", nil).Protected)
	assert.False(t, g.Decide("/projects", nil).Protected)
	assert.False(t, g.Decide("/projects/1/edit", nil).Protected)
	assert.True(t, g.Decide("/projects/1", nil).Protected)
}

func TestWildcardSuffix(t *testing.T) {
	g := MustCompile(Table{
		{Pattern: "/admin/*", Roles: []models.Role{models.RoleAdmin}},
	})
	assert.True(t, g.Decide("/admin/reports/2024", nil).Protected)
	assert.True(t, g.Decide("/admin/reports/2024", user(models.RoleAdmin)).Allowed)
}

func TestDisjointDynamicEntriesCompile(t *testing.T) {
	_, err := Compile(Table{
		{Pattern: "/projects/:id/pledge", Roles: []models.Role{models.RoleSponsor}},
		{Pattern: "/projects/:id/edit", Roles: []models.Role{models.RoleAdmin}},
		{Pattern: "/admin/*", Roles: []models.Role{models.RoleAdmin}},
	})
	require.NoError(t, err)
}

func TestTrailingSlashFallsUnderDynamicParent(t *testing.T) {
	g := MustCompile(DefaultTable())

	d := g.Decide("/startup/projects/", nil)
	assert.True(t, d.Protected)
	assert.False(t, d.Allowed)
	assert.Equal(t, "/startup/projects/{id}", d.Pattern)

	assert.True(t, g.Decide("/startup/projects/", user(models.RoleStartup)).Allowed)
	assert.False(t, g.Decide("/", nil).Protected)
	assert.False(t, g.Decide("/startup/", nil).Protected)
}

func TestExactMatchTakesPrecedence(t *testing.T) {
	g := MustCompile(DefaultTable())
	pattern, _, ok := g.Lookup("/startup/projects/new")
	require.True(t, ok)
	assert.Equal(t, "/startup/projects/new", pattern)
}

func TestCompileRejectsBadTables(t *testing.T) {
	admin := []models.Role{models.RoleAdmin}
	tests := []struct {
		name  string
		table Table
	}{
		{"duplicate", Table{{Pattern: "/a", Roles: admin}, {Pattern: "/a", Roles: admin}}},
		{"renamed param", Table{{Pattern: "/a/:x", Roles: admin}, {Pattern: "/a/{y}", Roles: admin}}},
		{"static shadowed with other roles", Table{
			{Pattern: "/a/new", Roles: []models.Role{models.RoleStartup}},
			{Pattern: "/a/:id", Roles: admin},
		}},
		{"dynamic inside wildcard", Table{
			{Pattern: "/projects/:id/pledge", Roles: []models.Role{models.RoleSponsor}},
			{Pattern: "/projects/*", Roles: admin},
		}},
		{"wildcard declared first", Table{
			{Pattern: "/projects/*", Roles: admin},
			{Pattern: "/projects/:id/pledge", Roles: []models.Role{models.RoleSponsor}},
		}},
		{"crossed literals", Table{
			{Pattern: "/a/:x/b", Roles: []models.Role{models.RoleSponsor}},
			{Pattern: "/a/c/:y", Roles: admin},
		}},
		{"no roles", Table{{Pattern: "/a"}}},
		{"unknown role", Table{{Pattern: "/a", Roles: []models.Role{"guest"}}}},
		{"relative", Table{{Pattern: "a", Roles: admin}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.table)
			require.Error(t, err)
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
routes:
  - pattern: /admin/dashboard
    roles: [admin]
  - pattern: /projects/:id/pledge
    roles: [sponsor, admin]
`), 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, []models.Role{models.RoleSponsor, models.RoleAdmin}, table[1].Roles)

	g := MustCompile(table)
	assert.True(t, g.Decide("/projects/1/pledge", user(models.RoleAdmin)).Allowed)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("routes: []\n"), 0o600))
	_, err = LoadTable(empty)
	require.Error(t, err)
}
