// Package guard decides, for a requested path and the current actor, whether
// navigation is allowed.
package guard

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sponsorship-studio/engine/internal/models"
)

// LoginRoute is where denied navigations are redirected.
const LoginRoute = "/login"

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Protected bool   `json:"protected"`
	Pattern   string `json:"pattern,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
}

type matcher struct {
	pattern string
	dynamic bool
	roles   []models.Role
	mux     *chi.Mux
}

func (m *matcher) match(path string) bool {
	if !m.dynamic {
		return m.pattern == path
	}
	return m.mux.Match(chi.NewRouteContext(), http.MethodGet, path)
}

// Guard is a compiled route table.
type Guard struct {
	static  map[string]*matcher
	dynamic []*matcher
}

var colonParam = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// normalize rewrites ":name" markers into chi's "{name}" form.
func normalize(pattern string) string {
	return colonParam.ReplaceAllString(pattern, "{$1}")
}

func isDynamic(pattern string) bool {
	return strings.ContainsAny(pattern, "{*")
}

var paramName = regexp.MustCompile(`\{[^}]*\}`)

// shape erases parameter names so that "/a/{x}" and "/a/{y}" compare equal.
func shape(pattern string) string {
	return paramName.ReplaceAllString(pattern, "{}")
}

// Compile validates t and builds its matchers. Entries that could both match
// one path are rejected: identical templates, and any static or dynamic pair
// with different role sets that share a matching path.
func Compile(t Table) (*Guard, error) {
	g := &Guard{static: map[string]*matcher{}}
	shapes := map[string]string{}

	for _, r := range t {
		pattern := normalize(strings.TrimSpace(r.Pattern))
		if !strings.HasPrefix(pattern, "/") {
			return nil, fmt.Errorf("route %q: pattern must start with /", r.Pattern)
		}
		if len(r.Roles) == 0 {
			return nil, fmt.Errorf("route %q: no roles", r.Pattern)
		}
		for _, role := range r.Roles {
			if !role.Valid() {
				return nil, fmt.Errorf("route %q: unknown role %q", r.Pattern, role)
			}
		}
		if prev, ok := shapes[shape(pattern)]; ok {
			return nil, fmt.Errorf("route %q overlaps %q", r.Pattern, prev)
		}
		shapes[shape(pattern)] = r.Pattern

		m := &matcher{pattern: pattern, roles: slices.Clone(r.Roles), dynamic: isDynamic(pattern)}
		if !m.dynamic {
			g.static[pattern] = m
			continue
		}
		if err := m.compile(); err != nil {
			return nil, fmt.Errorf("route %q: %w", r.Pattern, err)
		}
		g.dynamic = append(g.dynamic, m)
	}

	for path := range g.static {
		for _, d := range g.dynamic {
			if d.match(path) && !sameRoles(g.static[path].roles, d.roles) {
				return nil, fmt.Errorf("route %q overlaps %q", path, d.pattern)
			}
		}
	}
	for i, a := range g.dynamic {
		for _, b := range g.dynamic[i+1:] {
			if sameRoles(a.roles, b.roles) {
				continue
			}
			if b.match(sample(a.pattern, b.pattern)) || a.match(sample(b.pattern, a.pattern)) {
				return nil, fmt.Errorf("route %q overlaps %q", a.pattern, b.pattern)
			}
		}
	}
	return g, nil
}

func isParam(seg string) bool {
	return seg == "*" || strings.HasPrefix(seg, "{")
}

// sample builds a concrete path matched by pattern, borrowing literal
// segments from other wherever pattern has a parameter, so that two
// templates that can match one path produce a witness.
func sample(pattern, other string) string {
	segs := strings.Split(pattern, "/")
	otherSegs := strings.Split(other, "/")
	out := make([]string, 0, len(segs))
	for i, seg := range segs {
		switch {
		case seg == "*":
			if i < len(otherSegs) {
				for _, o := range otherSegs[i:] {
					if isParam(o) {
						o = "x"
					}
					out = append(out, o)
				}
			} else {
				out = append(out, "x")
			}
			return strings.Join(out, "/")
		case isParam(seg):
			if i < len(otherSegs) && !isParam(otherSegs[i]) && otherSegs[i] != "" {
				seg = otherSegs[i]
			} else {
				seg = "x"
			}
		}
		out = append(out, seg)
	}
	return strings.Join(out, "/")
}

// compile registers the template on a private chi router. chi panics on
// malformed templates, which is reported as an error.
func (m *matcher) compile() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("invalid pattern: %v", rec)
		}
	}()
	m.mux = chi.NewRouter()
	m.mux.Get(m.pattern, func(http.ResponseWriter, *http.Request) {})
	return nil
}

func sameRoles(a, b []models.Role) bool {
	if len(a) != len(b) {
		return false
	}
	for _, r := range a {
		if !slices.Contains(b, r) {
			return false
		}
	}
	return true
}

// MustCompile is Compile for tables known to be valid.
func MustCompile(t Table) *Guard {
	g, err := Compile(t)
	if err != nil {
		panic(err)
	}
	return g
}

// Lookup returns the entry protecting path. Static entries take precedence
// over dynamic ones.
func (g *Guard) Lookup(path string) (pattern string, roles []models.Role, ok bool) {
	if m, found := g.static[path]; found {
		return m.pattern, m.roles, true
	}
	for _, m := range g.dynamic {
		if m.match(path) {
			return m.pattern, m.roles, true
		}
	}
	// "/a/" falls under a "/a/{x}" entry even though the segment is empty.
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		for _, m := range g.dynamic {
			if m.match(path + "x") {
				return m.pattern, m.roles, true
			}
		}
	}
	return "", nil, false
}

// Decide checks path for user; a nil user is unauthenticated. Unprotected
// paths are open to everyone.
func (g *Guard) Decide(path string, user *models.User) Decision {
	pattern, roles, ok := g.Lookup(path)
	if !ok {
		return Decision{Allowed: true}
	}
	d := Decision{Protected: true, Pattern: pattern}
	if user != nil && slices.Contains(roles, user.Role) {
		d.Allowed = true
		return d
	}
	d.Redirect = LoginRoute
	return d
}
