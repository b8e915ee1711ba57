package middleware

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/sponsorship-studio/engine/internal/guard"
	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/pkg/logger"
)

// Guard runs the route authorization check on every navigation and redirects
// denied requests to the login route, remembering where they were headed.
func Guard(g *guard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user *models.User
			if s := GetSession(r.Context()); s != nil {
				u, err := s.CurrentUser(r.Context())
				if err != nil {
					logger.L().Error("load session user failed", zap.String("id", GetRequestID(r.Context())), zap.Error(err))
					http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
					return
				}
				user = u
			}
			d := g.Decide(r.URL.Path, user)
			if !d.Allowed {
				logger.L().Info("navigation denied",
					zap.String("id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("pattern", d.Pattern))
				target := d.Redirect + "?next=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
