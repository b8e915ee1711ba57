package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sponsorship-studio/engine/internal/identity"
	"github.com/sponsorship-studio/engine/pkg/logger"
)

type sessionKeyType string

const sessionKey sessionKeyType = "session"

// SessionTokenHeader carries a freshly issued session token back to the client.
const SessionTokenHeader = "X-Session-Token"

// IssueToken signs a session handle for sid.
func IssueToken(secret []byte, sid string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  sid,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates a session token and returns its session id.
func ParseToken(secret []byte, tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}

// Session resolves the caller's session from a Bearer token. Requests without
// a valid token get a new session whose token is returned in
// X-Session-Token.
func Session(provider *identity.Provider, secret []byte, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			ah := r.Header.Get("Authorization")
			if strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				tokenStr := strings.TrimSpace(ah[len("Bearer "):])
				if id, err := ParseToken(secret, tokenStr); err == nil {
					sid = id
				} else {
					logger.L().Debug("session token rejected", zap.String("id", GetRequestID(r.Context())), zap.Error(err))
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				tok, err := IssueToken(secret, sid, ttl)
				if err != nil {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				w.Header().Set(SessionTokenHeader, tok)
			}
			ctx := context.WithValue(r.Context(), sessionKey, provider.Session(sid))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the session attached by Session, or nil.
func GetSession(ctx context.Context) *identity.Session {
	if v, ok := ctx.Value(sessionKey).(*identity.Session); ok {
		return v
	}
	return nil
}
