package handlers

import (
	"net/http"

	"github.com/sponsorship-studio/engine/internal/api/middleware"
	"github.com/sponsorship-studio/engine/internal/api/types"
	"github.com/sponsorship-studio/engine/internal/identity"
	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// AuthHandler exposes the session state machine.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler { return &AuthHandler{} }

func session(w http.ResponseWriter, r *http.Request) *identity.Session {
	s := middleware.GetSession(r.Context())
	if s == nil {
		writeErrorStr(w, r, appErr.CodeUnauthorized, "no session")
	}
	return s
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	s := session(w, r)
	if s == nil {
		return
	}
	var req types.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.Register(r.Context(), identity.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Avatar:   req.Avatar,
		Profile:  req.Profile,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, types.SessionResponse{
		State:        identity.StateAuthenticated.String(),
		User:         u,
		LandingRoute: identity.LandingRoute(u.Role),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := session(w, r)
	if s == nil {
		return
	}
	var req types.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, types.SessionResponse{
		State:        identity.StateAuthenticated.String(),
		User:         u,
		LandingRoute: identity.LandingRoute(u.Role),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := session(w, r)
	if s == nil {
		return
	}
	if err := s.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, types.SessionResponse{State: identity.StateUnauthenticated.String()})
}

// Me reports the session state and current user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s := session(w, r)
	if s == nil {
		return
	}
	state, err := s.State(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.CurrentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := types.SessionResponse{State: state.String(), User: u}
	if u != nil {
		resp.LandingRoute = identity.LandingRoute(u.Role)
	}
	writeData(w, r, http.StatusOK, resp)
}
