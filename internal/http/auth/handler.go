package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ebill/internal/auth"
	"github.com/MrJamesThe3rd/ebill/internal/http/httpx"
	"github.com/MrJamesThe3rd/ebill/internal/metrics"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

type Handler struct {
	users  *user.Service
	tokens *auth.Tokens
}

func NewHandler(users *user.Service, tokens *auth.Tokens) *Handler {
	return &Handler{users: users, tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/register", h.register)
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      user.Role `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.IncLogin(metrics.ResultError)
		httpx.WriteError(w, err)

		return
	}

	token, expires, err := h.tokens.Issue(u)
	if err != nil {
		metrics.IncLogin(metrics.ResultError)
		httpx.WriteError(w, err)

		return
	}

	metrics.IncLogin(metrics.ResultSuccess)

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expires,
		Username:  u.Username,
		Role:      u.Role,
	})
}

type UserResponse struct {
	Username  string    `json:"username"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserResponse hides the password hash of u.
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}

// register creates a regular user. Admins are created through the admin routes.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	u, err := h.users.Register(r.Context(), user.RegisterParams{
		Username: req.Username,
		Password: req.Password,
		Role:     user.RoleUser,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ToUserResponse(u))
}
