package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ebill/internal/backup"
	authHandler "github.com/MrJamesThe3rd/ebill/internal/http/auth"
	"github.com/MrJamesThe3rd/ebill/internal/http/httpx"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

// maxSnapshotSize bounds the body of a restore request.
const maxSnapshotSize = 64 << 20

// Handler serves the administrative routes. Callers must mount it behind
// auth.RequireRole(user.RoleAdmin).
type Handler struct {
	users   *user.Service
	backups *backup.Service
}

func NewHandler(users *user.Service, backups *backup.Service) *Handler {
	return &Handler{users: users, backups: backups}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/users", h.createUser)
	r.Get("/backup", h.backup)
	r.Post("/restore", h.restore)
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	u, err := h.users.Register(r.Context(), user.RegisterParams{
		Username: req.Username,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authHandler.ToUserResponse(u))
}

func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("ebill_backup_%s.json", time.Now().UTC().Format("20060102_150405"))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.backups.Backup(r.Context(), w); err != nil {
		httpx.WriteError(w, err)
	}
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxSnapshotSize)

	stats, err := h.backups.Restore(r.Context(), body)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}
