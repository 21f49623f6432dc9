// internal/api/handlers/auth.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/baharkarakas/user-directory/internal/api/httpx"
	"github.com/baharkarakas/user-directory/internal/middleware"
	"github.com/baharkarakas/user-directory/internal/models"
	"github.com/baharkarakas/user-directory/internal/services"
)

// Directory is what the REST layer needs from the user directory.
type Directory interface {
	Register(ctx context.Context, in services.RegisterInput) (models.AuthResult, error)
	Login(ctx context.Context, c services.Credentials) (models.AuthResult, error)
	GetByID(ctx context.Context, id int64) (models.PublicUser, error)
	List(ctx context.Context) ([]models.PublicUser, error)
	UpdateProfile(ctx context.Context, id int64, in services.UpdateInput) (models.PublicUser, error)
	DeleteUser(ctx context.Context, requesterID, targetID int64) (models.PublicUser, error)
	Stats(ctx context.Context) models.Stats
}

const maxBodyBytes = 1 << 20

type AuthHandler struct {
	dir Directory
}

func NewAuthHandler(dir Directory) *AuthHandler {
	return &AuthHandler{dir: dir}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if !decode(w, r, &req) {
		return
	}
	res, err := h.dir.Register(r.Context(), req)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.Credentials
	if !decode(w, r, &req) {
		return
	}
	res, err := h.dir.Login(r.Context(), req)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// Me returns the profile of the bearer.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.FromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "missing bearer token", nil)
		return
	}
	u, err := h.dir.GetByID(r.Context(), caller.UserID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return false
	}
	return true
}
