package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/user-directory/internal/api/httpx"
	"github.com/baharkarakas/user-directory/internal/middleware"
	"github.com/baharkarakas/user-directory/internal/services"
)

type UsersHandler struct {
	dir Directory
}

func NewUsersHandler(dir Directory) *UsersHandler {
	return &UsersHandler{dir: dir}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.dir.List(r.Context())
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.dir.GetByID(r.Context(), id)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req services.UpdateInput
	if !decode(w, r, &req) {
		return
	}
	u, err := h.dir.UpdateProfile(r.Context(), id, req)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	caller, ok := middleware.FromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "missing bearer token", nil)
		return
	}
	u, err := h.dir.DeleteUser(r.Context(), caller.UserID, id)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.dir.Stats(r.Context()))
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid user id", nil)
		return 0, false
	}
	return id, true
}
