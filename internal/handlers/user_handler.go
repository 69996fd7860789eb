package handlers

import (
	"net/http"

	"bnbBack/internal/models"
	"bnbBack/internal/services"
)

type UserHandler struct {
	Service *services.UserService
}

type userResponse struct {
	User models.User `json:"user"`
}

// GetUsers lists every user in the default view.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	user, err := h.Service.GetUserByID(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	user, err := h.Service.CreateUser(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	tokens, err := h.Service.SignIn(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

type assignRoleRequest struct {
	Title string `json:"title"`
}

func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req assignRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	user, err := h.Service.AssignRole(r.Context(), id, req.Title)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User  models.User `json:"user"`
		Roles []string    `json:"roles"`
	}{user, user.RoleTitles()})
}
