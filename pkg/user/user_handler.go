package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cantine/cantine/internal/rest"
	"github.com/gorilla/mux"
)

type UserDTO struct {
	Id     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{userService: userService}
}

// Signup godoc
// @Summary Register a new account
// @Description Register a pending account; an admin has to approve it before first use.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body object{name=string,email=string} true "Account details"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid payload"
// @Failure 409 {object} rest.ErrorResponse "Email already registered"
// @Router /api/users/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	if body.Name == "" || body.Email == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Name and email are required"})
		return
	}

	created, err := h.userService.Signup(r.Context(), body.Name, body.Email)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(userToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CurrentUser godoc
// @Summary Get the authenticated account
// @Tags Users
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "No authenticated user"
// @Router /api/users/current [get]
// @Security XUserId
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	current, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) || errors.Is(err, ErrUserNotFound) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Authentication required"})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(userToDTO(current)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ListUsers godoc
// @Summary List all accounts
// @Tags Users
// @Produce json
// @Success 200 {array} UserDTO
// @Router /api/users [get]
// @Security XUserId
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userToDTO(u))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ListPendingUsers godoc
// @Summary List accounts awaiting approval
// @Tags Users
// @Produce json
// @Success 200 {array} UserDTO
// @Router /api/users/pending [get]
// @Security XUserId
func (h *Handler) ListPendingUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	users, err := h.userService.ListPending(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userToDTO(u))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ApproveUser godoc
// @Summary Approve a pending account
// @Tags Users
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} UserDTO
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Failure 409 {object} rest.ErrorResponse "User is not awaiting approval"
// @Router /api/users/{userId}/approve [post]
// @Security XUserId
func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	h.resolvePending(w, r, h.userService.Approve)
}

// RejectUser godoc
// @Summary Reject a pending account
// @Tags Users
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} UserDTO
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Failure 409 {object} rest.ErrorResponse "User is not awaiting approval"
// @Router /api/users/{userId}/reject [post]
// @Security XUserId
func (h *Handler) RejectUser(w http.ResponseWriter, r *http.Request) {
	h.resolvePending(w, r, h.userService.Reject)
}

// UpdateUser godoc
// @Summary Update an account
// @Tags Users
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param user body UserDTO true "New account details"
// @Success 200 {object} UserDTO
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Failure 409 {object} rest.ErrorResponse "Email already registered or last admin"
// @Router /api/users/{userId} [put]
// @Security XUserId
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, ok := pathUserId(w, r)
	if !ok {
		return
	}
	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	updated, err := h.userService.UpdateUser(r.Context(), User{
		Id:     userId,
		Name:   dto.Name,
		Email:  dto.Email,
		Role:   Role(dto.Role),
		Status: Status(dto.Status),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(userToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteUser godoc
// @Summary Delete an account
// @Description Delete an account along with its stored selections.
// @Tags Users
// @Produce json
// @Param userId path int true "User ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Failure 409 {object} rest.ErrorResponse "Last admin"
// @Router /api/users/{userId} [delete]
// @Security XUserId
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, ok := pathUserId(w, r)
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(r.Context(), userId); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resolvePending(w http.ResponseWriter, r *http.Request, resolve func(ctx context.Context, id int) (User, error)) {
	w.Header().Set("Content-Type", "application/json")

	userId, ok := pathUserId(w, r)
	if !ok {
		return
	}
	resolved, err := resolve(r.Context(), userId)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(userToDTO(resolved)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrUserNotPending), errors.Is(err, ErrEmailTaken), errors.Is(err, ErrLastAdmin):
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathUserId(w http.ResponseWriter, r *http.Request) (int, bool) {
	userId, err := strconv.Atoi(mux.Vars(r)["userId"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid user ID"})
		return 0, false
	}
	return userId, true
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Id:     u.Id,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Status: string(u.Status),
	}
}
