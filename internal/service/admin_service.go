package service

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/auth"
	"github.com/mmynk/studytracker/internal/middleware"
	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

const msgUserNotFound = "User not found."

// AdminService serves user management for administrators.
type AdminService struct {
	store         storage.UserStore
	authenticator auth.Authenticator
}

// NewAdminService creates a new AdminService.
func NewAdminService(store storage.UserStore, authenticator auth.Authenticator) *AdminService {
	return &AdminService{store: store, authenticator: authenticator}
}

// ListUsers returns every account without password hashes.
func (s *AdminService) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching users."))
		return
	}
	api.WriteJSON(w, http.StatusOK, users)
}

type userIDResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// Approve marks a pending account approved.
func (s *AdminService) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = s.store.ApproveUser(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, notFound(msgUserNotFound))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("User approved", "user_id", id, "by", callerID(r))
	api.WriteJSON(w, http.StatusOK, userIDResponse{Message: "User approved successfully.", UserID: id})
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

type createUserResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// CreateUser creates an approved account. Unknown roles fall back to "user".
func (s *AdminService) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, r, badRequest("Username and password are required."))
		return
	}
	if err := validateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !models.ValidRole(role) {
		role = models.RoleUser
	}

	user, err := s.authenticator.Provision(r.Context(), req.Username, req.Password, role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("User created by admin", "user_id", user.ID, "role", user.Role, "by", callerID(r))
	api.WriteJSON(w, http.StatusCreated, createUserResponse{Message: "User created successfully by admin.", User: user})
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
}

// UpdateUser changes a username and/or role. The only admin cannot be demoted.
func (s *AdminService) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var update models.UserUpdate
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			writeError(w, r, badRequest("Username cannot be empty."))
			return
		}
		update.Username = &name
	}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if !models.ValidRole(role) {
			writeError(w, r, auth.ErrInvalidRole)
			return
		}
		update.Role = &role
	}
	if update.Username == nil && update.Role == nil {
		writeError(w, r, badRequest("Nothing to update. Provide username or role."))
		return
	}

	err = s.store.UpdateUser(r.Context(), id, update)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, notFound(msgUserNotFound))
		return
	case errors.Is(err, storage.ErrConflict):
		writeError(w, r, withMessage(err, "Username already exists."))
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	slog.Info("User updated by admin", "user_id", id, "by", callerID(r))
	api.WriteMessage(w, http.StatusOK, "User updated successfully.")
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *AdminService) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if id == callerID(r) {
		writeError(w, r, forbidden("Admins cannot delete their own account."))
		return
	}

	err = s.store.DeleteUser(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, notFound(msgUserNotFound))
		return
	}
	if err != nil {
		writeError(w, r, withMessage(err, "Error deleting user."))
		return
	}

	slog.Info("User deleted by admin", "user_id", id, "by", callerID(r))
	api.WriteJSON(w, http.StatusOK, userIDResponse{Message: "User deleted successfully.", UserID: id})
}

// callerID returns the authenticated user's id, or 0.
func callerID(r *http.Request) int64 {
	id, _ := middleware.IdentityFromContext(r.Context())
	return id.ID
}
