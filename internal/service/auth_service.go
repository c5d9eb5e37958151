package service

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/auth"
	"github.com/mmynk/studytracker/internal/middleware"
	"github.com/mmynk/studytracker/internal/models"
)

// AuthService handles registration, login and logout.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *credentialsRequest) normalize() {
	c.Username = strings.TrimSpace(c.Username)
}

type userSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Approved *bool  `json:"approved,omitempty"`
}

func summarize(user *models.User, withApproval bool) userSummary {
	s := userSummary{ID: user.ID, Username: user.Username, Role: user.Role}
	if withApproval {
		approved := user.Approved
		s.Approved = &approved
	}
	return s
}

type registerResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token,omitempty"`
	User    userSummary `json:"user"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userSummary `json:"user"`
}

// Register creates a new account. Only the configured default admin username
// is approved and logged in right away.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.normalize()
	if err := validateStruct(&req); err != nil {
		writeError(w, r, badRequest("Username and password are required."))
		return
	}

	s.logger.Info("Register request", "username", req.Username)

	user, err := s.authenticator.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "username", req.Username, "error", err)
		writeError(w, r, err)
		return
	}

	if !user.Approved {
		s.logger.Info("User registered, awaiting approval", "user_id", user.ID, "username", user.Username)
		api.WriteJSON(w, http.StatusCreated, registerResponse{
			Message: "User registered successfully. Awaiting admin approval.",
			User:    summarize(user, true),
		})
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, r, err)
		return
	}

	s.logger.Info("Admin registered and approved", "user_id", user.ID, "username", user.Username)
	api.WriteJSON(w, http.StatusCreated, registerResponse{
		Message: "Admin user registered and approved.",
		Token:   token,
		User:    summarize(user, false),
	})
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.normalize()
	if err := validateStruct(&req); err != nil {
		writeError(w, r, badRequest("Username and password are required."))
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Username, "error", err)
		writeError(w, r, err)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, r, err)
		return
	}

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	api.WriteJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful.",
		Token:   token,
		User:    summarize(user, false),
	})
}

// Logout is stateless; the client discards its token.
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	api.WriteMessage(w, http.StatusOK, "Logout successful. Please clear your token on the client-side.")
}

// Me returns the identity carried by the caller's token.
func (s *AuthService) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		api.WriteUnauthorized(w, "Access denied. No token provided.")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]auth.Identity{"user": id})
}
