package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/middleware"
	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/services/token"
	"github.com/haneulpark/habit-diary/internal/validation"
)

// AuthHandler handles registration and credentials login
type AuthHandler struct {
	userRepo database.UserRepositoryInterface
	tokens   *token.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo database.UserRepositoryInterface, tokens *token.Service) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, tokens: tokens}
}

// RegisterRoutes registers the public auth routes on the given router
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterProtectedRoutes registers auth routes that require a session
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.Me).Methods("GET")
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse carries a signed session token and its user
type SessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	hash, err := token.HashPassword(req.Password)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	ctx := r.Context()
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			respondJSONError(w, http.StatusConflict, "Conflict", "Email is already registered")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	signed, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusCreated, SessionResponse{Token: signed, User: user})
}

// Login authenticates credentials and issues a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	ctx := r.Context()
	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Same response as a wrong password, no account probing
			respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to log in")
		return
	}

	if !token.CheckPassword(req.Password, user.PasswordHash) {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}

	signed, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, SessionResponse{Token: signed, User: user})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
