package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"github.com/insightpilot/insightpilot-api/internal/models"
	"github.com/insightpilot/insightpilot-api/internal/services"
)

type AuthHandler struct {
	users  *services.UserService
	tokens *services.TokenService
}

func NewAuthHandler(users *services.UserService, tokens *services.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user,omitempty"`
}

func (h *AuthHandler) issuePair(userID string) (*tokenPair, error) {
	access, err := h.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := h.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "email and a password of at least 8 characters are required", 400)
		return
	}

	existing, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		http.Error(w, "internal error", 500)
		return
	}
	if existing != nil {
		http.Error(w, "user already exists", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "internal error", 500)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		http.Error(w, "user exists", http.StatusConflict)
		return
	}

	pair, err := h.issuePair(user.ID)
	if err != nil {
		http.Error(w, "internal error", 500)
		return
	}
	pair.User = user

	writeJSON(w, http.StatusCreated, pair)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}

	user, err := h.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || user == nil ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	pair, err := h.issuePair(user.ID)
	if err != nil {
		http.Error(w, "internal error", 500)
		return
	}
	pair.User = user

	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken rotates the pair: the presented refresh token is revoked and a
// fresh access/refresh pair is issued.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "invalid body", 400)
		return
	}

	userID, _, err := h.tokens.Verify(ctx, req.RefreshToken, services.TokenTypeRefresh)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	if err := h.tokens.Revoke(ctx, req.RefreshToken); err != nil {
		http.Error(w, "internal error", 500)
		return
	}

	pair, err := h.issuePair(userID)
	if err != nil {
		http.Error(w, "internal error", 500)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Logout revokes the access token from the Authorization header and, when
// supplied, the refresh token from the body.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if err := h.tokens.Revoke(ctx, strings.TrimPrefix(auth, "Bearer ")); err != nil {
			http.Error(w, "internal error", 500)
			return
		}
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		if err := h.tokens.Revoke(ctx, req.RefreshToken); err != nil {
			http.Error(w, "internal error", 500)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
