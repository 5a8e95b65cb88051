package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"omezka-shop-api/internal/middleware"
	"omezka-shop-api/internal/repository"
	"omezka-shop-api/internal/service"
	"omezka-shop-api/pkg/apierror"
	"omezka-shop-api/pkg/response"

	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	sessions *service.SessionService
	store    repository.Store
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions *service.SessionService, store repository.Store) *AuthHandler {
	return &AuthHandler{sessions: sessions, store: store}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.Username == "" || req.Password == "" {
		response.Error(w, apierror.BadRequest("username and password are required"))
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err == repository.ErrUserNotFound {
		response.Error(w, apierror.Unauthorized("invalid credentials"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError("login failed"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		response.Error(w, apierror.Unauthorized("invalid credentials"))
		return
	}

	token, err := h.sessions.Create(r.Context(), user)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to create session"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(service.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.OK(w, map[string]interface{}{
		"token":    token,
		"user_id":  user.ID,
		"username": user.Username,
		"coins":    user.Coins,
		"level":    user.Level,
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		if c, err := r.Cookie(middleware.SessionCookie); err == nil {
			token = c.Value
		}
	}
	if token != "" {
		_ = h.sessions.Revoke(r.Context(), token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	response.OK(w, map[string]interface{}{"status": "logged out"})
}
