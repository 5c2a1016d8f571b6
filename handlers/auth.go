package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/skhapre/dashboard-app/services"
)

// AuthHandler handles session endpoints.
type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login exchanges the dashboard access key for a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		AccessKey string `json:"accessKey"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request format")
		return
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondErr(w, http.StatusBadRequest, "invalid email address")
		return
	}

	token, err := h.authService.Login(req.Email, req.AccessKey)
	if err != nil {
		respondErr(w, http.StatusUnauthorized, "login failed")
		return
	}

	respondData(w, http.StatusOK, map[string]string{
		"token": token,
		"email": req.Email,
	})
}

// VerifyToken checks if a session token is still valid.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		respondErr(w, http.StatusUnauthorized, "missing authorization header")
		return
	}

	authParts := strings.Split(authHeader, " ")
	if len(authParts) != 2 || authParts[0] != "Bearer" {
		respondErr(w, http.StatusUnauthorized, "invalid authorization format")
		return
	}

	email, err := h.authService.VerifyJWT(authParts[1])
	if err != nil {
		respondErr(w, http.StatusUnauthorized, "invalid token")
		return
	}

	respondData(w, http.StatusOK, map[string]string{
		"email": email,
	})
}
