// File: internal/handlers/auth_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/auth"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/user_services"
)

type AuthHandler struct {
	authService *user_services.AuthService
}

func NewAuthHandler(authService *user_services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestOTP emails a one-time login code. The response does not reveal
// whether the address belongs to an account.
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := domain.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, "A valid email address is required", http.StatusBadRequest)
		return
	}

	if err := h.authService.RequestOTP(r.Context(), email); err != nil {
		log.Printf("[AuthHandler] OTP request failed: %v", err)
		writeError(w, "Could not send verification code", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code sent"})
}

// VerifyOTP exchanges a valid code for a token pair, creating the account on
// first login.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.authService.VerifyOTP(r.Context(), domain.NormalizeEmail(req.Email), req.Code)
	if err != nil {
		if errors.Is(err, user_services.ErrInvalidCode) {
			writeError(w, "Invalid or expired code", http.StatusUnauthorized)
			return
		}
		log.Printf("[AuthHandler] OTP verification failed: %v", err)
		writeError(w, "Could not verify code", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken":       result.Tokens.AccessToken,
		"refreshToken":      result.Tokens.RefreshToken,
		"user":              result.User,
		"isProfileComplete": result.IsProfileComplete,
	})
}

// Refresh issues a new token pair against a valid refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		writeError(w, "Could not refresh session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}
