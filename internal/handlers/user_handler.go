// File: internal/handlers/user_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/middleware"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/user_services"
)

type UserHandler struct {
	userService   *user_services.UserService
	deviceService *user_services.DeviceService
}

func NewUserHandler(us *user_services.UserService, ds *user_services.DeviceService) *UserHandler {
	return &UserHandler{userService: us, deviceService: ds}
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeError(w, "User not found", http.StatusNotFound)
			return
		}
		writeError(w, "Could not load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateProfile sets name, phone and avatar. Empty fields are left as-is.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		AvatarURL string `json:"avatarUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	u, err := h.userService.UpdateProfile(r.Context(), userID, req.Name, req.Phone, req.AvatarURL)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// RegisterDevice stores a push token for the caller's device.
func (h *UserHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, "A device token is required", http.StatusBadRequest)
		return
	}

	if err := h.deviceService.RegisterDevice(r.Context(), userID, req.Token, req.Platform); err != nil {
		writeError(w, "Could not register device", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
