package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"worktrack-backend/internal/middleware"
	"worktrack-backend/pkg/utils"
)

// TokenStore persists FCM device tokens.
type TokenStore interface {
	SaveFCMToken(ctx context.Context, userID, token, deviceType string) error
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// RegisterFCMToken stores a device token for the authenticated user so
// clock-out notifications can reach it.
func RegisterFCMToken(store TokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req RegisterFCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "Token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, "device_type must be 'ios' or 'android'")
			return
		}

		if err := store.SaveFCMToken(r.Context(), userClaims.UserID, req.Token, req.DeviceType); err != nil {
			log.Printf("❌ Failed to save FCM token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save token")
			return
		}

		log.Printf("✅ FCM token registered for %s (%s)", userClaims.Username, req.DeviceType)
		utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
