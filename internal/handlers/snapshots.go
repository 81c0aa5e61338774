package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"worktrack-backend/internal/models"
	"worktrack-backend/pkg/utils"
)

// SnapshotSubmitter is the merge-persist-broadcast path behind the
// saveWorkingTime endpoint.
type SnapshotSubmitter interface {
	Submit(ctx context.Context, username string, update models.WorkerRecord) error
}

// RecordLister provides the current full worker record mapping.
type RecordLister interface {
	AllRecords(ctx context.Context) (models.RecordMap, error)
}

type SaveWorkingTimeRequest struct {
	Username    string           `json:"username"`
	WorkingTime *int64           `json:"workingTime"`
	Location    *models.Location `json:"location"`
}

// SaveWorkingTime accepts a partial snapshot from a worker's device. The
// acknowledgement confirms the record was persisted, not that observers have
// been notified yet.
func SaveWorkingTime(svc SnapshotSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveWorkingTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Username = strings.ToLower(strings.TrimSpace(req.Username))
		if req.Username == "" {
			utils.RespondMessage(w, http.StatusBadRequest, "Username is required")
			return
		}

		update := models.WorkerRecord{
			WorkingTime: req.WorkingTime,
			Location:    req.Location,
		}

		if err := svc.Submit(r.Context(), req.Username, update); err != nil {
			log.Printf("❌ Error saving working time and location for %s: %v", req.Username, err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		log.Printf("✅ Updated working time and location for user: %s", req.Username)
		utils.RespondMessage(w, http.StatusOK, "Working time and location saved successfully")
	}
}

// GetWorkers returns the current full mapping. Dashboards use this to
// re-sync after a push-channel reconnect; requires a Manager token.
func GetWorkers(store RecordLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := store.AllRecords(r.Context())
		if err != nil {
			log.Printf("❌ Failed to load worker records: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch workers")
			return
		}

		utils.RespondJSON(w, http.StatusOK, records)
	}
}
