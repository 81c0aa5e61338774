package services

import (
	"context"
	"fmt"
	"log"

	"worktrack-backend/internal/models"
)

// RecordStore is the durable side of the snapshot path.
type RecordStore interface {
	MergeRecord(ctx context.Context, username string, update models.WorkerRecord) error
	AllRecords(ctx context.Context) (models.RecordMap, error)
	ManagerTokens(ctx context.Context) ([]string, error)
}

// Publisher fans a payload out to all connected observers.
type Publisher interface {
	Publish(data interface{})
}

// SnapshotService turns a submitted partial snapshot into a durable record
// update and an observer broadcast. The broadcast only follows a confirmed
// successful persist; a storage failure aborts the whole submission.
type SnapshotService struct {
	store RecordStore
	hub   Publisher
	fcm   *FCMService // nil when push notifications are not configured
}

func NewSnapshotService(store RecordStore, hub Publisher, fcm *FCMService) *SnapshotService {
	return &SnapshotService{store: store, hub: hub, fcm: fcm}
}

// Submit merges the partial update into the worker's record and, on success,
// pushes the full updated mapping to every observer. The returned error only
// reflects the persist step: once the record is durable the submission has
// succeeded, and broadcast problems are logged rather than surfaced.
func (s *SnapshotService) Submit(ctx context.Context, username string, update models.WorkerRecord) error {
	if err := s.store.MergeRecord(ctx, username, update); err != nil {
		return fmt.Errorf("submit snapshot for %q: %w", username, err)
	}

	records, err := s.store.AllRecords(ctx)
	if err != nil {
		log.Printf("❌ Snapshot persisted but reload for broadcast failed: %v", err)
		return nil
	}
	s.hub.Publish(records)

	// A snapshot carrying a working time is a completed session; let the
	// managers' devices know.
	if update.WorkingTime != nil {
		s.notifyClockOut(ctx, username, *update.WorkingTime)
	}

	return nil
}

func (s *SnapshotService) notifyClockOut(ctx context.Context, username string, seconds int64) {
	if s.fcm == nil {
		return
	}

	tokens, err := s.store.ManagerTokens(ctx)
	if err != nil {
		log.Printf("❌ Failed to load manager tokens: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if err := s.fcm.SendClockOutNotification(tokens, username, seconds); err != nil {
		log.Printf("❌ Clock-out notification failed: %v", err)
	}
}
