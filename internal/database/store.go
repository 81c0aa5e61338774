package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worktrack-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// Store wraps the database handle with the queries the handlers and services
// need. All reads and writes of users and worker records go through here.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// GetUserByUsername returns the user with the given username, or (nil, nil)
// if no such user exists.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE username = $1", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password, user_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.Password, user.UserType, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user %q: %w", user.Username, err)
	}
	return nil
}

// MergeRecord merges a partial snapshot into the worker's record. Nil fields
// in the update preserve the stored values (see models.WorkerRecord.Merge).
// The single UPSERT statement makes the read-merge-write atomic per row, so
// concurrent submissions for the same username serialize inside Postgres
// with last-write-wins semantics.
func (s *Store) MergeRecord(ctx context.Context, username string, update models.WorkerRecord) error {
	var lat, lng *float64
	if update.Location != nil {
		lat = &update.Location.Latitude
		lng = &update.Location.Longitude
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO worker_records (username, working_time, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, $4, EXTRACT(EPOCH FROM NOW())::BIGINT)
		ON CONFLICT (username)
		DO UPDATE SET
			working_time = COALESCE(EXCLUDED.working_time, worker_records.working_time),
			latitude = COALESCE(EXCLUDED.latitude, worker_records.latitude),
			longitude = COALESCE(EXCLUDED.longitude, worker_records.longitude),
			updated_at = EXCLUDED.updated_at`,
		username, update.WorkingTime, lat, lng,
	)
	if err != nil {
		return fmt.Errorf("merge record for %q: %w", username, err)
	}
	return nil
}

// AllRecords returns the full username -> record mapping.
func (s *Store) AllRecords(ctx context.Context) (models.RecordMap, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT username, working_time, latitude, longitude FROM worker_records")
	if err != nil {
		return nil, fmt.Errorf("load worker records: %w", err)
	}
	defer rows.Close()

	records := make(models.RecordMap)
	for rows.Next() {
		var (
			username    string
			workingTime sql.NullInt64
			lat, lng    sql.NullFloat64
		)
		if err := rows.Scan(&username, &workingTime, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan worker record: %w", err)
		}

		var record models.WorkerRecord
		if workingTime.Valid {
			record.WorkingTime = &workingTime.Int64
		}
		if lat.Valid && lng.Valid {
			record.Location = &models.Location{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		records[username] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worker records: %w", err)
	}

	return records, nil
}

// SaveFCMToken registers or refreshes a device token for a user.
func (s *Store) SaveFCMToken(ctx context.Context, userID, token, deviceType string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fcm_tokens (user_id, token, device_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (token)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			device_type = EXCLUDED.device_type,
			updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT`,
		userID, token, deviceType,
	)
	if err != nil {
		return fmt.Errorf("save fcm token: %w", err)
	}
	return nil
}

// ManagerTokens returns the device tokens of all manager accounts.
func (s *Store) ManagerTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := s.db.SelectContext(ctx, &tokens, `
		SELECT t.token FROM fcm_tokens t
		INNER JOIN users u ON u.id = t.user_id
		WHERE u.user_type = $1`,
		models.UserTypeManager,
	)
	if err != nil {
		return nil, fmt.Errorf("load manager tokens: %w", err)
	}
	return tokens, nil
}
