package database

import (
	"log"
	"time"

	"worktrack-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// SeedUsers creates a default manager and worker account when the users
// table is empty. Intended for local development; real deployments register
// accounts through POST /api/register.
func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding default accounts...")

	seeds := []struct {
		username string
		password string
		userType string
	}{
		{"manager", "manager123", models.UserTypeManager},
		{"worker", "worker123", models.UserTypeWorker},
	}

	now := time.Now().Unix()
	for _, seed := range seeds {
		hashed, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		_, err = db.Exec(`
			INSERT INTO users (id, username, password, user_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), seed.username, string(hashed), seed.userType, now, now,
		)
		if err != nil {
			return err
		}

		log.Printf("   ✓ Created %s account: %s", seed.userType, seed.username)
	}

	return nil
}
