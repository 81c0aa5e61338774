package main

import (
	"log"
	"os"

	"worktrack-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	var users, records int
	if err := db.Get(&users, "SELECT COUNT(*) FROM users"); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}
	if err := db.Get(&records, "SELECT COUNT(*) FROM worker_records"); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}
	log.Printf("Registered users: %d, worker records: %d", users, records)
}
