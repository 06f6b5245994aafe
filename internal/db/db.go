package db

import (
	"errors"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // Also registers the database driver
)

// DB is the global database connection.
var DB *sqlx.DB

// Sentinel errors surfaced by the registry and episode store. Handlers map
// these onto HTTP statuses.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInvalidAuthConfig = errors.New("invalid auth configuration")
)

// InitDB initializes the database connection and applies the schema.
func InitDB() {
	var err error
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	DB, err = sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if _, err = DB.Exec(Schema); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	log.Println("Database connection established")
}

// isUniqueViolation reports whether err is a Postgres duplicate-key error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
