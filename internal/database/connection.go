package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. The backend is chosen
// by the DB_TYPE environment variable: "sqlite" (default) keeps the review
// data in a local file under DATA_DIR, "postgres" connects to DATABASE_URL.
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	switch dbType {
	case "sqlite":
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "data"
		}
		return ConnectSQLite(filepath.Join(dataDir, "studybot.db"))
	case "postgres":
		url := os.Getenv("DATABASE_URL")
		if url == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		return ConnectPostgres(url)
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", dbType)
	}
}

// ConnectSQLite opens (and creates if needed) a SQLite database at the given path
func ConnectSQLite(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite doesn't support multiple writers; a single connection also
	// makes every read-modify-write sequence naturally serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	DB = db
	return initializeSchema()
}

// ConnectPostgres connects to a PostgreSQL database
func ConnectPostgres(url string) error {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist. The DDL is
// kept to the dialect subset both SQLite and PostgreSQL accept.
func initializeSchema() error {
	// One row per expression ever added; records are never deleted.
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS expressions (
			expression_id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
			interval INTEGER NOT NULL DEFAULT 1,
			repetitions INTEGER NOT NULL DEFAULT 0,
			next_review TEXT NOT NULL,
			last_review TEXT,
			quality_history TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}'
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create expressions table: %w", err)
	}

	// Single-row aggregate block.
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS statistics (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_reviews INTEGER NOT NULL DEFAULT 0,
			total_expressions INTEGER NOT NULL DEFAULT 0,
			correct_rate DOUBLE PRECISION NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create statistics table: %w", err)
	}

	_, err = DB.Exec(`INSERT INTO statistics (id) VALUES (1) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to seed statistics row: %w", err)
	}

	return nil
}
