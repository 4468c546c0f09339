package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite connection with pooling configuration.
type DB struct {
	*sql.DB
	pool *ConnectionPool
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB opens (and migrates) the faculty hub database under dataDir.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "faculty_hub.db")

	// WAL keeps concurrent rating submissions from blocking readers.
	// _txlock=immediate makes every transaction take the write lock up
	// front, so the stats read-modify-write serializes instead of
	// deadlocking on a read-to-write lock upgrade; busy_timeout queues
	// writers behind the lock rather than failing them.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 25, 10, 5*time.Minute)

	database := &DB{
		DB:   db,
		pool: pool,
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"path", dbPath,
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			picture TEXT,
			is_admin BOOLEAN DEFAULT FALSE,
			preferences TEXT NOT NULL DEFAULT '[]',
			ai_interests TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		)`,

		// avg_* / count_* column pairs are the per-category running
		// aggregates; see internal/ratings for the update contract.
		`CREATE TABLE IF NOT EXISTS faculty (
			faculty_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			department TEXT NOT NULL,
			designation TEXT NOT NULL,
			image_url TEXT,
			scholar_profile TEXT,
			research_interests TEXT,
			publications TEXT NOT NULL DEFAULT '[]',
			avg_teaching REAL NOT NULL DEFAULT 0,
			count_teaching INTEGER NOT NULL DEFAULT 0,
			avg_attendance REAL NOT NULL DEFAULT 0,
			count_attendance INTEGER NOT NULL DEFAULT 0,
			avg_doubt_clarification REAL NOT NULL DEFAULT 0,
			count_doubt_clarification INTEGER NOT NULL DEFAULT 0,
			avg_overall REAL NOT NULL DEFAULT 0,
			count_overall INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,

		// One rating row per (faculty, user); revisions update in place.
		`CREATE TABLE IF NOT EXISTS ratings (
			rating_id TEXT PRIMARY KEY,
			faculty_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			teaching INTEGER,
			attendance INTEGER,
			doubt_clarification INTEGER,
			overall INTEGER,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(faculty_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			comment_id TEXT PRIMARY KEY,
			faculty_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			user_picture TEXT,
			content TEXT NOT NULL,
			parent_comment_id TEXT,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS chats (
			chat_id TEXT PRIMARY KEY,
			participant_key TEXT NOT NULL UNIQUE,
			participants TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			message_id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			sender_handle TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (chat_id) REFERENCES chats(chat_id)
		)`,

		// Indexes for performance
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_faculty_department ON faculty(department)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_faculty_user ON ratings(faculty_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_faculty ON comments(faculty_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_chat ON chat_messages(chat_id, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// GetPoolStats returns connection pool statistics for monitoring.
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}
