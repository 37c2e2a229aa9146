package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"truthfinder/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the configured SQL backend.
func Open(driver string, cfg *config.DatabaseConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path must be provided")
		}
		db, err = sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("postgres connection url must be provided")
		}
		db, err = sql.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			cfg.MySQLUser,
			cfg.MySQLPassword,
			cfg.MySQLHost,
			cfg.MySQLPort,
			cfg.MySQLName,
			cfg.MySQLParams,
		)
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the chat_history table is present. Records are append-only;
// no statement here ever alters or drops existing rows.
func Migrate(db *sql.DB, driver string) error {
	var stmts []string
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				role TEXT NOT NULL CHECK (role IN ('user','assistant')),
				content TEXT NOT NULL,
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_history_user ON chat_history(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_history_created_at ON chat_history(created_at)`,
		}
	case "postgres":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_history (
				id BIGSERIAL PRIMARY KEY,
				user_id TEXT NOT NULL,
				role TEXT NOT NULL CHECK (role IN ('user','assistant')),
				content TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_history_user ON chat_history(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_history_created_at ON chat_history(created_at)`,
		}
	case "mysql":
		// MySQL parses but does not enforce CHECK before 8.0.16; the store
		// validates roles before any insert, so the constraint is advisory.
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_history (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				user_id VARCHAR(255) NOT NULL,
				role VARCHAR(16) NOT NULL,
				content MEDIUMTEXT NOT NULL,
				created_at DATETIME(6) NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_chat_history_user (user_id),
				INDEX idx_chat_history_created_at (created_at)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}

// Rebind rewrites ?-style placeholders into the $n form postgres expects.
// Queries are written with ? and rebound per driver so the same statement
// text serves all three backends.
func Rebind(driver, query string) string {
	if strings.ToLower(driver) != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
