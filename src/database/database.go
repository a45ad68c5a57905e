package database

import (
	"database/sql"
	"fmt"
	stdlog "log"

	"github.com/username/fintrack/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		auth_provider TEXT NOT NULL DEFAULT 'google',
		provider_subject TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL UNIQUE,
		provider_token TEXT NOT NULL DEFAULT '',
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		amount TEXT NOT NULL,
		type TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		date TEXT NOT NULL,
		account_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
	`

// column is a column that older databases may lack.
type column struct {
	name string
	ddl  string
}

var lateColumns = map[string][]column{
	"users": {
		{"name", "ALTER TABLE users ADD COLUMN name TEXT NOT NULL DEFAULT ''"},
		{"auth_provider", "ALTER TABLE users ADD COLUMN auth_provider TEXT NOT NULL DEFAULT 'google'"},
		{"provider_subject", "ALTER TABLE users ADD COLUMN provider_subject TEXT NOT NULL DEFAULT ''"},
	},
	"sessions": {
		{"provider_token", "ALTER TABLE sessions ADD COLUMN provider_token TEXT NOT NULL DEFAULT ''"},
	},
}

// InitDB opens the global database and exits the process if it cannot.
func InitDB(databasePath string) {
	db, err := Open(databasePath)
	if err != nil {
		stdlog.Fatalf("failed to initialize database at %s: %v", databasePath, err)
	}
	DB = db
}

// Open connects to the SQLite file at path, migrates older tables and ensures
// the schema exists.
func Open(databasePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	for table, columns := range lateColumns {
		if err := migrateTable(db, table, columns); err != nil {
			db.Close()
			return nil, err
		}
	}

	if _, err := db.Exec(schema); err != nil {
		logger.L.Error("failed to create tables", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	logger.L.Info("Database tables ensured/created.")
	return db, nil
}

func migrateTable(db *sql.DB, table string, columns []column) error {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
	if err == sql.ErrNoRows {
		logger.L.Debug("Table does not exist yet, no migration needed", "table", table)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking for '%s' table: %w", table, err)
	}

	existing, err := tableColumns(db, table)
	if err != nil {
		return err
	}

	for _, c := range columns {
		if existing[c.name] {
			continue
		}
		if _, err := db.Exec(c.ddl); err != nil {
			logger.L.Error("Error adding column", "table", table, "column", c.name, "error", err)
			return fmt.Errorf("error adding '%s' column to '%s': %w", c.name, table, err)
		}
		logger.L.Info("Added column", "table", table, "column", c.name)
	}
	return nil
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("error querying table schema for '%s': %w", table, err)
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("error scanning column info for '%s': %w", table, err)
		}
		columnExists[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over column info for '%s': %w", table, err)
	}
	return columnExists, nil
}
