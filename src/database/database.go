package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/finbook/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the sqlite database and ensures the import_runs table
// exists. The review working set itself is never persisted; the only
// durable state this service owns is the append-only submission history.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	migrateImportRunsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		bank TEXT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		income_created INTEGER NOT NULL DEFAULT 0,
		expense_created INTEGER NOT NULL DEFAULT 0,
		failure_count INTEGER NOT NULL DEFAULT 0,
		failures TEXT,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_import_runs_user ON import_runs(user_id, started_at);
	`

	if _, err = DB.Exec(createTableStatement); err != nil {
		logger.L.Error("failed to create tables", "error", err)
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	logger.L.Info("Database tables ensured/created.")
}

// migrateImportRunsTable adds columns introduced after the first schema
// version to existing databases.
func migrateImportRunsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='import_runs'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return // table will be created with the current schema
		}
		logger.L.Error("Error checking for 'import_runs' table", "error", err)
		return
	}

	rows, err := DB.Query("PRAGMA table_info(import_runs)")
	if err != nil {
		logger.L.Error("Error querying table schema for 'import_runs'", "error", err)
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			logger.L.Error("Error scanning column info for 'import_runs'", "error", err)
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		logger.L.Error("Error iterating over column info for 'import_runs'", "error", err)
		return
	}

	if _, ok := columnExists["bank"]; !ok {
		if _, err := DB.Exec("ALTER TABLE import_runs ADD COLUMN bank TEXT"); err != nil {
			logger.L.Error("Error adding 'bank' column to 'import_runs' table", "error", err)
		} else {
			logger.L.Info("Added 'bank' column to 'import_runs' table")
		}
	}
	if _, ok := columnExists["status"]; !ok {
		if _, err := DB.Exec("ALTER TABLE import_runs ADD COLUMN status TEXT NOT NULL DEFAULT 'success'"); err != nil {
			logger.L.Error("Error adding 'status' column to 'import_runs' table", "error", err)
		} else {
			logger.L.Info("Added 'status' column to 'import_runs' table")
		}
	}
}
