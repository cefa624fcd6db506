package database

import (
	"database/sql"
	"fmt"
	stdlog "log"

	"github.com/username/clinicboard/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateUserTable()
	migrateMarginServicesTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		auth_provider TEXT DEFAULT 'local',
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		password_reset_token TEXT,
		password_reset_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS margin_services (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		current_price REAL NOT NULL DEFAULT 0,
		expenses TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// tableColumns returns the existing column set of a table, or nil when the
// table does not exist yet (creation will bring the full schema).
func tableColumns(table string) map[string]bool {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
	if err != nil {
		if err != sql.ErrNoRows {
			logf("Error checking for '%s' table: %v", table, err)
		}
		return nil
	}

	rows, err := DB.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		logf("Error querying table schema for '%s': %v", table, err)
		return nil
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid, pk, notnullVal int
		var name, dataType string
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			logf("Error scanning column info for '%s': %v", table, err)
			return nil
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		logf("Error iterating over column info for '%s': %v", table, err)
		return nil
	}
	return columns
}

func addColumnIfMissing(columns map[string]bool, table, column, definition string) {
	if columns[column] {
		return
	}
	_, err := DB.Exec("ALTER TABLE " + table + " ADD COLUMN " + column + " " + definition)
	if err != nil {
		logf("Error adding '%s' column to '%s' table: %v", column, table, err)
	} else {
		logf("Added '%s' column to '%s' table", column, table)
	}
}

func migrateUserTable() {
	columns := tableColumns("users")
	if columns == nil {
		return
	}
	addColumnIfMissing(columns, "users", "email", "TEXT NOT NULL DEFAULT ''")
	addColumnIfMissing(columns, "users", "auth_provider", "TEXT DEFAULT 'local'")
	addColumnIfMissing(columns, "users", "is_email_verified", "BOOLEAN DEFAULT FALSE")
	addColumnIfMissing(columns, "users", "email_verification_token", "TEXT")
	addColumnIfMissing(columns, "users", "email_verification_token_expires_at", "TIMESTAMP")
	addColumnIfMissing(columns, "users", "password_reset_token", "TEXT")
	addColumnIfMissing(columns, "users", "password_reset_token_expires_at", "TIMESTAMP")
	addColumnIfMissing(columns, "users", "created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
	addColumnIfMissing(columns, "users", "updated_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
}

func migrateMarginServicesTable() {
	columns := tableColumns("margin_services")
	if columns == nil {
		return
	}
	// Earlier builds stored price inside the expenses JSON blob.
	addColumnIfMissing(columns, "margin_services", "current_price", "REAL NOT NULL DEFAULT 0")
	addColumnIfMissing(columns, "margin_services", "updated_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
}

func logf(format string, args ...interface{}) {
	if logger.L != nil {
		logger.L.Info("database migration", "detail", fmt.Sprintf(format, args...))
	} else {
		stdlog.Printf(format, args...)
	}
}
