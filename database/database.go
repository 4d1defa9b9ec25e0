package database

import (
	"database/sql"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Querier abstracts *sql.DB and *sql.Tx for the legacy attendance store
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// InitDB opens the raw database/sql handle used by the legacy
// attendance projection. It is deliberately kept on plain SQL rather
// than GORM: the table predates the ledger and is retained unchanged
// for the migration/parallel-run period.
func InitDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable write-ahead Logging for better concurrency
	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		log.Printf("warning: failed to set WAL mode: %v", err)
	}

	sqlStmt := `
	CREATE TABLE IF NOT EXISTS attendance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_code_id INTEGER NOT NULL,
		reg_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		occupation TEXT,
		regular_wage REAL,
		UNIQUE(session_code_id, reg_id, date)
	);
	`
	_, err = db.Exec(sqlStmt)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create attendance table: %w", err)
	}

	log.Println("legacy attendance database initialized successfully at", dataSourceName)
	return db, nil
}
