// Package storage is the app's local SQLite database: saved connections
// and a per-connection log of the statements the engine generated.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xo/dburl"
	_ "modernc.org/sqlite"

	"github.com/pgtui/gridq/drivers"
)

// DB is the global database connection for app storage
var DB *sql.DB

// Connection represents a saved database connection
type Connection struct {
	ID        int64
	Name      string
	Driver    string // postgres, mysql, sqlite
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref is the stable reference used to key per-connection state such as
// saved grid layouts.
func (c *Connection) Ref() string {
	return fmt.Sprintf("conn-%d", c.ID)
}

// StatementLog is one engine-generated statement that was executed
// against a connection.
type StatementLog struct {
	ID           int64
	ConnectionID int64
	SQL          string
	ExecutedAt   time.Time
	Duration     int64 // milliseconds
	Rows         int64
	Error        string
}

// storagePath returns the path to the SQLite database file
func storagePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "gridq")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "storage.db"), nil
}

// Init opens the app storage database at its default location and creates
// tables.
func Init() error {
	path, err := storagePath()
	if err != nil {
		return err
	}
	return InitAt(path)
}

// InitAt opens the app storage database at the given path.
func InitAt(path string) error {
	var err error
	DB, err = sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	return createTables()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

func createTables() error {
	schema := `
    CREATE TABLE IF NOT EXISTS connections (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        driver TEXT NOT NULL,
        url TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS statement_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        connection_id INTEGER,
        statement TEXT NOT NULL,
        executed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        duration INTEGER DEFAULT 0,
        row_count INTEGER DEFAULT 0,
        error TEXT,
        FOREIGN KEY (connection_id) REFERENCES connections(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_statement_log_connection ON statement_log(connection_id);
    CREATE INDEX IF NOT EXISTS idx_statement_log_executed_at ON statement_log(executed_at);
    `

	_, err := DB.Exec(schema)
	return err
}

// CreateConnection tests the URL, derives its driver, and saves it.
func CreateConnection(name, url string) (int64, error) {
	u, err := dburl.Parse(url)
	if err != nil {
		return 0, fmt.Errorf("invalid connection url: %w", err)
	}
	if err := drivers.TestConnection(url); err != nil {
		return 0, fmt.Errorf("connection test failed: %w", err)
	}

	result, err := DB.Exec(
		"INSERT INTO connections (name, driver, url) VALUES (?, ?, ?)",
		name, u.Driver, url,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetConnection retrieves a connection by ID
func GetConnection(id int64) (*Connection, error) {
	conn := &Connection{}
	err := DB.QueryRow(
		"SELECT id, name, driver, url, created_at, updated_at FROM connections WHERE id = ?",
		id,
	).Scan(&conn.ID, &conn.Name, &conn.Driver, &conn.URL, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// GetConnectionByName retrieves a connection by its saved name
func GetConnectionByName(name string) (*Connection, error) {
	conn := &Connection{}
	err := DB.QueryRow(
		"SELECT id, name, driver, url, created_at, updated_at FROM connections WHERE name = ?",
		name,
	).Scan(&conn.ID, &conn.Name, &conn.Driver, &conn.URL, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// GetAllConnections retrieves all saved connections
func GetAllConnections() ([]Connection, error) {
	rows, err := DB.Query(
		"SELECT id, name, driver, url, created_at, updated_at FROM connections ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var connections []Connection
	for rows.Next() {
		var conn Connection
		if err := rows.Scan(&conn.ID, &conn.Name, &conn.Driver, &conn.URL, &conn.CreatedAt, &conn.UpdatedAt); err != nil {
			return nil, err
		}
		connections = append(connections, conn)
	}
	return connections, rows.Err()
}

// UpdateConnection updates an existing connection
func UpdateConnection(id int64, name, url string) error {
	u, err := dburl.Parse(url)
	if err != nil {
		return fmt.Errorf("invalid connection url: %w", err)
	}
	_, err = DB.Exec(
		"UPDATE connections SET name = ?, driver = ?, url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, u.Driver, url, id,
	)
	return err
}

// DeleteConnection deletes a connection by ID
func DeleteConnection(id int64) error {
	_, err := DB.Exec("DELETE FROM connections WHERE id = ?", id)
	return err
}

// AddStatement records one executed statement for a connection.
func AddStatement(connectionID int64, sqlText string, duration, rowCount int64, execError string) (int64, error) {
	result, err := DB.Exec(
		"INSERT INTO statement_log (connection_id, statement, duration, row_count, error) VALUES (?, ?, ?, ?, ?)",
		connectionID, sqlText, duration, rowCount, execError,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RecentStatements retrieves the latest statements for a connection, most
// recent first.
func RecentStatements(connectionID int64, limit int) ([]StatementLog, error) {
	rows, err := DB.Query(
		"SELECT id, connection_id, statement, executed_at, duration, row_count, error FROM statement_log WHERE connection_id = ? ORDER BY id DESC LIMIT ?",
		connectionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var log []StatementLog
	for rows.Next() {
		var entry StatementLog
		var errStr sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ConnectionID, &entry.SQL, &entry.ExecutedAt, &entry.Duration, &entry.Rows, &errStr); err != nil {
			return nil, err
		}
		if errStr.Valid {
			entry.Error = errStr.String
		}
		log = append(log, entry)
	}
	return log, rows.Err()
}

// ClearStatements clears the statement log for a connection.
func ClearStatements(connectionID int64) error {
	_, err := DB.Exec("DELETE FROM statement_log WHERE connection_id = ?", connectionID)
	return err
}
