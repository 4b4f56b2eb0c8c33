package database

import (
	"database/sql"
	"fmt"
	"runtime"

	_ "modernc.org/sqlite"
)

// SQLiteDSN builds the connection string used for every SQLite handle: WAL
// journal, foreign keys on, and a busy timeout so readers wait for the writer.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
}

// SQLiteHandles is a writer limited to one connection plus a reader pool.
// All writes go through the writer, so SQLite never sees two writers.
type SQLiteHandles struct {
	Writer *sql.DB
	Reader *sql.DB
}

// OpenSQLite opens the writer and reader handles for the database at path.
func OpenSQLite(path string) (*SQLiteHandles, error) {
	dsn := SQLiteDSN(path)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open sqlite reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	if err := writer.Ping(); err != nil {
		writer.Close()
		reader.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteHandles{Writer: writer, Reader: reader}, nil
}

// Close closes both handles.
func (h *SQLiteHandles) Close() error {
	err1 := h.Writer.Close()
	err2 := h.Reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
