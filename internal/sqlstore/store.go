// Package sqlstore implements store.Repository on database/sql.
// Two dialects are supported: DuckDB (single-file analytical database) and
// SQLite (WAL journal, one writer).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"

	"github.com/inodb/genomebank/internal/store"
)

// Supported driver names.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

type dialect struct {
	driverName   string // name registered with database/sql
	memoryDSN    string // DSN used when path is empty
	maxOpenConns int    // 0 means unlimited
	pragmas      []string
	schema       []string
}

var dialects = map[string]*dialect{
	DriverDuckDB: {
		driverName: "duckdb",
		memoryDSN:  "",
		schema: []string{
			`CREATE SEQUENCE IF NOT EXISTS chromosome_ids START 1`,
			`CREATE TABLE IF NOT EXISTS chromosomes (
				id BIGINT PRIMARY KEY DEFAULT nextval('chromosome_ids'),
				name VARCHAR NOT NULL,
				seq_length BIGINT NOT NULL,
				seq VARCHAR,
				checksum VARCHAR,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE SEQUENCE IF NOT EXISTS gene_ids START 1`,
			`CREATE TABLE IF NOT EXISTS genes (
				id BIGINT PRIMARY KEY DEFAULT nextval('gene_ids'),
				chromosome_id BIGINT NOT NULL,
				symbol VARCHAR NOT NULL,
				start_pos BIGINT NOT NULL,
				end_pos BIGINT NOT NULL,
				strand VARCHAR NOT NULL,
				seq VARCHAR,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE SEQUENCE IF NOT EXISTS function_ids START 1`,
			`CREATE TABLE IF NOT EXISTS functions (
				id BIGINT PRIMARY KEY DEFAULT nextval('function_ids'),
				code VARCHAR NOT NULL UNIQUE,
				name VARCHAR NOT NULL,
				category VARCHAR NOT NULL,
				description VARCHAR,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS gene_functions (
				gene_id BIGINT NOT NULL,
				function_id BIGINT NOT NULL,
				evidence VARCHAR,
				created_at TIMESTAMP NOT NULL,
				PRIMARY KEY (gene_id, function_id)
			)`,
		},
	},
	DriverSQLite: {
		driverName:   "sqlite3",
		memoryDSN:    ":memory:",
		maxOpenConns: 1, // single writer; also keeps :memory: on one connection
		pragmas: []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
		},
		schema: []string{
			`CREATE TABLE IF NOT EXISTS chromosomes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				seq_length INTEGER NOT NULL,
				seq TEXT,
				checksum TEXT,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS genes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				chromosome_id INTEGER NOT NULL,
				symbol TEXT NOT NULL,
				start_pos INTEGER NOT NULL,
				end_pos INTEGER NOT NULL,
				strand TEXT NOT NULL,
				seq TEXT,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS genes_chromosome_start ON genes (chromosome_id, start_pos)`,
			`CREATE TABLE IF NOT EXISTS functions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				code TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				category TEXT NOT NULL,
				description TEXT,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS gene_functions (
				gene_id INTEGER NOT NULL,
				function_id INTEGER NOT NULL,
				evidence TEXT,
				created_at TIMESTAMP NOT NULL,
				PRIMARY KEY (gene_id, function_id)
			)`,
			`CREATE INDEX IF NOT EXISTS gene_functions_function ON gene_functions (function_id)`,
		},
	},
}

// Store is a SQL-backed repository.
type Store struct {
	db      *sql.DB
	driver  string
	path    string
	dialect *dialect
}

// Open opens or creates a database for driver ("duckdb" or "sqlite") at path.
// Use an empty path for an in-memory database.
func Open(driver, path string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unknown store driver %q (want %s or %s)", driver, DriverDuckDB, DriverSQLite)
	}

	dsn := d.memoryDSN
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if d.maxOpenConns > 0 {
		db.SetMaxOpenConns(d.maxOpenConns)
		db.SetMaxIdleConns(d.maxOpenConns)
	}

	s := &Store{db: db, driver: driver, path: path, dialect: d}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the dialect name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// ensureSchema applies pragmas and creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range s.dialect.pragmas {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("execute %q: %w", stmt, err)
		}
	}
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// inTx runs fn inside a transaction, committing if fn returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ store.Repository = (*Store)(nil)
