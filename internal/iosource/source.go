// Package iosource implements export.Source over database/sql.
// This is an impure I/O package that reads from the i2b2 warehouse.
package iosource

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/mcw-ctsi/i2b2export/pkg/export"
	go_ora "github.com/sijms/go-ora/v2"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // pure Go SQLite driver
)

// Dialect determines placeholder syntax of the warehouse.
type Dialect string

const (
	Oracle   Dialect = "oracle"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// source implements export.Source.
type source struct {
	db      *sql.DB
	dialect Dialect
	schema  string
}

// Open connects to the warehouse described by cfg and verifies the
// connection.
func Open(ctx context.Context, cfg *config.SourceConfig) (export.Source, error) {
	dialect := Dialect(cfg.Driver)
	driver, dsn, err := connectionString(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, ConnectionError(cfg, err)
	}

	// The warehouse is used as a single cursor.
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, ConnectionError(cfg, err)
	}

	return &source{db: db, dialect: dialect, schema: cfg.Schema}, nil
}

// New wraps an already open database. Used by tests and by callers that
// manage the connection themselves.
func New(db *sql.DB, dialect Dialect, schema string) export.Source {
	return &source{db: db, dialect: dialect, schema: schema}
}

// connectionString returns the database/sql driver name and DSN.
func connectionString(cfg *config.SourceConfig) (string, string, error) {
	switch Dialect(cfg.Driver) {
	case Oracle:
		if cfg.DSN != "" {
			return "oracle", cfg.DSN, nil
		}
		dsn := go_ora.BuildUrl(
			cfg.Host, cfg.Port, cfg.Service,
			cfg.User, cfg.Password, nil,
		)
		return "oracle", dsn, nil
	case Postgres:
		if cfg.DSN != "" {
			return "pgx", cfg.DSN, nil
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
			Path:     cfg.Service,
			RawQuery: "sslmode=" + cfg.SSLMode,
		}
		return "pgx", u.String(), nil
	case SQLite:
		if cfg.DSN == "" {
			return "", "", DriverError(cfg.Driver,
				fmt.Errorf("sqlite source requires a dsn with the file path"))
		}
		return "sqlite", cfg.DSN, nil
	default:
		return "", "", DriverError(cfg.Driver,
			fmt.Errorf("unknown driver %q", cfg.Driver))
	}
}

// Close releases the connection.
func (s *source) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Bind renders a named parameter placeholder.
func (s *source) Bind(name string, pos int) string {
	switch s.dialect {
	case Oracle:
		return ":" + name
	case Postgres:
		return "$" + strconv.Itoa(pos)
	default:
		return "?"
	}
}

// Table qualifies a table name with the warehouse schema.
func (s *source) Table(name string) string {
	if s.schema == "" {
		return name
	}
	return s.schema + "." + name
}

// Query executes a read query and materializes all rows.
func (s *source) Query(
	ctx context.Context,
	query string,
	args ...any,
) ([][]any, error) {
	if s.db == nil {
		return nil, NotConnectedError()
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, QueryError(query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, QueryError(query, err)
	}

	var res [][]any
	for rows.Next() {
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, QueryError(query, err)
		}
		res = append(res, row)
	}

	if err = rows.Err(); err != nil {
		return nil, QueryError(query, err)
	}
	return res, nil
}

// Int64s executes a single-column query and converts the values
// to int64.
func (s *source) Int64s(
	ctx context.Context,
	query string,
	args ...any,
) ([]int64, error) {
	if s.db == nil {
		return nil, NotConnectedError()
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, QueryError(query, err)
	}
	defer rows.Close()

	var res []int64
	for rows.Next() {
		var v int64
		if err = rows.Scan(&v); err != nil {
			return nil, QueryError(query, err)
		}
		res = append(res, v)
	}

	if err = rows.Err(); err != nil {
		return nil, QueryError(query, err)
	}
	return res, nil
}
