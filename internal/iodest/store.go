// Package iodest implements export.Destination as a SQLite file.
// The database is built at a temporary path and moved to the final path
// only after all records and indexes are written.
package iodest

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/mcw-ctsi/i2b2export/internal/iofs"
	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/mcw-ctsi/i2b2export/pkg/export"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// TempSuffix is appended to the output path while the export runs.
const TempSuffix = ".partial"

// The file is rebuilt from scratch on every run, durability of
// intermediate states does not matter. The driver applies DSN pragmas to
// every connection it opens.
const dsnPragmas = "?_pragma=synchronous(OFF)&_pragma=journal_mode(OFF)"

// store implements export.Destination.
type store struct {
	path       string
	tmpPath    string
	schemaFile string
	indexFile  string
	db         *sql.DB
}

// New creates a Destination for the output file at path. Empty script
// paths in cfg select the built-in schema and indexes.
func New(path string, cfg config.ExportConfig) export.Destination {
	return &store{
		path:       path,
		tmpPath:    path + TempSuffix,
		schemaFile: cfg.SchemaFile,
		indexFile:  cfg.IndexFile,
	}
}

// Path returns the final path of the export file.
func (s *store) Path() string {
	return s.path
}

// DB returns the open database, or nil before Prepare.
func (s *store) DB() *sql.DB {
	return s.db
}

// Prepare removes a previous export, creates a new database at the
// temporary path and runs the schema script.
func (s *store) Prepare(ctx context.Context) error {
	schema, err := loadScript(s.schemaFile, schemaSQL)
	if err != nil {
		return err
	}

	removed, err := iofs.RemoveFile(s.path)
	if err != nil {
		return err
	}
	if removed {
		slog.Info("Removed existing export file", "path", s.path)
	}

	removed, err = iofs.RemoveFile(s.tmpPath)
	if err != nil {
		return err
	}
	if removed {
		slog.Warn("Removed unfinished export file", "path", s.tmpPath)
	}

	db, err := sql.Open("sqlite", s.tmpPath+dsnPragmas)
	if err != nil {
		return CreateError(s.tmpPath, err)
	}
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return CreateError(s.tmpPath, err)
	}
	s.db = db

	if err = s.runScript(ctx, "schema", schema); err != nil {
		return err
	}

	slog.Info("Created export database", "path", s.tmpPath)
	return nil
}

// CreateIndexes runs the index script.
func (s *store) CreateIndexes(ctx context.Context) error {
	script, err := loadScript(s.indexFile, indexesSQL)
	if err != nil {
		return err
	}
	return s.runScript(ctx, "index", script)
}

// Finalize closes the database and renames the temporary file to the
// final path.
func (s *store) Finalize() error {
	if s.db == nil {
		return NotPreparedError()
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return FinalizeError(s.tmpPath, s.path, err)
	}

	if err = os.Rename(s.tmpPath, s.path); err != nil {
		return FinalizeError(s.tmpPath, s.path, err)
	}
	slog.Info("Export file is ready", "path", s.path)
	return nil
}

// Close releases the database without renaming. The temporary file
// stays on disk.
func (s *store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return err
	}
	slog.Warn("Export stopped before completion", "partial_file", s.tmpPath)
	return nil
}

func (s *store) runScript(ctx context.Context, name, script string) error {
	if s.db == nil {
		return NotPreparedError()
	}

	stmts := splitScript(script)
	for i, v := range stmts {
		if _, err := s.db.ExecContext(ctx, v); err != nil {
			return ScriptError(name, i+1, err)
		}
	}
	slog.Debug("Executed SQL script", "script", name, "statements", len(stmts))
	return nil
}
