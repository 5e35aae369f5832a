// Package export defines the contracts of a cohort export run.
// Implementations live in internal/io* packages.
package export

import (
	"context"
	"database/sql"
)

// Source is a read-only connection to the i2b2 warehouse.
// It executes one statement at a time.
type Source interface {
	// Query runs a parameterized query and returns all rows. Each row
	// keeps the values in select-list order.
	Query(ctx context.Context, query string, args ...any) ([][]any, error)

	// Int64s runs a single-column query and returns its values.
	Int64s(ctx context.Context, query string, args ...any) ([]int64, error)

	// Bind renders the placeholder of a named parameter at the given
	// 1-based position, in the syntax of the warehouse dialect.
	Bind(name string, pos int) string

	// Table qualifies a warehouse table name with the configured schema.
	Table(name string) string

	// Close releases the connection.
	Close() error
}

// Resolver turns a stored query name into a cohort.
type Resolver interface {
	// Resolve follows query master, query instance, patient-set result
	// and patient set collection. It fails if any link is missing, if
	// the name is ambiguous or if the patient set is empty.
	Resolve(ctx context.Context, queryName string) (*Cohort, error)
}

// Destination is the SQLite file being produced.
type Destination interface {
	// Prepare deletes an existing file at the final path, creates a new
	// database at a temporary path and runs the schema script.
	Prepare(ctx context.Context) error

	// DB returns the open destination database.
	DB() *sql.DB

	// CreateIndexes runs the index script. It is called after the
	// bulk load.
	CreateIndexes(ctx context.Context) error

	// Finalize closes the database and moves it to the final path.
	Finalize() error

	// Close releases the database without moving it. It is safe to call
	// after Finalize.
	Close() error

	// Path returns the final path of the export file.
	Path() string
}

// Exporter copies cohort records from a Source to a Destination.
type Exporter interface {
	// Export runs all passes, records the job and builds indexes.
	Export(ctx context.Context, cohort *Cohort) (*Stats, error)
}

// Publisher uploads a finished export file.
type Publisher interface {
	// Publish uploads the file and returns its location.
	Publish(ctx context.Context, path string) (string, error)
}
