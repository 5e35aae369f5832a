package iodest_test

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/internal/iodest"
	"github.com/mcw-ctsi/i2b2export/internal/iofs"
	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
	"github.com/mcw-ctsi/i2b2export/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	require.NoError(t, err)
	defer rows.Close()

	var res []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		res = append(res, name)
	}
	require.NoError(t, rows.Err())
	return res
}

func TestPrepare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.db")
	dst := iodest.New(path, config.ExportConfig{})
	defer dst.Close()

	require.NoError(t, dst.Prepare(t.Context()))
	assert.Equal(t, path, dst.Path())
	require.NotNil(t, dst.DB())

	assert.True(t, iofs.FileExists(path+iodest.TempSuffix))
	assert.False(t, iofs.FileExists(path))

	// destination columns follow the record classes exactly
	for _, class := range record.All() {
		assert.Equal(t, class.Columns, tableColumns(t, dst.DB(), class.Table),
			class.Table)
	}
	assert.Equal(t,
		[]string{"pset", "label", "concepts", "name"},
		tableColumns(t, dst.DB(), "job"),
	)
	assert.NotEmpty(t, tableColumns(t, dst.DB(), "export_run"))
}

// TestPrepare_Pragmas verifies every pooled connection runs without
// journal and sync.
func TestPrepare_Pragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.db")
	dst := iodest.New(path, config.ExportConfig{})
	defer dst.Close()
	require.NoError(t, dst.Prepare(t.Context()))

	db := dst.DB()
	check := func() {
		var sync int
		require.NoError(t, db.QueryRow("PRAGMA synchronous").Scan(&sync))
		assert.Equal(t, 0, sync)

		var mode string
		require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "off", mode)
	}
	check()

	// force a fresh connection
	db.SetMaxIdleConns(0)
	db.SetMaxIdleConns(2)
	check()
}

func TestFinalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.db")
	dst := iodest.New(path, config.ExportConfig{})
	defer dst.Close()

	require.NoError(t, dst.Prepare(t.Context()))
	require.NoError(t, dst.CreateIndexes(t.Context()))
	require.NoError(t, dst.Finalize())
	assert.Nil(t, dst.DB())

	assert.True(t, iofs.FileExists(path))
	assert.False(t, iofs.FileExists(path+iodest.TempSuffix))

	// Close after Finalize does nothing.
	require.NoError(t, dst.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.QueryRow(
		"SELECT count(*) FROM sqlite_master WHERE type = 'index' " +
			"AND name LIKE 'idx_%'",
	).Scan(&count)
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestPrepare_RemovesOldFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.db")
	require.NoError(t, os.WriteFile(path, []byte("old export"), 0644))
	require.NoError(t,
		os.WriteFile(path+iodest.TempSuffix, []byte("stale"), 0644))

	dst := iodest.New(path, config.ExportConfig{})
	defer dst.Close()

	require.NoError(t, dst.Prepare(t.Context()))
	assert.False(t, iofs.FileExists(path))

	// the stale file was replaced with a real database
	tables := tableColumns(t, dst.DB(), "patient_dimension")
	assert.NotEmpty(t, tables)
}

func TestClose_LeavesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.db")
	dst := iodest.New(path, config.ExportConfig{})

	require.NoError(t, dst.Prepare(t.Context()))
	require.NoError(t, dst.Close())

	assert.False(t, iofs.FileExists(path))
	assert.True(t, iofs.FileExists(path+iodest.TempSuffix))
}

func TestCustomScripts(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.sql")
	index := filepath.Join(dir, "index.sql")
	require.NoError(t, os.WriteFile(schema,
		[]byte("-- tiny\nCREATE TABLE job (pset INT, label TEXT, "+
			"concepts TEXT, name TEXT);"), 0644))
	require.NoError(t, os.WriteFile(index,
		[]byte("CREATE INDEX idx_job ON job (pset);"), 0644))

	path := filepath.Join(dir, "cohort.db")
	cfg := config.ExportConfig{SchemaFile: schema, IndexFile: index}
	dst := iodest.New(path, cfg)
	defer dst.Close()

	require.NoError(t, dst.Prepare(t.Context()))
	assert.Empty(t, tableColumns(t, dst.DB(), "patient_dimension"))
	assert.Len(t, tableColumns(t, dst.DB(), "job"), 4)
	require.NoError(t, dst.CreateIndexes(t.Context()))
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	badSchema := filepath.Join(dir, "bad.sql")
	require.NoError(t, os.WriteFile(badSchema,
		[]byte("CREATE TABLE a (x INT);\nCREATE TABLBE b (y INT);"), 0644))

	tests := []struct {
		msg  string
		path string
		cfg  config.ExportConfig
		code gn.ErrorCode
	}{
		{
			msg:  "missing directory",
			path: filepath.Join(dir, "no", "such", "dir", "cohort.db"),
			code: errcode.DestCreateError,
		},
		{
			msg:  "missing schema file",
			path: filepath.Join(dir, "a.db"),
			cfg:  config.ExportConfig{SchemaFile: filepath.Join(dir, "none.sql")},
			code: errcode.DestScriptError,
		},
		{
			msg:  "broken schema",
			path: filepath.Join(dir, "b.db"),
			cfg:  config.ExportConfig{SchemaFile: badSchema},
			code: errcode.DestScriptError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			dst := iodest.New(tt.path, tt.cfg)
			defer dst.Close()

			err := dst.Prepare(t.Context())
			require.Error(t, err)
			var gnErr *gn.Error
			require.True(t, errors.As(err, &gnErr))
			assert.Equal(t, tt.code, gnErr.Code)
			assert.False(t, iofs.FileExists(tt.path))
		})
	}
}

func TestNotPrepared(t *testing.T) {
	dst := iodest.New(filepath.Join(t.TempDir(), "x.db"), config.ExportConfig{})
	require.Error(t, dst.CreateIndexes(t.Context()))
	require.Error(t, dst.Finalize())
	require.NoError(t, dst.Close())
}
