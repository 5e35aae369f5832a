package iodest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitScript(t *testing.T) {
	tests := []struct {
		msg, script string
		want        []string
	}{
		{"empty", "", nil},
		{"only comments", "-- one\n-- two\n", nil},
		{"single no semicolon", "SELECT 1", []string{"SELECT 1"}},
		{
			"two statements",
			"CREATE TABLE a (x INT);\nCREATE TABLE b (y INT);\n",
			[]string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"},
		},
		{
			"trailing comment",
			"CREATE TABLE a (x INT); -- first\n",
			[]string{"CREATE TABLE a (x INT)"},
		},
		{
			"semicolon in comment",
			"-- a; b\nSELECT 1;",
			[]string{"SELECT 1"},
		},
		{
			"quoted semicolon and dashes",
			"INSERT INTO t VALUES ('a;b--c');",
			[]string{"INSERT INTO t VALUES ('a;b--c')"},
		},
		{
			"escaped quote",
			"INSERT INTO t VALUES ('it''s;');SELECT 2",
			[]string{"INSERT INTO t VALUES ('it''s;')", "SELECT 2"},
		},
		{"empty statements", ";;\n;", nil},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, splitScript(tt.script))
		})
	}
}

func TestEmbeddedScripts(t *testing.T) {
	assert := assert.New(t)
	schema := splitScript(schemaSQL)
	assert.Len(schema, 7)
	for _, v := range schema {
		assert.Contains(v, "CREATE TABLE")
	}

	idx := splitScript(indexesSQL)
	assert.NotEmpty(idx)
	for _, v := range idx {
		assert.Contains(v, "CREATE INDEX")
	}
}

func TestLoadScript(t *testing.T) {
	res, err := loadScript("", "embedded")
	require.NoError(t, err)
	assert.Equal(t, "embedded", res)

	path := filepath.Join(t.TempDir(), "custom.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1;"), 0644))
	res, err = loadScript(path, "embedded")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", res)

	_, err = loadScript(filepath.Join(t.TempDir(), "none.sql"), "embedded")
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DestScriptError, gnErr.Code)
}

func TestCheckScripts(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "custom.sql")
	require.NoError(t, os.WriteFile(script, []byte("SELECT 1;"), 0644))

	tests := []struct {
		msg string
		cfg config.ExportConfig
		ok  bool
	}{
		{"built-in scripts", config.ExportConfig{}, true},
		{"custom schema", config.ExportConfig{SchemaFile: script}, true},
		{"custom index", config.ExportConfig{IndexFile: script}, true},
		{
			"missing schema",
			config.ExportConfig{SchemaFile: filepath.Join(dir, "none.sql")},
			false,
		},
		{
			"index is a directory",
			config.ExportConfig{SchemaFile: script, IndexFile: dir},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := CheckScripts(tt.cfg)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, errcode.DestScriptError, gnErr.Code)
		})
	}
}
