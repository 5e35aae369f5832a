package iodest

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
)

// CreateError is returned when the destination database cannot be
// created or configured.
func CreateError(path string, err error) error {
	msg := `Cannot create export database <em>%s</em>

<em>How to fix:</em>
  1. Make sure the directory of the output file exists
  2. Check that the directory is writable`

	return &gn.Error{
		Code: errcode.DestCreateError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot create %s: %w", path, err),
	}
}

// NotPreparedError is returned when the destination is used before
// Prepare.
func NotPreparedError() error {
	msg := "Export database is not open"

	return &gn.Error{
		Code: errcode.DestCreateError,
		Msg:  msg,
		Err:  fmt.Errorf("destination is not prepared"),
	}
}

// ReadScriptError is returned when an external SQL script cannot be read.
func ReadScriptError(path string, err error) error {
	msg := `Cannot read SQL script <em>%s</em>

Check <em>export.schema_file</em> and <em>export.index_file</em>
settings, or remove them to use the built-in scripts.`

	return &gn.Error{
		Code: errcode.DestScriptError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot read script %s: %w", path, err),
	}
}

// ScriptError is returned when a statement of a schema or index script
// fails.
func ScriptError(script string, stmt int, err error) error {
	msg := "Statement %d of the %s script failed"

	return &gn.Error{
		Code: errcode.DestScriptError,
		Msg:  msg,
		Vars: []any{stmt, script},
		Err:  fmt.Errorf("%s script, statement %d: %w", script, stmt, err),
	}
}

// FinalizeError is returned when the finished database cannot be moved
// to its final path.
func FinalizeError(tmpPath, path string, err error) error {
	msg := `Cannot move <em>%s</em> to <em>%s</em>

All records were exported, the data is in the temporary file.`

	return &gn.Error{
		Code: errcode.DestFinalizeError,
		Msg:  msg,
		Vars: []any{tmpPath, path},
		Err:  fmt.Errorf("cannot finalize %s: %w", path, err),
	}
}
