package ioexport

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
)

// PassError is returned when records of a class cannot be loaded into
// the export database. Passes finished before it stay committed.
func PassError(class string, err error) error {
	msg := `Cannot load <em>%s</em> into the export database

The export file is incomplete and was not moved to its final path.`

	return &gn.Error{
		Code: errcode.DestPassError,
		Msg:  msg,
		Vars: []any{class},
		Err:  fmt.Errorf("pass %s: %w", class, err),
	}
}

// JobError is returned when the job or export run rows cannot be written.
func JobError(table string, err error) error {
	msg := "Cannot write the <em>%s</em> record of the export"

	return &gn.Error{
		Code: errcode.DestJobError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("insert into %s: %w", table, err),
	}
}

// CancelledError is returned when the export is interrupted.
func CancelledError(err error) error {
	msg := "Export was cancelled"

	return &gn.Error{
		Code: errcode.ExportCancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("export cancelled: %w", err),
	}
}
