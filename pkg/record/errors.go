package record

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
)

// InvalidClassError is returned when a record class cannot produce
// matching SELECT and INSERT statements.
func InvalidClassError(table, reason string) error {
	msg := "Record class <em>%s</em> is invalid: %s"
	vars := []any{table, reason}

	return &gn.Error{
		Code: errcode.InvalidRecordClassError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid record class %s: %s", table, reason),
	}
}
