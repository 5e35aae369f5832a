package iofs

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
)

func CreateDirError(dir string, err error) error {
	msg := "Cannot create %s"
	vars := []any{dir}
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot create directory: %w",
			caller(), err),
	}
}

func CopyFileError(file string, err error) error {
	msg := "Cannot copy config file to %s"
	vars := []any{file}
	return &gn.Error{
		Code: errcode.CopyFileError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot copy file: %w",
			caller(), err),
	}
}

func ReadFileError(path string, err error) error {
	msg := "Cannot read <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ReadFileError,
		Err: fmt.Errorf("from %s: cannot read %s: %w",
			caller(), path, err),
		Msg:  msg,
		Vars: vars,
	}
}

func RemoveFileError(path string, err error) error {
	msg := `Cannot remove existing file <em>%s</em>

The export always replaces the output file. Check that the file is not
open in another program and that its directory is writable.`
	vars := []any{path}
	return &gn.Error{
		Code: errcode.RemoveFileError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot remove %s: %w",
			caller(), path, err),
	}
}

// caller returns the name of the function that called the error
// constructor.
func caller() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}
