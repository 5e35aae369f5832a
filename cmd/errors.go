package cmd

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
	"github.com/spf13/cobra"
)

// UsageError is returned for wrong command line arguments. It makes
// the process exit with ExitUsage.
func UsageError(cmd *cobra.Command, reason string) error {
	msg := `Wrong usage: %s

<em>Usage:</em> %s
Run <em>i2b2export --help</em> for details.`

	return &gn.Error{
		Code: errcode.UsageError,
		Msg:  msg,
		Vars: []any{reason, cmd.UseLine()},
		Err:  fmt.Errorf("usage: %s", reason),
	}
}
