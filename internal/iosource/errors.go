package iosource

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
)

// NotConnectedError is returned when a query runs on a closed source.
func NotConnectedError() error {
	msg := "Warehouse query attempted without database connection"

	return &gn.Error{
		Code: errcode.SourceConnectionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to warehouse"),
	}
}

// ConnectionError is returned when the warehouse cannot be reached.
// The password is never part of the message.
func ConnectionError(cfg *config.SourceConfig, err error) error {
	msg := `Cannot connect to the i2b2 warehouse

<em>Connection settings:</em>
  Driver:  %s
  Host:    %s
  Port:    %d
  Service: %s
  User:    %s

<em>How to fix:</em>
  1. Check that the database is running and reachable
  2. Review <em>source</em> settings in config.yaml
  3. Or set I2B2EXPORT_SOURCE_* environment variables`

	vars := []any{cfg.Driver, cfg.Host, cfg.Port, cfg.Service, cfg.User}

	return &gn.Error{
		Code: errcode.SourceConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to connect to %s warehouse %s:%d/%s: %w",
			cfg.Driver, cfg.Host, cfg.Port, cfg.Service, err),
	}
}

// DriverError is returned for unsupported or misconfigured drivers.
func DriverError(driver string, err error) error {
	msg := `Unsupported warehouse driver <em>%s</em>

Valid drivers are oracle, postgres and sqlite.`

	return &gn.Error{
		Code: errcode.SourceDriverError,
		Msg:  msg,
		Vars: []any{driver},
		Err:  fmt.Errorf("bad driver %s: %w", driver, err),
	}
}

// QueryError is returned when a warehouse query fails.
func QueryError(query string, err error) error {
	msg := "Warehouse query failed: <em>%s</em>"
	vars := []any{shortQuery(query)}

	return &gn.Error{
		Code: errcode.SourceQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("query %q: %w", shortQuery(query), err),
	}
}

// shortQuery collapses whitespace and cuts long statements for messages.
func shortQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	const limit = 80
	if len(q) > limit {
		return q[:limit] + "..."
	}
	return q
}
