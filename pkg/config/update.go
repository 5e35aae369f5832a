package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, DryRun, Upload).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Source.Driver
	if s != "" {
		res = append(res, OptSourceDriver(s))
	}
	s = c.Source.Host
	if s != "" {
		res = append(res, OptSourceHost(s))
	}
	i = c.Source.Port
	if i > 0 {
		res = append(res, OptSourcePort(i))
	}
	s = c.Source.User
	if s != "" {
		res = append(res, OptSourceUser(s))
	}
	s = c.Source.Password
	if s != "" {
		res = append(res, OptSourcePassword(s))
	}
	s = c.Source.Service
	if s != "" {
		res = append(res, OptSourceService(s))
	}
	s = c.Source.DSN
	if s != "" {
		res = append(res, OptSourceDSN(s))
	}
	s = c.Source.Schema
	if s != "" {
		res = append(res, OptSourceSchema(s))
	}
	s = c.Source.SSLMode
	if s != "" {
		res = append(res, OptSourceSSLMode(s))
	}

	s = c.Export.SchemaFile
	if s != "" {
		res = append(res, OptExportSchemaFile(s))
	}
	s = c.Export.IndexFile
	if s != "" {
		res = append(res, OptExportIndexFile(s))
	}
	i = c.Export.ResultTypeID
	if i > 0 {
		res = append(res, OptExportResultTypeID(i))
	}

	s = c.Publish.S3Bucket
	if s != "" {
		res = append(res, OptPublishS3Bucket(s))
	}
	s = c.Publish.S3Region
	if s != "" {
		res = append(res, OptPublishS3Region(s))
	}
	s = c.Publish.S3Endpoint
	if s != "" {
		res = append(res, OptPublishS3Endpoint(s))
	}
	s = c.Publish.S3Prefix
	if s != "" {
		res = append(res, OptPublishS3Prefix(s))
	}
	if c.Publish.S3PathStyle {
		res = append(res, OptPublishS3PathStyle(true))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Source.Driver": {"oracle": s, "postgres": s, "sqlite": s},
		"Source.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
