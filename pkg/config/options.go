package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptSourceDriver sets the warehouse database driver.
// Valid values: "oracle", "postgres", "sqlite".
func OptSourceDriver(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Source.Driver", s) {
			c.Source.Driver = s
		}
	}
}

// OptSourceHost sets the warehouse hostname or IP address.
func OptSourceHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Host", s) {
			c.Source.Host = s
		}
	}
}

// OptSourcePort sets the warehouse port number.
func OptSourcePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Source Port", i) {
			c.Source.Port = i
		}
	}
}

// OptSourceUser sets the warehouse username.
func OptSourceUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source User", s) {
			c.Source.User = s
		}
	}
}

// OptSourcePassword sets the warehouse password.
func OptSourcePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Password", s) {
			c.Source.Password = s
		}
	}
}

// OptSourceService sets the Oracle service name (or PostgreSQL database).
func OptSourceService(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Service", s) {
			c.Source.Service = s
		}
	}
}

// OptSourceDSN sets a complete connection string, overriding the
// individual connection fields.
func OptSourceDSN(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source DSN", s) {
			c.Source.DSN = s
		}
	}
}

// OptSourceSchema sets the CRC data schema used to qualify table names.
func OptSourceSchema(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Schema", s) {
			c.Source.Schema = s
		}
	}
}

// OptSourceSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptSourceSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Source.SSLMode", s) {
			c.Source.SSLMode = s
		}
	}
}

// OptExportSchemaFile sets the path of the destination schema script.
func OptExportSchemaFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Schema File", s) {
			c.Export.SchemaFile = s
		}
	}
}

// OptExportIndexFile sets the path of the destination index script.
func OptExportIndexFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Index File", s) {
			c.Export.IndexFile = s
		}
	}
}

// OptExportResultTypeID sets the result type id of patient sets.
func OptExportResultTypeID(i int) Option {
	return func(c *Config) {
		if isValidInt("Result Type ID", i) {
			c.Export.ResultTypeID = i
		}
	}
}

// OptExportDryRun makes the export stop after cohort resolution.
// Runtime-only field - not in ToOptions().
func OptExportDryRun(b bool) Option {
	return func(c *Config) {
		c.Export.DryRun = b
	}
}

// OptExportUpload enables publishing of the finished file.
// Runtime-only field - not in ToOptions().
func OptExportUpload(b bool) Option {
	return func(c *Config) {
		c.Export.Upload = b
	}
}

// OptPublishS3Bucket sets the bucket for finished export files.
func OptPublishS3Bucket(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Bucket", s) {
			c.Publish.S3Bucket = s
		}
	}
}

// OptPublishS3Region sets the region of the bucket.
func OptPublishS3Region(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Region", s) {
			c.Publish.S3Region = s
		}
	}
}

// OptPublishS3Endpoint sets a custom S3 endpoint.
func OptPublishS3Endpoint(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Endpoint", s) {
			c.Publish.S3Endpoint = s
		}
	}
}

// OptPublishS3Prefix sets the object key prefix.
func OptPublishS3Prefix(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Prefix", s) {
			c.Publish.S3Prefix = s
		}
	}
}

// OptPublishS3PathStyle toggles path-style bucket addressing.
func OptPublishS3PathStyle(b bool) Option {
	return func(c *Config) {
		c.Publish.S3PathStyle = b
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptHomeDir sets the home directory for config and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
