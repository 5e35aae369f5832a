// Package config provides configuration management for i2b2export.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Source: driver, host, port, user, password, service, dsn, schema,
//     ssl_mode
//   - Export: schema_file, index_file, result_type_id
//   - Publish: s3_bucket, s3_region, s3_endpoint, s3_prefix, s3_path_style
//   - Log: level, format, destination
//
// Runtime-only fields (CLI flags only):
//   - Export.DryRun, Export.Upload (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use I2B2EXPORT_ prefix with underscores for nesting:
//
//	I2B2EXPORT_SOURCE_HOST=warehouse.example.org
//	I2B2EXPORT_SOURCE_PORT=1521
//	I2B2EXPORT_SOURCE_SCHEMA=I2B2DEMODATA
//	I2B2EXPORT_LOG_LEVEL=info
package config

// Config represents the complete i2b2export configuration.
type Config struct {
	// Source contains the i2b2 warehouse connection settings.
	Source SourceConfig `mapstructure:"source" yaml:"source"`

	// Export contains settings of the export itself.
	Export ExportConfig `mapstructure:"export" yaml:"export"`

	// Publish contains optional object storage settings for the
	// finished export file.
	Publish PublishConfig `mapstructure:"publish" yaml:"publish"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// HomeDir determines where config and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `mapstructure:"-" yaml:"-"`
}

// SourceConfig contains the warehouse connection parameters.
type SourceConfig struct {
	// Driver selects the database driver of the warehouse.
	// Valid values: "oracle", "postgres", "sqlite".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Host is the warehouse server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the warehouse server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the warehouse database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the warehouse database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Service is the Oracle service name, or the PostgreSQL database name.
	Service string `mapstructure:"service" yaml:"service"`

	// DSN overrides the connection string built from the fields above.
	// For the sqlite driver it is the path to the warehouse file.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// Schema is the i2b2 CRC data schema (for example I2B2DEMODATA).
	// When set, every warehouse table name is prefixed with it.
	Schema string `mapstructure:"schema" yaml:"schema"`

	// SSLMode specifies the SSL connection mode for PostgreSQL.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// ExportConfig contains settings of the export run.
type ExportConfig struct {
	// SchemaFile is a path to an SQL script that creates the destination
	// tables. Empty means the built-in i2b2 schema.
	SchemaFile string `mapstructure:"schema_file" yaml:"schema_file"`

	// IndexFile is a path to an SQL script that creates destination
	// indexes after the data load. Empty means the built-in indexes.
	IndexFile string `mapstructure:"index_file" yaml:"index_file"`

	// ResultTypeID is the QT_QUERY_RESULT_TYPE id of a patient set.
	// In a stock i2b2 installation it is 1.
	ResultTypeID int `mapstructure:"result_type_id" yaml:"result_type_id"`

	// DryRun resolves the cohort and reports it without creating
	// the destination file.
	DryRun bool `mapstructure:"-" yaml:"-"`

	// Upload publishes the finished file to object storage.
	Upload bool `mapstructure:"-" yaml:"-"`
}

// PublishConfig contains S3-compatible object storage settings.
type PublishConfig struct {
	// S3Bucket is the bucket receiving finished export files.
	S3Bucket string `mapstructure:"s3_bucket" yaml:"s3_bucket"`

	// S3Region of the bucket. Default is us-east-1.
	S3Region string `mapstructure:"s3_region" yaml:"s3_region"`

	// S3Endpoint is an optional custom endpoint (MinIO and similar).
	S3Endpoint string `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`

	// S3Prefix is prepended to the file name to form the object key.
	S3Prefix string `mapstructure:"s3_prefix" yaml:"s3_prefix"`

	// S3PathStyle enables path-style addressing.
	S3PathStyle bool `mapstructure:"s3_path_style" yaml:"s3_path_style"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Source: SourceConfig{
			Driver:  "oracle",
			Host:    "localhost",
			Port:    1521,
			User:    "i2b2demodata",
			Service: "XE",
			SSLMode: "disable",
		},
		Export: ExportConfig{
			ResultTypeID: 1,
		},
		Publish: PublishConfig{
			S3Region: "us-east-1",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// the log file is rewritten every run
			Destination: "file",
		},
	}

	return res
}
