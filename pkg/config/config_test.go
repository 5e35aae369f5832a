package config_test

import (
	"path/filepath"
	"testing"

	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "i2b2export"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "i2b2export", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "i2b2export", "config.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()
	require.NotNil(t, cfg)

	// Source defaults
	assert.Equal(t, "oracle", cfg.Source.Driver)
	assert.Equal(t, "localhost", cfg.Source.Host)
	assert.Equal(t, 1521, cfg.Source.Port)
	assert.Equal(t, "i2b2demodata", cfg.Source.User)
	assert.Empty(t, cfg.Source.Password)
	assert.Equal(t, "XE", cfg.Source.Service)
	assert.Empty(t, cfg.Source.DSN)
	assert.Empty(t, cfg.Source.Schema)
	assert.Equal(t, "disable", cfg.Source.SSLMode)

	// Export defaults
	assert.Empty(t, cfg.Export.SchemaFile)
	assert.Empty(t, cfg.Export.IndexFile)
	assert.Equal(t, 1, cfg.Export.ResultTypeID)
	assert.False(t, cfg.Export.DryRun)
	assert.False(t, cfg.Export.Upload)

	// Publish defaults
	assert.Empty(t, cfg.Publish.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.Publish.S3Region)
	assert.False(t, cfg.Publish.S3PathStyle)

	// Log defaults
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Log.Destination)
}

func TestOptionSourceDriver(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets postgres", "postgres", "postgres"},
		{"sets sqlite", "sqlite", "sqlite"},
		{"normalizes case and spaces", "  SQLite ", "sqlite"},
		{"ignores unknown driver", "mysql", "oracle"},
		{"ignores empty", "", "oracle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptSourceDriver(tt.input)})
			assert.Equal(t, tt.expected, cfg.Source.Driver)
		})
	}
}

func TestOptionSourceHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets valid host", "crc.example.org", "crc.example.org"},
		{"trims whitespace", "  crc.example.org  ", "crc.example.org"},
		{"ignores empty string", "", "localhost"},
		{"ignores whitespace-only", "   ", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptSourceHost(tt.input)})
			assert.Equal(t, tt.expected, cfg.Source.Host)
		})
	}
}

func TestOptionIntegers(t *testing.T) {
	tests := []struct {
		name  string
		opt   func(int) config.Option
		input int
		get   func(*config.Config) int
		want  int
	}{
		{
			"port", config.OptSourcePort, 5432,
			func(c *config.Config) int { return c.Source.Port }, 5432,
		},
		{
			"port zero", config.OptSourcePort, 0,
			func(c *config.Config) int { return c.Source.Port }, 1521,
		},
		{
			"port negative", config.OptSourcePort, -1,
			func(c *config.Config) int { return c.Source.Port }, 1521,
		},
		{
			"result type", config.OptExportResultTypeID, 4,
			func(c *config.Config) int { return c.Export.ResultTypeID }, 4,
		},
		{
			"result type zero", config.OptExportResultTypeID, 0,
			func(c *config.Config) int { return c.Export.ResultTypeID }, 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt(tt.input)})
			assert.Equal(t, tt.want, tt.get(cfg))
		})
	}
}

func TestOptionSourceSSLMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets require", "require", "require"},
		{"sets verify-full", "verify-full", "verify-full"},
		{"normalizes to lowercase", "VERIFY-CA", "verify-ca"},
		{"ignores invalid value", "invalid", "disable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptSourceSSLMode(tt.input)})
			assert.Equal(t, tt.expected, cfg.Source.SSLMode)
		})
	}
}

func TestOptionLog(t *testing.T) {
	tests := []struct {
		name string
		opt  config.Option
		get  func(*config.Config) string
		want string
	}{
		{
			"level debug", config.OptLogLevel("DEBUG"),
			func(c *config.Config) string { return c.Log.Level }, "debug",
		},
		{
			"level invalid", config.OptLogLevel("verbose"),
			func(c *config.Config) string { return c.Log.Level }, "info",
		},
		{
			"format text", config.OptLogFormat("text"),
			func(c *config.Config) string { return c.Log.Format }, "text",
		},
		{
			"format invalid", config.OptLogFormat("xml"),
			func(c *config.Config) string { return c.Log.Format }, "json",
		},
		{
			"destination stderr", config.OptLogDestination("stderr"),
			func(c *config.Config) string { return c.Log.Destination }, "stderr",
		},
		{
			"destination invalid", config.OptLogDestination("syslog"),
			func(c *config.Config) string { return c.Log.Destination }, "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt})
			assert.Equal(t, tt.want, tt.get(cfg))
		})
	}
}

func TestRuntimeOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptExportDryRun(true),
		config.OptExportUpload(true),
		config.OptHomeDir("/home/i2b2"),
	})
	assert.True(t, cfg.Export.DryRun)
	assert.True(t, cfg.Export.Upload)
	assert.Equal(t, "/home/i2b2", cfg.HomeDir)

	cfg.Update([]config.Option{config.OptExportDryRun(false)})
	assert.False(t, cfg.Export.DryRun)
}

func TestMultipleOptions(t *testing.T) {
	t.Run("applies multiple options in order", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptSourceHost("crc.example.org"),
			config.OptSourcePort(1522),
			config.OptSourceUser("exporter"),
			config.OptLogLevel("debug"),
		})

		assert.Equal(t, "crc.example.org", cfg.Source.Host)
		assert.Equal(t, 1522, cfg.Source.Port)
		assert.Equal(t, "exporter", cfg.Source.User)
		assert.Equal(t, "debug", cfg.Log.Level)

		// Unchanged fields keep defaults
		assert.Equal(t, "XE", cfg.Source.Service)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("later options override earlier ones", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptSourceHost("first.example.org"),
			config.OptSourceHost("second.example.org"),
		})
		assert.Equal(t, "second.example.org", cfg.Source.Host)
	})
}

func TestToOptions(t *testing.T) {
	t.Run("round trips persistent fields", func(t *testing.T) {
		original := config.New()
		original.Update([]config.Option{
			config.OptSourceDriver("postgres"),
			config.OptSourceHost("crc.example.org"),
			config.OptSourcePort(5432),
			config.OptSourceUser("i2b2"),
			config.OptSourcePassword("secret"),
			config.OptSourceService("i2b2"),
			config.OptSourceDSN("postgres://i2b2@crc/i2b2"),
			config.OptSourceSchema("i2b2demodata"),
			config.OptSourceSSLMode("require"),
			config.OptExportSchemaFile("/etc/i2b2/schema.sql"),
			config.OptExportIndexFile("/etc/i2b2/indexes.sql"),
			config.OptExportResultTypeID(3),
			config.OptPublishS3Bucket("exports"),
			config.OptPublishS3Region("eu-west-1"),
			config.OptPublishS3Endpoint("http://minio:9000"),
			config.OptPublishS3Prefix("cohorts/"),
			config.OptPublishS3PathStyle(true),
			config.OptLogLevel("debug"),
			config.OptLogFormat("text"),
			config.OptLogDestination("stdout"),
		})

		newCfg := config.New()
		newCfg.Update(original.ToOptions())
		assert.Equal(t, original, newCfg)
	})

	t.Run("excludes runtime-only fields", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptHomeDir("/custom/home"),
			config.OptExportDryRun(true),
			config.OptExportUpload(true),
		})

		newCfg := config.New()
		newCfg.Update(cfg.ToOptions())

		assert.Empty(t, newCfg.HomeDir)
		assert.False(t, newCfg.Export.DryRun)
		assert.False(t, newCfg.Export.Upload)
	})
}
