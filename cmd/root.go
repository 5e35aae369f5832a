package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/internal/iofs"
	"github.com/mcw-ctsi/i2b2export/internal/iologger"
	app "github.com/mcw-ctsi/i2b2export/pkg"
	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes of the application.
const (
	ExitOK    = 0
	ExitError = 1
	// ExitUsage is returned for wrong arguments or flags.
	ExitUsage = 2
)

var (
	homeDir string
	cfg     *config.Config
)

// getRootCmd returns a new root command. Each call creates an
// independent instance, so tests can execute it repeatedly.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "i2b2export [flags] <query-name> <output-file>",
		Short:   "i2b2export copies an i2b2 patient set into a SQLite file",
		Long: `i2b2export finds a stored i2b2 query by its exact name, takes the
patient set of its last run and copies the records of these patients
from the warehouse into a new SQLite file:

  - patient_dimension, visit_dimension and observation_fact rows of
    the cohort
  - concept_dimension rows referenced by the cohort's observations
  - the whole modifier_dimension
  - a job row and an export_run row describing the export

An existing output file is replaced. The file is built next to the
output path with a .partial suffix and renamed when complete.

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (I2B2EXPORT_*)
  3. Config file (~/.config/i2b2export/config.yaml)
  4. Built-in defaults

Examples:
  i2b2export "Diabetes cohort" diabetes.db
  i2b2export --dry-run "Diabetes cohort" diabetes.db
  I2B2EXPORT_SOURCE_PASSWORD=secret i2b2export -u CohortA cohortA.db`,
		Args:              exportArgs,
		PersistentPreRunE: bootstrap,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runExport(cmd, args)
			if err != nil {
				slog.Error("Export failed", "error", err)
				gn.PrintErrorMessage(err)
			}
			return err
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "i2b2export version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return UsageError(c, err.Error())
	})

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for i2b2export")
	addExportFlags(rootCmd)

	return rootCmd
}

// exportArgs requires exactly a query name and an output path, or no
// arguments with --show-config.
func exportArgs(cmd *cobra.Command, args []string) error {
	if show, _ := cmd.Flags().GetBool("show-config"); show {
		if len(args) != 0 {
			msg := fmt.Sprintf("--show-config takes no arguments, got %d",
				len(args))
			return UsageError(cmd, msg)
		}
		return nil
	}
	if len(args) != 2 {
		msg := fmt.Sprintf("expected 2 arguments, got %d", len(args))
		return UsageError(cmd, msg)
	}
	if strings.TrimSpace(args[0]) == "" || strings.TrimSpace(args[1]) == "" {
		return UsageError(cmd, "query name and output file cannot be empty")
	}
	return nil
}

func bootstrap(cmd *cobra.Command, _ []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfgPath := config.ConfigFilePath(homeDir)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfgPath = path
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(cfgPath); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgViper.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings
	if err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded", "config_file", cfgPath)
	return nil
}

// Execute runs the root command and exits with ExitUsage for usage
// errors and ExitError for any other failure. SIGINT and SIGTERM
// cancel the export.
func Execute() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	err := getRootCmd().ExecuteContext(ctx)
	stop()

	code := ExitCode(err)
	if code == ExitUsage {
		gn.PrintErrorMessage(err)
	}
	os.Exit(code)
}

// ExitCode maps an error returned by the root command to a process
// exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var gnErr *gn.Error
	if errors.As(err, &gnErr) && gnErr.Code == errcode.UsageError {
		return ExitUsage
	}
	return ExitError
}

func initConfig(cfgPath string) (*config.Config, error) {
	var err error
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions().
	v.SetEnvPrefix("I2B2EXPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Warehouse configuration
	v.BindEnv("source.driver", "I2B2EXPORT_SOURCE_DRIVER")
	v.BindEnv("source.host", "I2B2EXPORT_SOURCE_HOST")
	v.BindEnv("source.port", "I2B2EXPORT_SOURCE_PORT")
	v.BindEnv("source.user", "I2B2EXPORT_SOURCE_USER")
	v.BindEnv("source.password", "I2B2EXPORT_SOURCE_PASSWORD")
	v.BindEnv("source.service", "I2B2EXPORT_SOURCE_SERVICE")
	v.BindEnv("source.dsn", "I2B2EXPORT_SOURCE_DSN")
	v.BindEnv("source.schema", "I2B2EXPORT_SOURCE_SCHEMA")
	v.BindEnv("source.ssl_mode", "I2B2EXPORT_SOURCE_SSL_MODE")

	// Export configuration
	v.BindEnv("export.schema_file", "I2B2EXPORT_EXPORT_SCHEMA_FILE")
	v.BindEnv("export.index_file", "I2B2EXPORT_EXPORT_INDEX_FILE")
	v.BindEnv("export.result_type_id", "I2B2EXPORT_EXPORT_RESULT_TYPE_ID")

	// Publish configuration
	v.BindEnv("publish.s3_bucket", "I2B2EXPORT_PUBLISH_S3_BUCKET")
	v.BindEnv("publish.s3_region", "I2B2EXPORT_PUBLISH_S3_REGION")
	v.BindEnv("publish.s3_endpoint", "I2B2EXPORT_PUBLISH_S3_ENDPOINT")
	v.BindEnv("publish.s3_prefix", "I2B2EXPORT_PUBLISH_S3_PREFIX")
	v.BindEnv("publish.s3_path_style", "I2B2EXPORT_PUBLISH_S3_PATH_STYLE")

	// Log configuration
	v.BindEnv("log.level", "I2B2EXPORT_LOG_LEVEL")
	v.BindEnv("log.format", "I2B2EXPORT_LOG_FORMAT")
	v.BindEnv("log.destination", "I2B2EXPORT_LOG_DESTINATION")

	v.AutomaticEnv()
}
