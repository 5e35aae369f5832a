package cmd

import (
	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/spf13/cobra"
)

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String(
		"config", "",
		"config file (default ~/.config/i2b2export/config.yaml)",
	)
	cmd.Flags().BoolP(
		"dry-run", "n", false,
		"resolve the cohort and report it without writing a file",
	)
	cmd.Flags().BoolP(
		"upload", "u", false,
		"upload the finished file to the configured S3 bucket",
	)
	cmd.Flags().String(
		"schema-file", "",
		"SQL script creating destination tables (default built-in)",
	)
	cmd.Flags().String(
		"index-file", "",
		"SQL script creating destination indexes (default built-in)",
	)
	cmd.Flags().Int(
		"result-type-id", 0,
		"QT_QUERY_RESULT_TYPE id of patient sets (default 1)",
	)
	cmd.Flags().Bool(
		"show-config", false,
		"print the effective configuration as YAML and exit",
	)
}

// flagOptions converts explicitly set flags to config options.
func flagOptions(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := cmd.Flags()

	if flags.Changed("dry-run") {
		b, _ := flags.GetBool("dry-run")
		res = append(res, config.OptExportDryRun(b))
	}
	if flags.Changed("upload") {
		b, _ := flags.GetBool("upload")
		res = append(res, config.OptExportUpload(b))
	}
	if flags.Changed("schema-file") {
		s, _ := flags.GetString("schema-file")
		res = append(res, config.OptExportSchemaFile(s))
	}
	if flags.Changed("index-file") {
		s, _ := flags.GetString("index-file")
		res = append(res, config.OptExportIndexFile(s))
	}
	if flags.Changed("result-type-id") {
		i, _ := flags.GetInt("result-type-id")
		res = append(res, config.OptExportResultTypeID(i))
	}
	return res
}
