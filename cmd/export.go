package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/mcw-ctsi/i2b2export/internal/iocohort"
	"github.com/mcw-ctsi/i2b2export/internal/iodest"
	"github.com/mcw-ctsi/i2b2export/internal/ioexport"
	"github.com/mcw-ctsi/i2b2export/internal/iopublish"
	"github.com/mcw-ctsi/i2b2export/internal/iosource"
	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/mcw-ctsi/i2b2export/pkg/export"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func runExport(cmd *cobra.Command, args []string) error {
	cfg.Update(flagOptions(cmd))
	if show, _ := cmd.Flags().GetBool("show-config"); show {
		return showConfig(cmd.OutOrStdout(), cfg)
	}

	queryName, outPath := args[0], args[1]
	ctx := cmd.Context()

	if err := iodest.CheckScripts(cfg.Export); err != nil {
		return err
	}

	src, err := iosource.Open(ctx, &cfg.Source)
	if err != nil {
		return err
	}
	defer src.Close()
	gn.Info("Connected to the <em>%s</em> warehouse", cfg.Source.Driver)

	gn.Info("Resolving query <em>%s</em>", queryName)
	cohort, err := iocohort.New(src, cfg.Export.ResultTypeID).
		Resolve(ctx, queryName)
	if err != nil {
		return err
	}
	gn.Info("Found <em>%s</em> patients (query_master_id %d)",
		humanize.Comma(int64(cohort.Size())), cohort.QueryMasterID)

	if cfg.Export.DryRun {
		printCohort(cmd.OutOrStdout(), cohort)
		return nil
	}

	dst := iodest.New(outPath, cfg.Export)
	stats, err := ioexport.New(src, dst).Export(ctx, cohort)
	if err != nil {
		return err
	}
	printStats(stats)

	if !cfg.Export.Upload {
		return nil
	}
	pub, err := iopublish.New(ctx, cfg.Publish)
	if err != nil {
		return err
	}
	loc, err := pub.Publish(ctx, stats.Path)
	if err != nil {
		return err
	}
	gn.Info("Uploaded to <em>%s</em>", loc)
	return nil
}

func printCohort(w io.Writer, c *export.Cohort) {
	fmt.Fprintf(w, "query_name:         %s\n", c.QueryName)
	fmt.Fprintf(w, "query_master_id:    %d\n", c.QueryMasterID)
	fmt.Fprintf(w, "query_instance_id:  %d\n", c.QueryInstanceID)
	fmt.Fprintf(w, "result_instance_id: %d\n", c.ResultInstanceID)
	fmt.Fprintf(w, "patients:           %d\n", c.Size())
	fmt.Fprintf(w, "cohort_id:          %s\n", c.Fingerprint())
}

func printStats(s *export.Stats) {
	var size string
	if info, err := os.Stat(s.Path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	for _, v := range s.Passes {
		slog.Info("Pass summary", "table", v.Table, "rows", v.Rows)
	}
	gn.Info(`Export is complete!
File: <em>%s</em> (%s)
Patients: <em>%s</em>, rows: <em>%s</em>
Run ID: %s
Elapsed time: <em>%s</em>`,
		s.Path, size,
		humanize.Comma(int64(s.Patients)),
		humanize.Comma(int64(s.TotalRows())),
		s.RunID,
		gnfmt.TimeString(s.Duration.Seconds()),
	)
}

// showConfig writes the configuration as YAML. The password is masked.
func showConfig(w io.Writer, c *config.Config) error {
	res := *c
	if res.Source.Password != "" {
		res.Source.Password = "********"
	}
	bs, err := yaml.Marshal(&res)
	if err != nil {
		return err
	}
	_, err = w.Write(bs)
	return err
}
