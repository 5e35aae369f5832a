// Package ioexport implements export.Exporter. It copies the records of
// a cohort from the warehouse into the export database, one record class
// at a time, and records the job that produced the file.
package ioexport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
	"github.com/mcw-ctsi/i2b2export/pkg/export"
	"github.com/mcw-ctsi/i2b2export/pkg/record"
)

// exporter implements export.Exporter.
type exporter struct {
	src     export.Source
	dst     export.Destination
	classes []record.Class
}

// New creates an Exporter reading from src and writing to dst.
func New(src export.Source, dst export.Destination) export.Exporter {
	return &exporter{src: src, dst: dst, classes: record.All()}
}

// Export prepares the destination, runs one pass per record class,
// writes the job and export run rows, builds indexes and moves the file
// to its final path. The first error stops the run.
func (e *exporter) Export(
	ctx context.Context,
	cohort *export.Cohort,
) (*export.Stats, error) {
	startTime := time.Now()
	// no-op after Finalize
	defer e.dst.Close()

	steps := len(e.classes) + 2
	slog.Info("Starting export",
		"query_name", cohort.QueryName,
		"patients", cohort.Size(),
		"path", e.dst.Path(),
	)

	if err := e.dst.Prepare(ctx); err != nil {
		return nil, err
	}

	res := &export.Stats{
		RunID:    uuid.New(),
		CohortID: cohort.Fingerprint(),
		Path:     e.dst.Path(),
		Patients: cohort.Size(),
	}

	for i, class := range e.classes {
		if err := ctx.Err(); err != nil {
			return nil, CancelledError(err)
		}
		gn.Info("(%d/%d) Exporting <em>%s</em>", i+1, steps, class.Name)

		ps, err := e.runPass(ctx, class, cohort)
		if err != nil {
			return nil, err
		}
		res.Passes = append(res.Passes, ps)
	}

	gn.Info("(%d/%d) Recording the job", steps-1, steps)
	if err := e.recordJob(ctx, cohort); err != nil {
		return nil, err
	}
	if err := e.recordRun(ctx, cohort, res.RunID, startTime); err != nil {
		return nil, err
	}

	gn.Info("(%d/%d) Creating indexes", steps, steps)
	if err := e.dst.CreateIndexes(ctx); err != nil {
		return nil, err
	}

	if err := e.dst.Finalize(); err != nil {
		return nil, err
	}

	res.Duration = time.Since(startTime)
	slog.Info("Export complete",
		"query_name", cohort.QueryName,
		"run_id", res.RunID.String(),
		"rows", res.TotalRows(),
		"duration", gnfmt.TimeString(res.Duration.Seconds()),
	)
	return res, nil
}

// runPass reads all warehouse rows of a class and inserts them in one
// destination transaction.
func (e *exporter) runPass(
	ctx context.Context,
	class record.Class,
	cohort *export.Cohort,
) (export.PassStats, error) {
	res := export.PassStats{Class: class.Name, Table: class.Table}
	passStart := time.Now()

	q, args := sourceQuery(e.src, class, cohort)
	slog.Debug("Reading warehouse", "class", class.Name, "query", q)

	rows, err := e.src.Query(ctx, q, args...)
	if err != nil {
		return res, err
	}

	if err = e.load(ctx, class, rows); err != nil {
		return res, err
	}

	res.Rows = len(rows)
	res.Duration = time.Since(passStart)
	slog.Info("Exported records",
		"class", class.Name,
		"table", class.Table,
		"rows", res.Rows,
		"duration", gnfmt.TimeString(res.Duration.Seconds()),
	)
	gn.Info("<em>%s</em> rows of %s", humanize.Comma(int64(res.Rows)),
		class.Table)
	return res, nil
}

func (e *exporter) load(
	ctx context.Context,
	class record.Class,
	rows [][]any,
) error {
	db := e.dst.DB()
	if db == nil {
		return PassError(class.Name, errors.New("export database is not open"))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return PassError(class.Name, err)
	}
	// no-op after Commit
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, class.InsertSQL())
	if err != nil {
		return PassError(class.Name, err)
	}
	defer stmt.Close()

	bar := pb.Full.Start(len(rows))
	bar.Set("prefix", fmt.Sprintf("Loading %s: ", class.Name))
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, destRow(row)...); err != nil {
			return PassError(class.Name, err)
		}
		bar.Increment()
	}

	if err = tx.Commit(); err != nil {
		return PassError(class.Name, err)
	}
	return nil
}

// DateTimeLayout is the text form of date and time values in the
// export database.
const DateTimeLayout = "2006-01-02 15:04:05"

// destRow converts warehouse values for the destination. Drivers return
// DATE and TIMESTAMP columns as time.Time; they are stored as text in
// DateTimeLayout, keeping the wall clock of the warehouse.
func destRow(row []any) []any {
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			row[i] = t.Format(DateTimeLayout)
		}
	}
	return row
}

// recordJob writes the single job row of the export. Label and concepts
// are left empty.
func (e *exporter) recordJob(
	ctx context.Context,
	cohort *export.Cohort,
) error {
	q := "INSERT INTO job (pset, label, concepts, name) VALUES (?, ?, ?, ?)"
	_, err := e.dst.DB().ExecContext(ctx, q,
		cohort.QueryMasterID, "", "", cohort.QueryName)
	if err != nil {
		return JobError("job", err)
	}
	slog.Info("Recorded job",
		"pset", cohort.QueryMasterID, "name", cohort.QueryName)
	return nil
}

// recordRun writes the export_run row. It is the last data written to
// the file.
func (e *exporter) recordRun(
	ctx context.Context,
	cohort *export.Cohort,
	runID uuid.UUID,
	startTime time.Time,
) error {
	q := `INSERT INTO export_run (
  run_id, cohort_id, query_name, query_master_id, result_instance_id,
  patient_count, started_at, completed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := e.dst.DB().ExecContext(ctx, q,
		runID.String(),
		cohort.Fingerprint().String(),
		cohort.QueryName,
		cohort.QueryMasterID,
		cohort.ResultInstanceID,
		cohort.Size(),
		startTime.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return JobError("export_run", err)
	}
	return nil
}
