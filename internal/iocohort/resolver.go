// Package iocohort implements export.Resolver against the i2b2 CRC
// query tables.
package iocohort

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcw-ctsi/i2b2export/pkg/export"
)

// resolver implements export.Resolver.
type resolver struct {
	src          export.Source
	resultTypeID int
}

// New creates a Resolver. resultTypeID is the QT_QUERY_RESULT_TYPE id
// of patient sets.
func New(src export.Source, resultTypeID int) export.Resolver {
	return &resolver{src: src, resultTypeID: resultTypeID}
}

// Resolve follows the chain query name -> query master -> query
// instance -> patient-set result -> patient numbers.
func (r *resolver) Resolve(
	ctx context.Context,
	queryName string,
) (*export.Cohort, error) {
	masterID, err := r.queryMasterID(ctx, queryName)
	if err != nil {
		return nil, err
	}
	slog.Info("Resolved query master",
		"query_name", queryName, "query_master_id", masterID)

	instanceID, err := r.queryInstanceID(ctx, queryName, masterID)
	if err != nil {
		return nil, err
	}
	slog.Info("Resolved query instance",
		"query_master_id", masterID, "query_instance_id", instanceID)

	resultID, err := r.resultInstanceID(ctx, queryName, instanceID)
	if err != nil {
		return nil, err
	}
	slog.Info("Resolved patient set",
		"query_instance_id", instanceID, "result_instance_id", resultID)

	nums, err := r.patientNums(ctx, queryName, resultID)
	if err != nil {
		return nil, err
	}
	for _, v := range nums {
		slog.Debug("Found patient", "patient_num", v)
	}

	res := export.NewCohort(queryName, masterID, instanceID, resultID, nums)
	slog.Info("Resolved cohort",
		"query_name", queryName,
		"patients", res.Size(),
		"cohort_id", res.Fingerprint().String(),
	)
	return res, nil
}

func (r *resolver) queryMasterID(
	ctx context.Context,
	queryName string,
) (int64, error) {
	q := fmt.Sprintf(
		"SELECT query_master_id FROM %s WHERE name = %s",
		r.src.Table("qt_query_master"), r.src.Bind("query_name", 1),
	)
	ids, err := r.src.Int64s(ctx, q, queryName)
	if err != nil {
		return 0, err
	}

	switch len(ids) {
	case 0:
		slog.Error("Could not find query in the database",
			"query_name", queryName)
		return 0, QueryNotFoundError(queryName)
	case 1:
		return ids[0], nil
	default:
		slog.Error("Found more than one query with this name",
			"query_name", queryName, "matches", len(ids))
		return 0, AmbiguousQueryError(queryName, ids)
	}
}

// queryInstanceID takes the first instance of the query. A query master
// normally has exactly one instance.
func (r *resolver) queryInstanceID(
	ctx context.Context,
	queryName string,
	masterID int64,
) (int64, error) {
	q := fmt.Sprintf(
		"SELECT query_instance_id FROM %s WHERE query_master_id = %s "+
			"ORDER BY query_instance_id",
		r.src.Table("qt_query_instance"), r.src.Bind("query_master_id", 1),
	)
	ids, err := r.src.Int64s(ctx, q, masterID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		slog.Error("Query has no instances",
			"query_name", queryName, "query_master_id", masterID)
		return 0, NoQueryInstanceError(queryName, masterID)
	}
	if len(ids) > 1 {
		slog.Warn("Query has several instances, using the first one",
			"query_master_id", masterID, "instances", len(ids))
	}
	return ids[0], nil
}

func (r *resolver) resultInstanceID(
	ctx context.Context,
	queryName string,
	instanceID int64,
) (int64, error) {
	q := fmt.Sprintf(
		"SELECT result_instance_id FROM %s "+
			"WHERE query_instance_id = %s AND result_type_id = %s "+
			"ORDER BY result_instance_id",
		r.src.Table("qt_query_result_instance"),
		r.src.Bind("query_instance_id", 1),
		r.src.Bind("result_type_id", 2),
	)
	ids, err := r.src.Int64s(ctx, q, instanceID, r.resultTypeID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		slog.Error("Query has no patient set result",
			"query_name", queryName, "query_instance_id", instanceID)
		return 0, NoPatientSetError(queryName, instanceID)
	}
	return ids[0], nil
}

func (r *resolver) patientNums(
	ctx context.Context,
	queryName string,
	resultID int64,
) ([]int64, error) {
	q := fmt.Sprintf(
		"SELECT DISTINCT patient_num FROM %s "+
			"WHERE result_instance_id = %s ORDER BY patient_num",
		r.src.Table("qt_patient_set_collection"),
		r.src.Bind("result_instance_id", 1),
	)
	nums, err := r.src.Int64s(ctx, q, resultID)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		slog.Error("No patient numbers found for query",
			"query_name", queryName, "result_instance_id", resultID)
		return nil, EmptyCohortError(queryName, resultID)
	}
	return nums, nil
}
