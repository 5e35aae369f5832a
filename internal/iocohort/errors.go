package iocohort

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
)

// QueryNotFoundError is returned when no stored query has the name.
func QueryNotFoundError(queryName string) error {
	msg := `Could not find query <em>%s</em> in the database

The name has to match QT_QUERY_MASTER.NAME exactly,
including case and spaces.`

	return &gn.Error{
		Code: errcode.QueryNotFoundError,
		Msg:  msg,
		Vars: []any{queryName},
		Err:  fmt.Errorf("query %q not found", queryName),
	}
}

// AmbiguousQueryError is returned when several stored queries share
// the name.
func AmbiguousQueryError(queryName string, ids []int64) error {
	msg := `Found %d queries with the name <em>%s</em>

Rename the query in the i2b2 web client to make it unique.
<em>Matching query_master_id:</em> %v`

	return &gn.Error{
		Code: errcode.AmbiguousQueryError,
		Msg:  msg,
		Vars: []any{len(ids), queryName, ids},
		Err: fmt.Errorf("query %q is ambiguous: %d matches %v",
			queryName, len(ids), ids),
	}
}

// NoQueryInstanceError is returned when the query was never run.
func NoQueryInstanceError(queryName string, masterID int64) error {
	msg := `Query <em>%s</em> (query_master_id %d) was never run`

	return &gn.Error{
		Code: errcode.NoQueryInstanceError,
		Msg:  msg,
		Vars: []any{queryName, masterID},
		Err: fmt.Errorf("no query instance for query_master_id %d",
			masterID),
	}
}

// NoPatientSetError is returned when the query run did not produce
// a patient set, for example when only a patient count was requested.
func NoPatientSetError(queryName string, instanceID int64) error {
	msg := `Query <em>%s</em> has no patient set result

Rerun the query in the i2b2 web client with
<em>Patient set</em> selected as a result type.`

	return &gn.Error{
		Code: errcode.NoPatientSetError,
		Msg:  msg,
		Vars: []any{queryName},
		Err: fmt.Errorf("no patient set for query_instance_id %d",
			instanceID),
	}
}

// EmptyCohortError is returned when the patient set has no patients.
func EmptyCohortError(queryName string, resultID int64) error {
	msg := `No patient numbers found for query <em>%s</em>
(result_instance_id %d). Are you sure this is a patient set query?`

	return &gn.Error{
		Code: errcode.EmptyCohortError,
		Msg:  msg,
		Vars: []any{queryName, resultID},
		Err: fmt.Errorf("empty patient set for result_instance_id %d",
			resultID),
	}
}
