package ioexport

import (
	"fmt"

	"github.com/mcw-ctsi/i2b2export/pkg/export"
	"github.com/mcw-ctsi/i2b2export/pkg/record"
)

// sourceQuery builds the warehouse SELECT of a record class. Cohort
// scoping goes through a subquery on the patient set collection, so the
// statement size does not depend on the number of patients.
func sourceQuery(
	src export.Source,
	class record.Class,
	cohort *export.Cohort,
) (string, []any) {
	var q string
	var args []any

	cohortSQL := fmt.Sprintf(
		"SELECT patient_num FROM %s WHERE result_instance_id = %s",
		src.Table("qt_patient_set_collection"),
		src.Bind("result_instance_id", 1),
	)

	switch class.Scope {
	case record.ScopeCohort:
		q = fmt.Sprintf(
			"SELECT %s FROM %s WHERE patient_num IN (%s)",
			class.SelectList(""), src.Table(class.Table), cohortSQL,
		)
		args = append(args, cohort.ResultInstanceID)
	case record.ScopeCohortConcepts:
		q = fmt.Sprintf(
			"SELECT %s FROM %s c WHERE c.concept_cd IN "+
				"(SELECT f.concept_cd FROM %s f WHERE f.patient_num IN (%s))",
			class.SelectList("c"),
			src.Table(class.Table),
			src.Table(record.Observation.Table),
			cohortSQL,
		)
		args = append(args, cohort.ResultInstanceID)
	default:
		q = fmt.Sprintf(
			"SELECT %s FROM %s",
			class.SelectList(""), src.Table(class.Table),
		)
	}

	if class.OrderBy != "" {
		q += " ORDER BY " + class.OrderBy
	}
	return q, args
}
