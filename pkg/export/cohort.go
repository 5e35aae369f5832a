package export

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
)

// Cohort is a resolved patient-set query.
type Cohort struct {
	// QueryName is the name of the stored query.
	QueryName string
	// QueryMasterID identifies the stored query definition.
	QueryMasterID int64
	// QueryInstanceID identifies one run of the query.
	QueryInstanceID int64
	// ResultInstanceID identifies the patient-set result of the run.
	ResultInstanceID int64
	// PatientNums are distinct patient numbers in ascending order.
	PatientNums []int64
}

// NewCohort creates a cohort, sorting and deduplicating patient numbers.
func NewCohort(
	queryName string,
	masterID, instanceID, resultID int64,
	patientNums []int64,
) *Cohort {
	nums := slices.Clone(patientNums)
	slices.Sort(nums)
	nums = slices.Compact(nums)
	return &Cohort{
		QueryName:        queryName,
		QueryMasterID:    masterID,
		QueryInstanceID:  instanceID,
		ResultInstanceID: resultID,
		PatientNums:      nums,
	}
}

// Size returns the number of patients.
func (c *Cohort) Size() int {
	return len(c.PatientNums)
}

// Contains reports whether a patient belongs to the cohort.
func (c *Cohort) Contains(patientNum int64) bool {
	_, ok := slices.BinarySearch(c.PatientNums, patientNum)
	return ok
}

// Fingerprint is a UUID v5 derived from the query name and the patient
// numbers. Two exports of the same cohort get the same fingerprint.
func (c *Cohort) Fingerprint() uuid.UUID {
	var sb strings.Builder
	sb.WriteString(c.QueryName)
	for _, v := range c.PatientNums {
		sb.WriteByte('|')
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return gnuuid.New(sb.String())
}
