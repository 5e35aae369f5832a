// Package record defines the i2b2 record classes copied by an export.
//
// Every class carries one ordered column list. The warehouse SELECT and
// the destination INSERT are both generated from that list, so the Nth
// selected value always lands in the Nth inserted column.
package record

import (
	"fmt"
	"strings"
)

// Scope tells which warehouse rows of a class belong to a cohort.
type Scope int

const (
	// ScopeCohort selects rows whose patient_num is in the cohort.
	ScopeCohort Scope = iota
	// ScopeCohortConcepts selects concepts referenced by observations
	// of cohort patients.
	ScopeCohortConcepts
	// ScopeAll selects the whole table regardless of the cohort.
	ScopeAll
)

// String returns a short human readable form of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeCohort:
		return "cohort"
	case ScopeCohortConcepts:
		return "cohort concepts"
	case ScopeAll:
		return "all"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Class describes one exported record type.
type Class struct {
	// Name is used in logs and progress output.
	Name string
	// Table is the table name, identical in the warehouse and in the
	// destination.
	Table string
	// Columns is the ordered column list shared by SELECT and INSERT.
	Columns []string
	// Scope limits the warehouse rows to the cohort.
	Scope Scope
	// OrderBy is an optional column the warehouse rows are sorted by.
	OrderBy string
}

// Validate checks that the class can produce consistent statements.
func (c Class) Validate() error {
	if c.Name == "" || c.Table == "" {
		return InvalidClassError(c.Table, "empty name or table")
	}
	if len(c.Columns) == 0 {
		return InvalidClassError(c.Table, "no columns")
	}
	seen := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		if col == "" {
			return InvalidClassError(c.Table, "empty column name")
		}
		col = strings.ToLower(col)
		if _, ok := seen[col]; ok {
			return InvalidClassError(c.Table,
				fmt.Sprintf("duplicate column %s", col))
		}
		seen[col] = struct{}{}
	}
	if c.OrderBy != "" {
		if _, ok := seen[strings.ToLower(c.OrderBy)]; !ok {
			return InvalidClassError(c.Table,
				fmt.Sprintf("order column %s is not selected", c.OrderBy))
		}
	}
	return nil
}

// SelectList returns the comma separated column list, optionally
// qualified with a table alias.
func (c Class) SelectList(alias string) string {
	cols := make([]string, len(c.Columns))
	for i, v := range c.Columns {
		if alias != "" {
			v = alias + "." + v
		}
		cols[i] = v
	}
	return strings.Join(cols, ", ")
}

// InsertSQL returns a positional INSERT statement for the destination.
func (c Class) InsertSQL() string {
	marks := strings.Repeat("?, ", len(c.Columns))
	marks = strings.TrimSuffix(marks, ", ")
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		c.Table, c.SelectList(""), marks,
	)
}

var (
	Patient = Class{
		Name:  "patients",
		Table: "patient_dimension",
		Columns: []string{
			"patient_num",
			"vital_status_cd",
			"birth_date",
			"death_date",
			"sex_cd",
			"age_in_years_num",
			"language_cd",
			"race_cd",
			"marital_status_cd",
			"religion_cd",
			"zip_cd",
			"statecityzip_path",
			"income_cd",
			"patient_blob",
			"update_date",
			"download_date",
			"import_date",
			"sourcesystem_cd",
			"upload_id",
		},
		Scope: ScopeCohort,
	}

	Visit = Class{
		Name:  "visits",
		Table: "visit_dimension",
		Columns: []string{
			"encounter_num",
			"patient_num",
			"active_status_cd",
			"start_date",
			"end_date",
			"inout_cd",
			"location_cd",
			"location_path",
			"length_of_stay",
			"visit_blob",
			"update_date",
			"download_date",
			"import_date",
			"sourcesystem_cd",
			"upload_id",
		},
		Scope: ScopeCohort,
	}

	Concept = Class{
		Name:  "concepts",
		Table: "concept_dimension",
		Columns: []string{
			"concept_path",
			"concept_cd",
			"name_char",
			"concept_blob",
			"update_date",
			"download_date",
			"import_date",
			"sourcesystem_cd",
			"upload_id",
		},
		Scope:   ScopeCohortConcepts,
		OrderBy: "concept_cd",
	}

	Observation = Class{
		Name:  "observation facts",
		Table: "observation_fact",
		Columns: []string{
			"encounter_num",
			"patient_num",
			"concept_cd",
			"provider_id",
			"start_date",
			"modifier_cd",
			"instance_num",
			"valtype_cd",
			"tval_char",
			"nval_num",
			"valueflag_cd",
			"quantity_num",
			"units_cd",
			"end_date",
			"location_cd",
			"observation_blob",
			"confidence_num",
			"update_date",
			"download_date",
			"import_date",
			"sourcesystem_cd",
			"upload_id",
		},
		Scope: ScopeCohort,
	}

	// Modifiers are vocabulary, not patient data, so the table is
	// exported in full.
	Modifier = Class{
		Name:  "modifiers",
		Table: "modifier_dimension",
		Columns: []string{
			"modifier_path",
			"modifier_cd",
			"name_char",
		},
		Scope:   ScopeAll,
		OrderBy: "modifier_path",
	}
)

// All returns the record classes in export order. Patient-scoped classes
// come first, the unscoped modifier table comes last.
func All() []Class {
	return []Class{Patient, Visit, Concept, Observation, Modifier}
}

func init() {
	for _, v := range All() {
		if err := v.Validate(); err != nil {
			panic(err)
		}
	}
}
