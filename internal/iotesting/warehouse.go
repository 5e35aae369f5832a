// Package iotesting provides a small i2b2 warehouse in SQLite for tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcw-ctsi/i2b2export/pkg/record"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Stored queries of the test warehouse.
const (
	// CohortA resolves to query_master_id 100, query_instance_id 200,
	// result_instance_id 300 with patients 1, 2, 3.
	CohortA = "CohortA"
	// CohortB has two query masters with the same name.
	CohortB = "CohortB"
	// CohortC has a patient set result without patients.
	CohortC = "CohortC"
	// CohortD was run as a patient count only.
	CohortD = "CohortD"
	// CohortE resolves to patients 3 and 4.
	CohortE = "CohortE"
	// CohortF was saved but never run.
	CohortF = "CohortF"
)

// PatientSetType is the result_type_id of patient sets.
const PatientSetType = 1

var qtSchema = []string{
	`CREATE TABLE qt_query_master (
		query_master_id INTEGER PRIMARY KEY, name TEXT)`,
	`CREATE TABLE qt_query_instance (
		query_instance_id INTEGER PRIMARY KEY, query_master_id INTEGER)`,
	`CREATE TABLE qt_query_result_instance (
		result_instance_id INTEGER PRIMARY KEY,
		query_instance_id INTEGER, result_type_id INTEGER)`,
	`CREATE TABLE qt_patient_set_collection (
		patient_set_coll_id INTEGER PRIMARY KEY,
		result_instance_id INTEGER, patient_num INTEGER)`,
}

var qtData = []string{
	`INSERT INTO qt_query_master VALUES
		(100, 'CohortA'), (110, 'CohortB'), (111, 'CohortB'),
		(120, 'CohortC'), (130, 'CohortD'), (140, 'CohortE'),
		(150, 'CohortF')`,
	`INSERT INTO qt_query_instance VALUES
		(200, 100), (210, 110), (211, 111), (220, 120), (230, 130),
		(240, 140)`,
	`INSERT INTO qt_query_result_instance VALUES
		(300, 200, 1), (301, 200, 4), (310, 210, 1), (311, 211, 1),
		(320, 220, 1), (330, 230, 4), (340, 240, 1)`,
	`INSERT INTO qt_patient_set_collection
		(result_instance_id, patient_num) VALUES
		(300, 1), (300, 2), (300, 3), (300, 2),
		(310, 1), (311, 5),
		(340, 3), (340, 4)`,
}

// Patients of the warehouse, patient_num 1..5.
var Patients = []map[string]any{
	{"patient_num": 1, "sex_cd": "F", "birth_date": "1950-01-01 00:00:00"},
	{"patient_num": 2, "sex_cd": "M", "birth_date": "1961-02-03 00:00:00"},
	{"patient_num": 3, "sex_cd": "F", "age_in_years_num": 44},
	{"patient_num": 4, "sex_cd": "M", "patient_blob": []byte{0x1, 0x2}},
	{"patient_num": 5, "sex_cd": "U"},
}

// Visits of the warehouse.
var Visits = []map[string]any{
	{"encounter_num": 10, "patient_num": 1, "inout_cd": "I"},
	{"encounter_num": 11, "patient_num": 1, "inout_cd": "O"},
	{"encounter_num": 12, "patient_num": 2, "inout_cd": "O"},
	{"encounter_num": 13, "patient_num": 4, "inout_cd": "E"},
	{"encounter_num": 14, "patient_num": 5, "inout_cd": "I"},
}

// Observations of the warehouse. Patient 1 references C1 twice.
var Observations = []map[string]any{
	{"encounter_num": 10, "patient_num": 1, "concept_cd": "C1",
		"provider_id": "@", "start_date": "2020-01-01 00:00:00",
		"modifier_cd": "@", "instance_num": 1, "nval_num": 1.5},
	{"encounter_num": 10, "patient_num": 1, "concept_cd": "C2",
		"provider_id": "@", "start_date": "2020-01-01 00:00:00",
		"modifier_cd": "@", "instance_num": 1, "tval_char": "pos"},
	{"encounter_num": 11, "patient_num": 1, "concept_cd": "C1",
		"provider_id": "@", "start_date": "2020-02-01 00:00:00",
		"modifier_cd": "M1", "instance_num": 1},
	{"encounter_num": 12, "patient_num": 2, "concept_cd": "C3",
		"provider_id": "@", "start_date": "2020-03-01 00:00:00",
		"modifier_cd": "@", "instance_num": 1},
	{"encounter_num": 12, "patient_num": 3, "concept_cd": "C2",
		"provider_id": "@", "start_date": "2020-03-01 00:00:00",
		"modifier_cd": "@", "instance_num": 1},
	{"encounter_num": 13, "patient_num": 4, "concept_cd": "C4",
		"provider_id": "@", "start_date": "2020-04-01 00:00:00",
		"modifier_cd": "@", "instance_num": 1},
	{"encounter_num": 14, "patient_num": 5, "concept_cd": "C5",
		"provider_id": "@", "start_date": "2020-05-01 00:00:00",
		"modifier_cd": "@", "instance_num": 1},
}

// Concepts of the warehouse. C6 is never observed.
var Concepts = []map[string]any{
	{"concept_path": `\i2b2\Dx\C3\`, "concept_cd": "C3", "name_char": "three"},
	{"concept_path": `\i2b2\Dx\C1\`, "concept_cd": "C1", "name_char": "one"},
	{"concept_path": `\i2b2\Dx\C2\`, "concept_cd": "C2", "name_char": "two"},
	{"concept_path": `\i2b2\Dx\C4\`, "concept_cd": "C4", "name_char": "four"},
	{"concept_path": `\i2b2\Dx\C5\`, "concept_cd": "C5", "name_char": "five"},
	{"concept_path": `\i2b2\Dx\C6\`, "concept_cd": "C6", "name_char": "six"},
}

// Modifiers of the warehouse.
var Modifiers = []map[string]any{
	{"modifier_path": `\mod\b\`, "modifier_cd": "M2", "name_char": "Bee"},
	{"modifier_path": `\mod\a\`, "modifier_cd": "M1", "name_char": "Ay"},
	{"modifier_path": `\mod\c\`, "modifier_cd": "M3", "name_char": "Sea"},
}

// WarehousePath creates a populated warehouse file and returns its path.
func WarehousePath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warehouse.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("cannot open warehouse: %v", err)
	}
	defer db.Close()

	if err = seed(db); err != nil {
		t.Fatalf("cannot seed warehouse: %v", err)
	}
	return path
}

// Warehouse creates a populated warehouse and returns an open handle.
// The handle is closed when the test finishes.
func Warehouse(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", WarehousePath(t))
	if err != nil {
		t.Fatalf("cannot open warehouse: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(db *sql.DB) error {
	for _, q := range qtSchema {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	for _, q := range qtData {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}

	data := []struct {
		class record.Class
		rows  []map[string]any
	}{
		{record.Patient, Patients},
		{record.Visit, Visits},
		{record.Concept, Concepts},
		{record.Observation, Observations},
		{record.Modifier, Modifiers},
	}
	for _, d := range data {
		ddl := fmt.Sprintf("CREATE TABLE %s (%s)",
			d.class.Table, columnDefs(d.class))
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
		for _, r := range d.rows {
			if _, err := db.Exec(d.class.InsertSQL(), Row(d.class, r)...); err != nil {
				return err
			}
		}
	}
	return nil
}

// columnDefs declares *_date columns as DATETIME, like the date columns
// of a real warehouse. Other columns are untyped.
func columnDefs(class record.Class) string {
	defs := make([]string, len(class.Columns))
	for i, col := range class.Columns {
		defs[i] = col
		if strings.HasSuffix(col, "_date") {
			defs[i] += " DATETIME"
		}
	}
	return strings.Join(defs, ", ")
}

// Row lays out values in the column order of a class. Missing columns
// are NULL.
func Row(class record.Class, values map[string]any) []any {
	res := make([]any, len(class.Columns))
	for i, col := range class.Columns {
		res[i] = values[col]
	}
	return res
}
