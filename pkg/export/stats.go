package export

import (
	"time"

	"github.com/google/uuid"
)

// PassStats describes one finished extraction/load pass.
type PassStats struct {
	Class    string
	Table    string
	Rows     int
	Duration time.Duration
}

// Stats summarises an export run.
type Stats struct {
	RunID    uuid.UUID
	CohortID uuid.UUID
	Path     string
	Patients int
	Passes   []PassStats
	Duration time.Duration
}

// Rows returns the number of rows loaded into a table, or -1 if the
// table was not part of the run.
func (s *Stats) Rows(table string) int {
	for _, v := range s.Passes {
		if v.Table == table {
			return v.Rows
		}
	}
	return -1
}

// TotalRows returns the number of rows loaded by all passes.
func (s *Stats) TotalRows() int {
	var res int
	for _, v := range s.Passes {
		res += v.Rows
	}
	return res
}
