package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// Command line errors
	UsageError

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	RemoveFileError

	// Logging errors
	CreateLogFileError

	// Source (warehouse) errors
	SourceConnectionError
	SourceDriverError
	SourceQueryError

	// Cohort resolution errors
	QueryNotFoundError
	AmbiguousQueryError
	NoQueryInstanceError
	NoPatientSetError
	EmptyCohortError

	// Destination errors
	DestCreateError
	DestScriptError
	DestPassError
	DestJobError
	DestFinalizeError

	// Export run errors
	ExportCancelledError

	// Record class errors
	InvalidRecordClassError

	// Publish errors
	PublishError
)
