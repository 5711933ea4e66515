// Package errcode enumerates error codes used by gn.Error values
// across the application.
package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Dataset registry errors
	DatasetsConfigError
	UnknownDatasetError

	// Species list errors
	SpeciesFileError
	SpeciesNoKeysError

	// Download errors
	CredentialsError
	SubmitDownloadError
	RateLimitError
	PollStatusError
	DownloadFailedError
	PollTimeoutError
	SaveArchiveError

	// Filter errors
	OpenArchiveError
	ArchiveMemberError
	ReadOccurrenceError
	WriteFilteredError
	WriteReportError

	// Summary errors
	SummaryInputError
	SummaryWriteError

	// Validation errors
	ValidationInputError
	AuditLogError

	// GeoPackage errors
	GpkgOpenError
	GpkgLayerError
	GpkgGeometryError
	GpkgWriteError

	// Site preparation errors
	SitesSourceError
	SitesNoCRSError
	SitesProjectionError

	// Spatial join errors
	JoinInputError
	JoinWriteError

	// Metrics errors
	MetricsInputError
	MetricsWriteError
)
