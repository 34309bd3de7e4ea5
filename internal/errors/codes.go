package errors

// Category groups errors by the subsystem that raised them.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryScan    Category = "scan"
	CategoryExtract Category = "extract"
	CategoryIndex   Category = "index"
	CategoryGraph   Category = "graph"
	CategoryScore   Category = "score"
)

// Severity indicates how an error should be handled by callers.
type Severity string

const (
	// SeverityWarning errors degrade gracefully: the operation continues
	// and the error is collected into the warnings list.
	SeverityWarning Severity = "warning"
	// SeverityFatal errors abort the operation and surface to the caller.
	SeverityFatal Severity = "fatal"
)

// Error codes. Only ERR_CONFIG_INVALID and ERR_INDEX_CORRUPT are fatal;
// everything else is a recoverable warning.
const (
	// ErrCodeConfigInvalid indicates a malformed budget, query, or config file.
	// Surfaced before any work begins.
	ErrCodeConfigInvalid = "ERR_CONFIG_INVALID"

	// ErrCodeFileIO indicates an unreadable or vanished file during scanning.
	// The file is skipped and the scan continues.
	ErrCodeFileIO = "ERR_FILE_IO"

	// ErrCodeExtraction indicates a chunker failure for one file.
	// The fallback chunker is used instead.
	ErrCodeExtraction = "ERR_CHUNK_EXTRACT"

	// ErrCodeIndexCorrupt indicates a checksum mismatch when loading the
	// persisted index. Triggers a full rebuild, never a partial load.
	ErrCodeIndexCorrupt = "ERR_INDEX_CORRUPT"

	// ErrCodeGraphAmbiguous indicates an import reference that could not be
	// uniquely resolved. The reference is dropped, not guessed.
	ErrCodeGraphAmbiguous = "ERR_GRAPH_AMBIGUOUS"
)

// categoryFromCode maps an error code to its category.
func categoryFromCode(code string) Category {
	switch code {
	case ErrCodeConfigInvalid:
		return CategoryConfig
	case ErrCodeFileIO:
		return CategoryScan
	case ErrCodeExtraction:
		return CategoryExtract
	case ErrCodeIndexCorrupt:
		return CategoryIndex
	case ErrCodeGraphAmbiguous:
		return CategoryGraph
	default:
		return CategoryScore
	}
}

// severityFromCode maps an error code to its severity.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConfigInvalid, ErrCodeIndexCorrupt:
		return SeverityFatal
	default:
		return SeverityWarning
	}
}
