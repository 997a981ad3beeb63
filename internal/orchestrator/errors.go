package orchestrator

import "fmt"

// SortErrorKind classifies a sort pass error.
type SortErrorKind string

const (
	// InvalidRoot means the sort root is missing or not a directory. Fatal, nothing moved.
	InvalidRoot SortErrorKind = "INVALID_ROOT"
	// PolicyFailure means pre-existing folder handling failed. Fatal, no file touched.
	PolicyFailure SortErrorKind = "POLICY_FAILURE"
	// ScanFailure means the root could not be enumerated after folder handling.
	// Fatal; archived folders may already have moved and are kept in the history.
	ScanFailure SortErrorKind = "SCAN_FAILURE"
	// PerFileMoveFailure means one file could not be moved. The pass continues.
	PerFileMoveFailure SortErrorKind = "PER_FILE_MOVE_FAILURE"
	// MetadataUnavailable means one file could not be classified. The pass continues.
	MetadataUnavailable SortErrorKind = "METADATA_UNAVAILABLE"
)

// SortError is an error raised during a sort pass.
type SortError struct {
	Kind SortErrorKind
	Path string
	Err  error
}

func (e *SortError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *SortError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error aborted the pass.
func (e *SortError) Fatal() bool {
	return e.Kind == InvalidRoot || e.Kind == PolicyFailure || e.Kind == ScanFailure
}
