package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"marquee/internal/review"
)

// ErrMalformedRecord matches every MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes one skipped record. Index is the zero-based
// position inside a JSON array or the one-based line of a JSONL file; it is
// -1 when the whole file could not be read.
type MalformedRecordError struct {
	File     string
	Index    int
	RecordID string
	ShowID   string
	Cause    error
}

func (e *MalformedRecordError) Error() string {
	where := filepath.Base(e.File)
	if e.Index >= 0 {
		where += "[" + strconv.Itoa(e.Index) + "]"
	}
	if e.RecordID != "" {
		where += " (" + e.RecordID + ")"
	}
	return fmt.Sprintf("%s: %s: %v", ErrMalformedRecord, where, e.Cause)
}

func (e *MalformedRecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Cause}
}

// Flag converts the error into a MalformedRecord audit flag.
func (e *MalformedRecordError) Flag() review.Flag {
	f := review.Flag{
		Kind:        review.FlagMalformedRecord,
		Severity:    review.SeverityWarning,
		Explanation: e.Error(),
		Details: map[string]string{
			"file":  filepath.Base(e.File),
			"index": strconv.Itoa(e.Index),
		},
	}
	if e.ShowID != "" {
		f.ShowIDs = []string{e.ShowID}
	}
	if e.RecordID != "" {
		f.Records = []string{e.RecordID}
	}
	return f
}
