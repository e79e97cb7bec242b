package sync

import (
	"fmt"
)

// OpError attributes one failed operation to a specific path.
type OpError struct {
	Path string
	Op   OpType
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// SyncResult is the outcome of one mapping.
type SyncResult struct {
	LocalDir string
	FolderID string

	Uploaded int
	Replaced int
	Deleted  int
	Skipped  int

	// Errors holds per-entry failures that did not abort the mapping.
	Errors []*OpError

	// Err is set when the mapping as a whole was aborted (scan or remote
	// listing failure, or a failed state save).
	Err error
}

func (r *SyncResult) ErrorCount() int {
	n := len(r.Errors)
	if r.Err != nil {
		n++
	}
	return n
}

// Totals aggregates results across mappings.
func Totals(results []*SyncResult) (uploaded, replaced, deleted, skipped, errors int) {
	for _, r := range results {
		uploaded += r.Uploaded
		replaced += r.Replaced
		deleted += r.Deleted
		skipped += r.Skipped
		errors += r.ErrorCount()
	}
	return
}
