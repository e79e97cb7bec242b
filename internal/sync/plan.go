package sync

import (
	"sort"
)

type OpType string

const (
	OpUpload      OpType = "Upload"
	OpReplace     OpType = "Replace"
	OpDelete      OpType = "Delete"
	OpSkip        OpType = "Skip"
	OpFingerprint OpType = "Fingerprint" // error attribution only
	OpScan        OpType = "Scan"        // error attribution only
	OpList        OpType = "List"        // error attribution only
)

// Operation is one decided action for a single relative path.
type Operation struct {
	Type        OpType
	RelPath     string
	Local       *LocalFile   // nil for Delete
	Tracked     *TrackedFile // nil for a fresh Upload
	OldRemoteID string       // set for Replace and Delete
	ContentHash string       // computed during planning, carried to commit
	Refresh     bool         // Skip whose stored record must be refreshed
}

// Plan is the decided operation set for one mapping: exactly one entry per
// relative path known to either the local scan or the tracking state, except
// paths whose fingerprint failed, which sit in Failed.
type Plan struct {
	Uploads  map[string]*Operation
	Replaces map[string]*Operation
	Deletes  map[string]*Operation
	Skips    map[string]*Operation
	Failed   map[string]error
}

func NewPlan() *Plan {
	return &Plan{
		Uploads:  make(map[string]*Operation),
		Replaces: make(map[string]*Operation),
		Deletes:  make(map[string]*Operation),
		Skips:    make(map[string]*Operation),
		Failed:   make(map[string]error),
	}
}

// HasChanges returns true if executing the plan would touch the remote side
// or the tracking state.
func (p *Plan) HasChanges() bool {
	if len(p.Uploads) > 0 || len(p.Replaces) > 0 || len(p.Deletes) > 0 {
		return true
	}
	for _, op := range p.Skips {
		if op.Refresh {
			return true
		}
	}
	return false
}

// sortedPaths returns the keys of an operation batch in lexical order so
// execution and logs are reproducible.
func sortedPaths[V any](m map[string]V) []string {
	paths := make([]string, 0, len(m))
	for path := range m {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
