package sync

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Reconciler computes the operation plan for one mapping. It mutates nothing:
// no network calls, no tracking-store writes. The only I/O it may do is read
// file contents through its Hasher, and only when the cheap fingerprint
// cannot decide.
type Reconciler struct {
	hasher Hasher
}

func NewReconciler(hasher Hasher) *Reconciler {
	return &Reconciler{hasher: hasher}
}

// Plan classifies every path known to either the local scan or the tracking
// records into exactly one of Upload, Replace, Delete or Skip.
//
// The remote listing is consulted defensively: a tracked record whose remote
// id is not actually present remotely means a prior run was interrupted after
// committing state, so the path is treated as untracked and force-uploaded.
// That rule wins over Replace, state safety over efficiency.
func (r *Reconciler) Plan(scan *ScanResult, tracked map[string]*TrackedFile, remote []RemoteObject) *Plan {
	remoteIDs := mapset.NewThreadUnsafeSet[string]()
	for _, obj := range remote {
		remoteIDs.Add(obj.ID)
	}

	plan := NewPlan()
	for path, err := range scan.Failed {
		plan.Failed[path] = err
	}

	allPaths := make(map[string]struct{}, len(scan.Files)+len(tracked))
	for path := range scan.Files {
		allPaths[path] = struct{}{}
	}
	for path := range tracked {
		allPaths[path] = struct{}{}
	}

	for path := range allPaths {
		if _, failed := plan.Failed[path]; failed {
			// unreadable this run, neither added nor deleted
			continue
		}

		local, localExists := scan.Files[path]
		rec, trackedExists := tracked[path]

		switch {
		case localExists && !trackedExists:
			plan.Uploads[path] = &Operation{Type: OpUpload, RelPath: path, Local: local}

		case !localExists && trackedExists:
			plan.Deletes[path] = &Operation{Type: OpDelete, RelPath: path, Tracked: rec, OldRemoteID: rec.RemoteID}

		default:
			r.planTrackedLocal(plan, path, local, rec, remoteIDs)
		}
	}

	return plan
}

// planTrackedLocal decides the operation for a path present both locally and
// in the tracking records.
func (r *Reconciler) planTrackedLocal(plan *Plan, path string, local *LocalFile, rec *TrackedFile, remoteIDs mapset.Set[string]) {
	if rec.RemoteID == "" || !remoteIDs.Contains(rec.RemoteID) {
		// tracked object is gone remotely, treat as untracked
		plan.Uploads[path] = &Operation{Type: OpUpload, RelPath: path, Local: local, Tracked: rec}
		return
	}

	if !needsHash(rec, local) {
		plan.Skips[path] = &Operation{Type: OpSkip, RelPath: path, Local: local, Tracked: rec}
		return
	}

	hash, err := r.hasher.Hash(local.AbsPath)
	if err != nil {
		plan.Failed[path] = err
		return
	}

	if rec.ContentHash != "" && hash == rec.ContentHash {
		// touch without content change, refresh the stored fingerprint so
		// future cheap checks succeed without rehashing
		plan.Skips[path] = &Operation{Type: OpSkip, RelPath: path, Local: local, Tracked: rec, ContentHash: hash, Refresh: true}
		return
	}

	plan.Replaces[path] = &Operation{Type: OpReplace, RelPath: path, Local: local, Tracked: rec, OldRemoteID: rec.RemoteID, ContentHash: hash}
}
