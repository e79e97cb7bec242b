package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/localmind-ai/file-uploader/internal/config"
)

// RemoteStorage is the document-service collaborator the orchestrator drives.
// Retry/backoff, if any, belongs to the implementation, not to this core.
type RemoteStorage interface {
	// Upload stores a local file in a remote folder and returns the id the
	// service assigned to it.
	Upload(ctx context.Context, localPath, folderID string) (remoteID string, err error)

	// Delete removes a remote object. Deleting an object the service no
	// longer knows about must succeed.
	Delete(ctx context.Context, remoteID string) error

	// ListFiles returns the objects currently stored in a remote folder.
	ListFiles(ctx context.Context, folderID string) ([]RemoteObject, error)
}

// Orchestrator drives mappings end to end: scan, plan, execute, commit. It
// owns the tracking store for the duration of a run.
type Orchestrator struct {
	remote     RemoteStorage
	store      *TrackingStore
	reconciler *Reconciler
	hasher     Hasher
}

type Option func(*Orchestrator)

// WithHasher replaces the content hasher, used by tests to instrument hash
// call counts.
func WithHasher(h Hasher) Option {
	return func(o *Orchestrator) {
		o.hasher = h
	}
}

func NewOrchestrator(remote RemoteStorage, store *TrackingStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		remote: remote,
		store:  store,
		hasher: MD5Hasher{},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.reconciler = NewReconciler(o.hasher)
	return o
}

// RunAll processes every mapping. Mappings are independent, so they may run
// in parallel up to jobs; per-mapping failures never stop the others.
func (o *Orchestrator) RunAll(ctx context.Context, mappings []config.Mapping, jobs int) []*SyncResult {
	if jobs < 1 {
		jobs = 1
	}

	results := make([]*SyncResult, len(mappings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, m := range mappings {
		g.Go(func() error {
			results[i] = o.Run(ctx, m)
			return nil
		})
	}
	g.Wait()

	return results
}

// Run synchronizes one mapping. Entry-level failures are collected into the
// result and leave the corresponding tracking record untouched so the entry
// is retried next run. Only a scan, listing or state-save failure aborts the
// mapping.
func (o *Orchestrator) Run(ctx context.Context, m config.Mapping) *SyncResult {
	runID := uuid.NewString()[:8]
	log := slog.With("run", runID, "dir", m.LocalDir, "folder", m.FolderID)

	result := &SyncResult{LocalDir: m.LocalDir, FolderID: m.FolderID}
	tStart := time.Now()

	scan, err := ScanDir(m.LocalDir)
	if err != nil {
		result.Err = &OpError{Path: m.LocalDir, Op: OpScan, Err: err}
		log.Error("scan failed", "error", err)
		return result
	}

	remote, err := o.remote.ListFiles(ctx, m.FolderID)
	if err != nil {
		result.Err = &OpError{Path: m.LocalDir, Op: OpList, Err: err}
		log.Error("remote listing failed", "error", err)
		return result
	}

	tracked := o.store.Records(m.LocalDir)
	o.drainPendingDeletes(ctx, m, tracked, result, log)
	plan := o.reconciler.Plan(scan, tracked, remote)

	for _, path := range sortedPaths(plan.Failed) {
		opErr := &OpError{Path: path, Op: OpFingerprint, Err: plan.Failed[path]}
		result.Errors = append(result.Errors, opErr)
		log.Warn("fingerprint failed", "path", path, "error", plan.Failed[path])
	}

	for _, path := range sortedPaths(plan.Deletes) {
		o.executeDelete(ctx, m, plan.Deletes[path], result, log)
	}
	for _, path := range sortedPaths(plan.Replaces) {
		o.executeReplace(ctx, m, plan.Replaces[path], result, log)
	}
	for _, path := range sortedPaths(plan.Uploads) {
		o.executeUpload(ctx, m, plan.Uploads[path], result, log)
	}
	for _, path := range sortedPaths(plan.Skips) {
		o.executeSkip(m, plan.Skips[path], result, log)
	}

	if err := o.store.Save(); err != nil {
		result.Err = err
		log.Error("failed to persist tracking state", "error", err)
		return result
	}

	log.Info("mapping complete",
		"uploaded", result.Uploaded,
		"replaced", result.Replaced,
		"deleted", result.Deleted,
		"skipped", result.Skipped,
		"errors", result.ErrorCount(),
		"took", time.Since(tStart),
	)
	return result
}

// drainPendingDeletes retries remote deletes that failed on earlier runs.
// Ids that fail again stay queued for the run after.
func (o *Orchestrator) drainPendingDeletes(ctx context.Context, m config.Mapping, tracked map[string]*TrackedFile, result *SyncResult, log *slog.Logger) {
	for _, path := range sortedPaths(tracked) {
		rec := tracked[path]
		if len(rec.PendingDeletes) == 0 {
			continue
		}

		var remaining []string
		for _, id := range rec.PendingDeletes {
			if err := o.remote.Delete(ctx, id); err != nil {
				result.Errors = append(result.Errors, &OpError{Path: path, Op: OpDelete, Err: fmt.Errorf("pending delete of old object %s: %w", id, err)})
				log.Error("pending delete failed", "path", path, "id", id, "error", err)
				remaining = append(remaining, id)
				continue
			}
			log.Info("removed leftover object", "path", path, "id", id)
		}

		rec.PendingDeletes = remaining
		clone := *rec
		o.store.Put(m.LocalDir, path, &clone)
	}
}

func (o *Orchestrator) executeUpload(ctx context.Context, m config.Mapping, op *Operation, result *SyncResult, log *slog.Logger) {
	hash := op.ContentHash
	if hash == "" {
		h, err := o.hasher.Hash(op.Local.AbsPath)
		if err != nil {
			result.Errors = append(result.Errors, &OpError{Path: op.RelPath, Op: OpFingerprint, Err: err})
			log.Warn("hash failed", "path", op.RelPath, "error", err)
			return
		}
		hash = h
	}

	remoteID, err := o.remote.Upload(ctx, op.Local.AbsPath, m.FolderID)
	if err != nil {
		result.Errors = append(result.Errors, &OpError{Path: op.RelPath, Op: OpUpload, Err: err})
		log.Error("upload failed", "path", op.RelPath, "error", err)
		return
	}

	var pending []string
	if op.Tracked != nil {
		pending = op.Tracked.PendingDeletes
	}
	o.store.Put(m.LocalDir, op.RelPath, &TrackedFile{
		Size:           op.Local.Size,
		ModTime:        op.Local.ModTime,
		ContentHash:    hash,
		RemoteID:       remoteID,
		PendingDeletes: pending,
		LastSyncedAt:   time.Now().UTC(),
	})
	result.Uploaded++
	log.Info("uploaded", "path", op.RelPath, "size", humanize.Bytes(uint64(op.Local.Size)), "id", remoteID)
}

// executeReplace runs a replace as two independently committed
// sub-operations. Both are always attempted: a failed delete queues the old
// id as a pending delete so it is retried next run, the new record is only
// written once the upload succeeds.
func (o *Orchestrator) executeReplace(ctx context.Context, m config.Mapping, op *Operation, result *SyncResult, log *slog.Logger) {
	pending := op.Tracked.PendingDeletes
	if op.OldRemoteID != "" {
		if err := o.remote.Delete(ctx, op.OldRemoteID); err != nil {
			result.Errors = append(result.Errors, &OpError{Path: op.RelPath, Op: OpReplace, Err: fmt.Errorf("delete old object %s: %w", op.OldRemoteID, err)})
			log.Error("replace: delete of old object failed, queued for retry", "path", op.RelPath, "id", op.OldRemoteID, "error", err)
			pending = append(append([]string(nil), pending...), op.OldRemoteID)
		}
	}

	remoteID, err := o.remote.Upload(ctx, op.Local.AbsPath, m.FolderID)
	if err != nil {
		result.Errors = append(result.Errors, &OpError{Path: op.RelPath, Op: OpReplace, Err: err})
		log.Error("replace: upload failed", "path", op.RelPath, "error", err)
		return
	}

	o.store.Put(m.LocalDir, op.RelPath, &TrackedFile{
		Size:           op.Local.Size,
		ModTime:        op.Local.ModTime,
		ContentHash:    op.ContentHash,
		RemoteID:       remoteID,
		PendingDeletes: pending,
		LastSyncedAt:   time.Now().UTC(),
	})
	result.Replaced++
	log.Info("replaced", "path", op.RelPath, "size", humanize.Bytes(uint64(op.Local.Size)), "id", remoteID, "oldId", op.OldRemoteID)
}

func (o *Orchestrator) executeDelete(ctx context.Context, m config.Mapping, op *Operation, result *SyncResult, log *slog.Logger) {
	if op.OldRemoteID != "" {
		if err := o.remote.Delete(ctx, op.OldRemoteID); err != nil {
			result.Errors = append(result.Errors, &OpError{Path: op.RelPath, Op: OpDelete, Err: err})
			log.Error("delete failed", "path", op.RelPath, "id", op.OldRemoteID, "error", err)
			return
		}
	}

	if op.Tracked != nil && len(op.Tracked.PendingDeletes) > 0 {
		// pending ids still queued, keep the record until they drain
		rec := *op.Tracked
		rec.RemoteID = ""
		o.store.Put(m.LocalDir, op.RelPath, &rec)
	} else {
		o.store.Remove(m.LocalDir, op.RelPath)
	}
	result.Deleted++
	log.Info("deleted", "path", op.RelPath, "id", op.OldRemoteID)
}

func (o *Orchestrator) executeSkip(m config.Mapping, op *Operation, result *SyncResult, log *slog.Logger) {
	if op.Refresh {
		rec := *op.Tracked
		rec.Size = op.Local.Size
		rec.ModTime = op.Local.ModTime
		rec.ContentHash = op.ContentHash
		o.store.Put(m.LocalDir, op.RelPath, &rec)
		log.Debug("refreshed fingerprint", "path", op.RelPath)
	}
	result.Skipped++
}
