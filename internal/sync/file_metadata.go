package sync

import (
	"time"
)

// Fingerprint is the cheap change-detection tier for a local file: the stat
// result, no content read.
type Fingerprint struct {
	Size    int64
	ModTime time.Time
}

// Equal compares size and mtime. ModTime uses time.Equal to survive
// platform-specific precision differences.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Size == other.Size && f.ModTime.Equal(other.ModTime)
}

// LocalFile is one eligible file found by a directory scan.
type LocalFile struct {
	RelPath string
	AbsPath string
	Fingerprint
}

// TrackedFile is the durable record of one previously synchronized file.
// PendingDeletes holds remote ids whose delete failed on an earlier run; they
// are drained at the start of the next run so a replaced object never lingers
// as a duplicate.
type TrackedFile struct {
	Size           int64     `json:"size"`
	ModTime        time.Time `json:"mtime"`
	ContentHash    string    `json:"content_hash,omitempty"`
	RemoteID       string    `json:"remote_id,omitempty"`
	PendingDeletes []string  `json:"pending_deletes,omitempty"`
	LastSyncedAt   time.Time `json:"last_synced_at"`
}

// RemoteObject is one entry of a remote folder listing.
type RemoteObject struct {
	ID   string
	Name string
}
