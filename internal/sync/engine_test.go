package sync

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingHasher returns canned hashes and counts how often it is asked.
type countingHasher struct {
	hashes map[string]string
	errs   map[string]error
	calls  int
}

func (h *countingHasher) Hash(path string) (string, error) {
	h.calls++
	if err, ok := h.errs[path]; ok {
		return "", err
	}
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "", errors.New("no canned hash for " + path)
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func lf(relPath string, size int64, mtime time.Time) *LocalFile {
	return &LocalFile{
		RelPath:     relPath,
		AbsPath:     "/" + relPath,
		Fingerprint: Fingerprint{Size: size, ModTime: mtime},
	}
}

func tf(size int64, mtime time.Time, hash, remoteID string) *TrackedFile {
	return &TrackedFile{
		Size:         size,
		ModTime:      mtime,
		ContentHash:  hash,
		RemoteID:     remoteID,
		LastSyncedAt: baseTime,
	}
}

func scanOf(files ...*LocalFile) *ScanResult {
	result := &ScanResult{
		Files:  make(map[string]*LocalFile),
		Failed: make(map[string]error),
	}
	for _, f := range files {
		result.Files[f.RelPath] = f
	}
	return result
}

func TestReconciler_Plan_TableDriven(t *testing.T) {
	cases := []struct {
		name    string
		scan    *ScanResult
		tracked map[string]*TrackedFile
		remote  []RemoteObject
		hasher  *countingHasher
		expect  func(t *testing.T, plan *Plan, hasher *countingHasher)
	}{
		{
			name:    "new local file uploads",
			scan:    scanOf(lf("a.pdf", 10, baseTime)),
			tracked: map[string]*TrackedFile{},
			remote:  nil,
			hasher:  &countingHasher{},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				require.Len(t, plan.Uploads, 1)
				assert.Equal(t, OpUpload, plan.Uploads["a.pdf"].Type)
				assert.Zero(t, hasher.calls, "a fresh upload needs no hash during planning")
			},
		},
		{
			name:    "unchanged fingerprint skips without hashing",
			scan:    scanOf(lf("b.docx", 20, baseTime)),
			tracked: map[string]*TrackedFile{"b.docx": tf(20, baseTime, "h1", "doc-1")},
			remote:  []RemoteObject{{ID: "doc-1", Name: "b.docx"}},
			hasher:  &countingHasher{},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				require.Len(t, plan.Skips, 1)
				assert.False(t, plan.Skips["b.docx"].Refresh)
				assert.Zero(t, hasher.calls)
				assert.False(t, plan.HasChanges())
			},
		},
		{
			name:    "locally deleted file deletes remote",
			scan:    scanOf(),
			tracked: map[string]*TrackedFile{"c.txt": tf(5, baseTime, "h2", "doc-2")},
			remote:  []RemoteObject{{ID: "doc-2", Name: "c.txt"}},
			hasher:  &countingHasher{},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				require.Len(t, plan.Deletes, 1)
				assert.Equal(t, "doc-2", plan.Deletes["c.txt"].OldRemoteID)
			},
		},
		{
			name:    "content change replaces with old remote id",
			scan:    scanOf(lf("b.docx", 25, baseTime.Add(time.Minute))),
			tracked: map[string]*TrackedFile{"b.docx": tf(20, baseTime, "h1", "doc-1")},
			remote:  []RemoteObject{{ID: "doc-1", Name: "b.docx"}},
			hasher:  &countingHasher{hashes: map[string]string{"/b.docx": "h9"}},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				require.Len(t, plan.Replaces, 1)
				op := plan.Replaces["b.docx"]
				assert.Equal(t, "doc-1", op.OldRemoteID)
				assert.Equal(t, "h9", op.ContentHash)
				assert.Equal(t, 1, hasher.calls)
			},
		},
		{
			name:    "mtime drift with identical hash skips and refreshes",
			scan:    scanOf(lf("b.docx", 20, baseTime.Add(time.Hour))),
			tracked: map[string]*TrackedFile{"b.docx": tf(20, baseTime, "h1", "doc-1")},
			remote:  []RemoteObject{{ID: "doc-1", Name: "b.docx"}},
			hasher:  &countingHasher{hashes: map[string]string{"/b.docx": "h1"}},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				require.Len(t, plan.Skips, 1)
				assert.True(t, plan.Skips["b.docx"].Refresh)
				assert.Equal(t, 1, hasher.calls)
				assert.True(t, plan.HasChanges(), "refresh must reach the store")
			},
		},
		{
			name:    "tracked id missing remotely forces upload despite identical fingerprint",
			scan:    scanOf(lf("b.docx", 20, baseTime)),
			tracked: map[string]*TrackedFile{"b.docx": tf(20, baseTime, "h1", "doc-1")},
			remote:  []RemoteObject{{ID: "other", Name: "x.pdf"}},
			hasher:  &countingHasher{},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				require.Len(t, plan.Uploads, 1)
				assert.Empty(t, plan.Replaces)
				assert.Empty(t, plan.Skips)
				assert.Zero(t, hasher.calls, "force upload decides without hashing")
			},
		},
		{
			name:    "missing id wins over replace",
			scan:    scanOf(lf("b.docx", 99, baseTime.Add(time.Minute))),
			tracked: map[string]*TrackedFile{"b.docx": tf(20, baseTime, "h1", "doc-1")},
			remote:  nil,
			hasher:  &countingHasher{},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				require.Len(t, plan.Uploads, 1)
				assert.Empty(t, plan.Replaces)
			},
		},
		{
			name:    "empty tracked remote id forces upload",
			scan:    scanOf(lf("b.docx", 20, baseTime)),
			tracked: map[string]*TrackedFile{"b.docx": tf(20, baseTime, "h1", "")},
			remote:  nil,
			hasher:  &countingHasher{},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				require.Len(t, plan.Uploads, 1)
			},
		},
		{
			name:    "hash failure excludes the path",
			scan:    scanOf(lf("b.docx", 25, baseTime.Add(time.Minute))),
			tracked: map[string]*TrackedFile{"b.docx": tf(20, baseTime, "h1", "doc-1")},
			remote:  []RemoteObject{{ID: "doc-1", Name: "b.docx"}},
			hasher:  &countingHasher{errs: map[string]error{"/b.docx": errors.New("permission denied")}},
			expect: func(t *testing.T, plan *Plan, hasher *countingHasher) {
				assert.Empty(t, plan.Uploads)
				assert.Empty(t, plan.Replaces)
				assert.Empty(t, plan.Deletes)
				require.Contains(t, plan.Failed, "b.docx")
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := NewReconciler(tc.hasher).Plan(tc.scan, tc.tracked, tc.remote)
			tc.expect(t, plan, tc.hasher)
		})
	}
}

func TestReconciler_Plan_MixedScenario(t *testing.T) {
	// a.pdf is new, b.docx is tracked and unchanged, c.txt was deleted locally
	scan := scanOf(
		lf("a.pdf", 10, baseTime),
		lf("b.docx", 20, baseTime),
	)
	tracked := map[string]*TrackedFile{
		"b.docx": tf(20, baseTime, "h1", "doc-1"),
		"c.txt":  tf(5, baseTime, "h2", "doc-2"),
	}
	remote := []RemoteObject{
		{ID: "doc-1", Name: "b.docx"},
		{ID: "doc-2", Name: "c.txt"},
	}

	hasher := &countingHasher{}
	plan := NewReconciler(hasher).Plan(scan, tracked, remote)

	require.Len(t, plan.Uploads, 1)
	require.Len(t, plan.Skips, 1)
	require.Len(t, plan.Deletes, 1)
	assert.Contains(t, plan.Uploads, "a.pdf")
	assert.Contains(t, plan.Skips, "b.docx")
	assert.Equal(t, "doc-2", plan.Deletes["c.txt"].OldRemoteID)
	assert.Zero(t, hasher.calls)
}

func TestReconciler_Plan_Idempotent(t *testing.T) {
	scan := scanOf(
		lf("a.pdf", 10, baseTime),
		lf("b.docx", 20, baseTime.Add(time.Minute)),
	)
	tracked := map[string]*TrackedFile{
		"b.docx": tf(20, baseTime, "h1", "doc-1"),
	}
	remote := []RemoteObject{{ID: "doc-1", Name: "b.docx"}}

	first := NewReconciler(&countingHasher{hashes: map[string]string{"/b.docx": "h9"}}).Plan(scan, tracked, remote)
	second := NewReconciler(&countingHasher{hashes: map[string]string{"/b.docx": "h9"}}).Plan(scan, tracked, remote)

	assert.Equal(t, first, second)
}

func TestReconciler_Plan_FailedScanPathNeitherAddedNorDeleted(t *testing.T) {
	scan := scanOf()
	scan.Failed["b.docx"] = errors.New("permission denied")
	tracked := map[string]*TrackedFile{
		"b.docx": tf(20, baseTime, "h1", "doc-1"),
	}
	remote := []RemoteObject{{ID: "doc-1", Name: "b.docx"}}

	plan := NewReconciler(&countingHasher{}).Plan(scan, tracked, remote)

	assert.Empty(t, plan.Deletes, "an unreadable file must not be treated as deleted")
	assert.Empty(t, plan.Uploads)
	require.Contains(t, plan.Failed, "b.docx")
}
