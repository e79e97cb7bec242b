package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMD5Hasher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	hash, err := MD5Hasher{}.Hash(path)
	require.NoError(t, err)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", hash)
}

func TestMD5Hasher_MissingFile(t *testing.T) {
	_, err := MD5Hasher{}.Hash(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestNeedsHash(t *testing.T) {
	mtime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		rec   *TrackedFile
		local *LocalFile
		want  bool
	}{
		{
			name:  "identical size and mtime",
			rec:   &TrackedFile{Size: 10, ModTime: mtime},
			local: &LocalFile{Fingerprint: Fingerprint{Size: 10, ModTime: mtime}},
			want:  false,
		},
		{
			name:  "same instant different location",
			rec:   &TrackedFile{Size: 10, ModTime: mtime},
			local: &LocalFile{Fingerprint: Fingerprint{Size: 10, ModTime: mtime.Local()}},
			want:  false,
		},
		{
			name:  "size differs",
			rec:   &TrackedFile{Size: 10, ModTime: mtime},
			local: &LocalFile{Fingerprint: Fingerprint{Size: 11, ModTime: mtime}},
			want:  true,
		},
		{
			name:  "mtime differs",
			rec:   &TrackedFile{Size: 10, ModTime: mtime},
			local: &LocalFile{Fingerprint: Fingerprint{Size: 10, ModTime: mtime.Add(time.Second)}},
			want:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, needsHash(tc.rec, tc.local))
		})
	}
}
