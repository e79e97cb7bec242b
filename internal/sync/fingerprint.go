package sync

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
)

// Hasher computes the content hash of a local file. The reconciler calls it
// lazily, only when the cheap fingerprint cannot decide on its own.
type Hasher interface {
	Hash(path string) (string, error)
}

// MD5Hasher hashes full file contents with MD5, hex encoded.
type MD5Hasher struct{}

func (MD5Hasher) Hash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer file.Close()

	h := md5.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to read file content for hashing '%s': %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// needsHash reports whether the cheap tier is insufficient to rule out a
// content change between the tracked record and the file on disk.
func needsHash(rec *TrackedFile, local *LocalFile) bool {
	return rec.Size != local.Size || !rec.ModTime.Equal(local.ModTime)
}
