package sync

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/localmind-ai/file-uploader/internal/jsonc"
	"github.com/localmind-ai/file-uploader/internal/utils"
)

var ErrStoreLocked = fmt.Errorf("tracking store locked by another process")

// TrackingState maps a mapping root to its records, keyed by relative path.
type TrackingState map[string]map[string]*TrackedFile

// TrackingStore is the durable record of previously synchronized files,
// persisted as a human-inspectable JSON file. Deleting the file forces a full
// re-sync. Saves are atomic: a temp file in the same directory is renamed
// over the previous state, so a crash mid-write never corrupts it.
//
// All accessors are safe for concurrent use so mappings can be processed in
// parallel. Cross-process exclusivity is a flock next to the store file.
type TrackingStore struct {
	path  string
	flock *flock.Flock
	mu    sync.Mutex
	state TrackingState
}

func NewTrackingStore(path string) *TrackingStore {
	return &TrackingStore{
		path:  path,
		flock: flock.New(path + ".lock"),
		state: make(TrackingState),
	}
}

func (s *TrackingStore) Path() string {
	return s.path
}

// Lock claims cross-process ownership of the store for the duration of a
// run. A concurrent second run against the same store is refused.
func (s *TrackingStore) Lock() error {
	if err := utils.EnsureParent(s.path); err != nil {
		return fmt.Errorf("failed to create tracking dir: %w", err)
	}

	locked, err := s.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock tracking store: %w", err)
	}
	if !locked {
		return ErrStoreLocked
	}
	return nil
}

func (s *TrackingStore) Unlock() error {
	if !s.flock.Locked() {
		return nil
	}
	if err := s.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock tracking store: %w", err)
	}
	return os.Remove(s.flock.Path())
}

// Load reads the store from disk. A missing or corrupt file yields an empty
// state with a warning, never a failed run.
func (s *TrackingStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = make(TrackingState)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("no tracking state, starting fresh", "path", s.path)
			return nil
		}
		slog.Warn("failed to read tracking state, starting fresh", "path", s.path, "error", err)
		return nil
	}

	if err := jsonc.Unmarshal(data, &s.state); err != nil {
		slog.Warn("corrupt tracking state, starting fresh", "path", s.path, "error", err)
		s.state = make(TrackingState)
	}
	return nil
}

// Save persists the state atomically.
func (s *TrackingStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := jsonc.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tracking state: %w", err)
	}

	if err := utils.EnsureParent(s.path); err != nil {
		return fmt.Errorf("failed to create tracking dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}

	slog.Debug("tracking state saved", "path", s.path, "roots", len(s.state))
	return nil
}

// Get returns the record for a path under a mapping root, or nil.
func (s *TrackingStore) Get(root, relPath string) *TrackedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state[root][relPath]
}

// Records returns a snapshot copy of one root's records, safe to hand to the
// reconciler while other mappings mutate the store.
func (s *TrackingStore) Records(root string) map[string]*TrackedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make(map[string]*TrackedFile, len(s.state[root]))
	for relPath, rec := range s.state[root] {
		clone := *rec
		records[relPath] = &clone
	}
	return records
}

func (s *TrackingStore) Put(root, relPath string, rec *TrackedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state[root] == nil {
		s.state[root] = make(map[string]*TrackedFile)
	}
	s.state[root][relPath] = rec
}

func (s *TrackingStore) Remove(root, relPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.state[root], relPath)
	if len(s.state[root]) == 0 {
		delete(s.state, root)
	}
}

// Roots returns the tracked mapping roots.
func (s *TrackingStore) Roots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedPaths(s.state)
}

// Count returns the number of records under one root.
func (s *TrackingStore) Count(root string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.state[root])
}

// Destroy moves the state file aside so the next run performs a full
// re-sync. The previous state is kept as a timestamped backup.
func (s *TrackingStore) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = make(TrackingState)

	if !utils.FileExists(s.path) {
		return nil
	}

	timestamp := time.Now().Format("20060102150405")
	backup := fmt.Sprintf("%s.%s.bak", s.path, timestamp)
	if err := os.Rename(s.path, backup); err != nil {
		return fmt.Errorf("failed to move tracking state aside: %w", err)
	}
	slog.Info("tracking state moved", "backup", backup)
	return nil
}
