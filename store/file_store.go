package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	dataSuffix     = ".json"
	checksumSuffix = ".checksum"
	tempSuffix     = ".tmp"
	lockFileName   = ".lock"
)

// FileStore keeps one file per key under a directory, each with a
// SHA256 checksum sidecar. Writes go to a temp file and are renamed into
// place. On the OS filesystem a lock file serializes access across
// processes.
type FileStore struct {
	fs  afero.Fs
	dir string

	mu  sync.Mutex
	flk *flock.Flock // nil unless fs is the OS filesystem
}

// NewFileStore creates the directory if needed.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}
	s := &FileStore{fs: fs, dir: dir}
	if _, ok := fs.(*afero.OsFs); ok {
		s.flk = flock.New(filepath.Join(dir, lockFileName))
	}
	return s, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+dataSuffix)
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// lock serializes goroutines with mu and processes with the lock file.
func (s *FileStore) lock(shared bool) (func(), error) {
	s.mu.Lock()
	if s.flk == nil {
		return s.mu.Unlock, nil
	}

	var err error
	if shared {
		err = s.flk.RLock()
	} else {
		err = s.flk.Lock()
	}
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("lock store %s: %w", s.dir, err)
	}
	return func() {
		_ = s.flk.Unlock()
		s.mu.Unlock()
	}, nil
}

// Get reads and verifies the value for key. A value written before
// checksums existed (no sidecar) is accepted as is.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	unlock, err := s.lock(true)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	p := s.path(key)
	data, err := afero.ReadFile(s.fs, p)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", p, err)
	}

	expected, err := afero.ReadFile(s.fs, p+checksumSuffix)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, false, fmt.Errorf("read checksum for %s: %w", p, err)
	default:
		if actual := calculateChecksum(data); strings.TrimSpace(string(expected)) != actual {
			return nil, false, fmt.Errorf("%s: %w (expected %s, got %s)", p, ErrChecksumMismatch, strings.TrimSpace(string(expected)), actual)
		}
	}
	return data, true, nil
}

// Set atomically replaces the value for key.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	unlock, err := s.lock(false)
	if err != nil {
		return err
	}
	defer unlock()

	p := s.path(key)
	tmp := p + tempSuffix
	if err := afero.WriteFile(s.fs, tmp, value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	sumTmp := p + checksumSuffix + tempSuffix
	if err := afero.WriteFile(s.fs, sumTmp, []byte(calculateChecksum(value)), 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", sumTmp, err)
	}

	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		_ = s.fs.Remove(sumTmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	if err := s.fs.Rename(sumTmp, p+checksumSuffix); err != nil {
		// Stale sidecar would fail every later read.
		_ = s.fs.Remove(p + checksumSuffix)
		return fmt.Errorf("rename %s: %w", sumTmp, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	unlock, err := s.lock(false)
	if err != nil {
		return err
	}
	defer unlock()

	p := s.path(key)
	for _, f := range []string{p, p + checksumSuffix} {
		if err := s.fs.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", f, err)
		}
	}
	return nil
}

// Close releases the file lock.
// flock.Unlock() is idempotent and can be called even if the lock is not held by this process.
func (s *FileStore) Close() error {
	if s.flk == nil {
		return nil
	}
	return s.flk.Unlock()
}

var _ KVStore = (*FileStore)(nil)
