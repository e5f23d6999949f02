// Package registry implements the Registry Store: a single JSON file on a
// shared filesystem path holding the threadId -> Session mapping, mutated
// under an advisory file lock so the bridge process and external hook
// scripts can safely read and write it concurrently.
package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/chatbridge/bridge/errors"
	"github.com/chatbridge/bridge/pkg/session"
	"github.com/gofrs/flock"
)

const lockTimeout = 5 * time.Second

// Store is a file-backed, cross-process-safe map of threadId -> *Session.
type Store struct {
	path     string
	lockPath string
}

// New returns a Store backed by the JSON document at path. The companion
// lock file is path with a ".lock" suffix.
func New(path string) *Store {
	return &Store{path: path, lockPath: path + ".lock"}
}

// document is the on-disk shape: a flat map, no envelope needed since the
// whole file is replaced atomically on every write.
type document map[string]*session.Session

func (s *Store) load() (document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return document{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "read registry file")
	}
	if len(data) == 0 {
		return document{}, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "parse registry file")
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

// atomicWriteFile writes data to a temp file in the same directory as path
// and renames it into place, so a reader never observes a partial write.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-registry-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Update acquires the file lock, loads the current document, applies fn,
// and writes the result back atomically if fn succeeds. fn must be pure
// and fast: no chat or muxer I/O may happen inside the critical section,
// since the lock is held across every other process's reads and writes
// for its whole duration.
func (s *Store) Update(fn func(sessions map[string]*session.Session) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	fl := flock.New(s.lockPath)

	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "acquire registry lock")
	}
	if !locked {
		return errors.New(errors.ErrCodeInternal, "timed out acquiring registry lock")
	}
	defer fl.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	if err := fn(doc); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "marshal registry")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create registry directory")
	}
	if err := atomicWriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "write registry file")
	}
	return nil
}

// Load returns a snapshot of the full document, read while holding the
// same file lock Update takes; the lock is released before Load returns,
// so the snapshot can be one write behind by the time the caller uses it.
func (s *Store) Load() (map[string]*session.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	fl := flock.New(s.lockPath)
	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "acquire registry lock")
	}
	if !locked {
		return nil, errors.New(errors.ErrCodeInternal, "timed out acquiring registry lock")
	}
	defer fl.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns the Session for threadId, or nil if none exists.
func (s *Store) Get(threadID string) (*session.Session, error) {
	sessions, err := s.Load()
	if err != nil {
		return nil, err
	}
	return sessions[threadID], nil
}

// Put upserts a Session under Update's lock.
func (s *Store) Put(sess *session.Session) error {
	return s.Update(func(sessions map[string]*session.Session) error {
		sessions[sess.ThreadID] = sess
		return nil
	})
}

// Delete removes a threadId's Session, if present, under Update's lock.
func (s *Store) Delete(threadID string) error {
	return s.Update(func(sessions map[string]*session.Session) error {
		delete(sessions, threadID)
		return nil
	})
}
