package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per session. The explore command and a
// single-instance server use it when no Redis is configured.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens the store in dir, creating it with owner-only
// permissions. An empty dir means <user config dir>/familytree/sessions.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, "familytree", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the session directory.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) file(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Get returns the session, or nil when it is missing or expired. Expired
// files are removed on the way.
func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	sess, err := readSession(s.file(id))
	s.mu.RUnlock()

	switch {
	case os.IsNotExist(err):
		return nil, nil
	case err != nil:
		return nil, err
	case sess.IsExpired():
		_ = s.Delete(ctx, id)
		return nil, nil
	}
	return sess, nil
}

// Set writes the session through a temporary file so readers never see a
// partial document.
func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	if err := ValidateID(sess.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, sess.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp.Name(), s.file(sess.ID))
}

// Delete removes the session. Missing sessions are not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.file(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup removes expired and unreadable session files.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if sess, err := readSession(path); err != nil || sess.IsExpired() {
			_ = os.Remove(path)
		}
	}
	return nil
}

func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}

var _ Store = (*FileStore)(nil)
