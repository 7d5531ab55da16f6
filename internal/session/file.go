package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meetly-app/meetly/internal/config"
	"github.com/meetly-app/meetly/internal/notify"
	"github.com/meetly-app/meetly/pkg/models"
)

// FileName is the session file inside the meetly directory.
const FileName = "session.json"

// fileData is the on-disk layout: the same two keys the browser client
// kept in local storage.
type fileData struct {
	Token string          `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}

// FileStore is a Store persisted to <dir>/session.json with owner-only
// permissions.
type FileStore struct {
	state
	path string
}

// OpenFileStore loads the session saved in dir. A missing file is an empty
// session. An unreadable user record is discarded along with its token so
// the client never runs with half a session.
func OpenFileStore(dir string, bus *notify.Bus) (*FileStore, error) {
	s := &FileStore{
		state: state{bus: bus},
		path:  filepath.Join(dir, FileName),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		_ = os.Remove(s.path)
		return s, nil
	}
	var user models.User
	if len(fd.User) == 0 || json.Unmarshal(fd.User, &user) != nil || fd.Token == "" {
		_ = os.Remove(s.path)
		return s, nil
	}

	s.token = fd.Token
	s.user = &user
	return s, nil
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save replaces the session and writes it to disk.
func (s *FileStore) Save(token string, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	data, err := json.MarshalIndent(fileData{Token: token, User: raw}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	s.mu.Lock()
	if err := config.AtomicWrite(s.path, data, 0o600); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("write session: %w", err)
	}
	change, subs := s.setLocked(token, &user)
	s.mu.Unlock()

	s.announce(change, subs)
	return nil
}

// Clear removes the session file and the in-memory session.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.mu.Unlock()
		return fmt.Errorf("remove session: %w", err)
	}
	change, subs := s.setLocked("", nil)
	s.mu.Unlock()

	s.announce(change, subs)
	return nil
}
