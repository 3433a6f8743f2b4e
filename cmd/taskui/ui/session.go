package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"task-tracker/backend/app/models"
)

// Session is what survives a client restart.
type Session struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (s Session) IsAdmin() bool { return s.Role == models.RoleAdmin }

type SessionStore struct{ Path string }

// DefaultSessionPath is <user config dir>/task-tracker/session.json.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "task-tracker", "session.json")
}

func (s SessionStore) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir session dir: %w", err)
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, b, 0o600)
}

// Load returns an empty session when nothing was saved yet.
func (s SessionStore) Load() (Session, error) {
	var sess Session
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return sess, nil
	}
	if err != nil {
		return sess, err
	}
	if err := json.Unmarshal(b, &sess); err != nil {
		return Session{}, fmt.Errorf("parse session file: %w", err)
	}
	return sess, nil
}

func (s SessionStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
