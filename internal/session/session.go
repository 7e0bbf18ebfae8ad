// Package session persists the signed-in user's email between runs.
package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the preferences file used when no path is configured.
const DefaultPath = "user_data.yaml"

// KeyCurrentUserEmail is the preference key holding the signed-in email.
const KeyCurrentUserEmail = "current_user_email"

// Store is a flat string key-value file. Every write replaces the file atomically.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// CurrentUserEmail returns the signed-in email. ok is false when nobody is signed in.
func (s *Store) CurrentUserEmail() (email string, ok bool, err error) {
	return s.Get(KeyCurrentUserEmail)
}

// SetCurrentUserEmail records email as the signed-in user.
func (s *Store) SetCurrentUserEmail(email string) error {
	return s.Set(KeyCurrentUserEmail, email)
}

// ClearCurrentUserEmail forgets the signed-in user.
func (s *Store) ClearCurrentUserEmail() error {
	return s.Delete(KeyCurrentUserEmail)
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := prefs[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := s.load()
	if err != nil {
		return err
	}
	prefs[key] = value
	return s.save(prefs)
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := prefs[key]; !ok {
		return nil
	}
	delete(prefs, key)
	return s.save(prefs)
}

func (s *Store) load() (map[string]string, error) {
	prefs := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return nil, errors.Wrap(err, "read session file")
	}
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return nil, errors.Wrap(err, "parse session file")
	}
	if prefs == nil {
		prefs = map[string]string{}
	}
	return prefs, nil
}

func (s *Store) save(prefs map[string]string) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return errors.Wrap(err, "encode session file")
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "create temp session file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write session file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close session file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace session file")
}
