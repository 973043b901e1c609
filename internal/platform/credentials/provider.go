package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
)

// Provider supplies the generative API key used on every call.
type Provider interface {
	Get() (string, bool)
	Set(key string) error
	Clear() error
}

var ErrReadOnly = errors.New("credential provider is read-only")

// Memory keeps a key for the life of the process.
type Memory struct {
	mu  sync.RWMutex
	key string
}

func NewMemory(key string) *Memory { return &Memory{key: strings.TrimSpace(key)} }

func (m *Memory) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key, m.key != ""
}

func (m *Memory) Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty api key")
	}
	m.mu.Lock()
	m.key = key
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.key = ""
	m.mu.Unlock()
	return nil
}

// Env reads the key from the first non-empty variable in Names.
// Clear hides the environment key until the process restarts.
type Env struct {
	Names   []string
	cleared atomic.Bool
}

func NewEnv(names ...string) *Env {
	if len(names) == 0 {
		names = []string{"GEMINI_API_KEY", "API_KEY"}
	}
	return &Env{Names: names}
}

func (e *Env) Get() (string, bool) {
	if e.cleared.Load() {
		return "", false
	}
	for _, name := range e.Names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

func (e *Env) Set(string) error { return ErrReadOnly }

func (e *Env) Clear() error {
	e.cleared.Store(true)
	return nil
}

// File persists the key as JSON in the state directory, guarded by an advisory file lock.
type File struct {
	path string
	lock *flock.Flock
}

type fileContents struct {
	APIKey string `json:"api_key"`
}

func NewFile(path string) *File {
	return &File{path: path, lock: flock.New(path + ".lock")}
}

func (f *File) Path() string { return f.path }

func (f *File) Get() (string, bool) {
	if err := f.lock.RLock(); err != nil {
		return "", false
	}
	defer f.lock.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}
	var c fileContents
	if err := json.Unmarshal(raw, &c); err != nil {
		return "", false
	}
	key := strings.TrimSpace(c.APIKey)
	return key, key != ""
}

func (f *File) Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty api key")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock credential file: %w", err)
	}
	defer f.lock.Unlock()

	raw, err := json.Marshal(fileContents{APIKey: key})
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (f *File) Clear() error {
	if _, err := os.Stat(filepath.Dir(f.path)); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock credential file: %w", err)
	}
	defer f.lock.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

// Chain consults providers in order. Set goes to the first writable provider; Clear reaches all of them.
type Chain []Provider

func (c Chain) Get() (string, bool) {
	for _, p := range c {
		if key, ok := p.Get(); ok {
			return key, true
		}
	}
	return "", false
}

func (c Chain) Set(key string) error {
	for _, p := range c {
		err := p.Set(key)
		if errors.Is(err, ErrReadOnly) {
			continue
		}
		return err
	}
	return ErrReadOnly
}

func (c Chain) Clear() error {
	var errs []error
	for _, p := range c {
		if err := p.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
