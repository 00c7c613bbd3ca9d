package session

import (
	"context"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"luxstay/models"

	"go.uber.org/zap"
)

// FileStore persists the session as a single JSON document. Writes go to a
// temporary file that is renamed over the target, so a reader sees either
// the previous session or the new one, never a mix.
type FileStore struct {
	path   string
	aead   cipher.AEAD
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore seals the file at rest when encryptionKey is not empty.
func NewFileStore(path, encryptionKey string, logger *zap.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session: file path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &FileStore{path: path, logger: logger}
	if encryptionKey != "" {
		aead, err := newSealer(encryptionKey)
		if err != nil {
			return nil, err
		}
		store.aead = aead
	}
	return store, nil
}

// Path is the location of the session document.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(_ context.Context) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileStore) load() (models.Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to read session file: %w", err)
	}
	if f.aead != nil {
		data, err = open(f.aead, data)
		if err != nil {
			f.logger.Warn("Discarding unreadable session file", zap.String("path", f.path), zap.Error(err))
			return models.Session{}, nil
		}
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		f.logger.Warn("Discarding malformed session file", zap.String("path", f.path), zap.Error(err))
		return models.Session{}, nil
	}
	return s, nil
}

func (f *FileStore) Save(_ context.Context, s models.Session) error {
	if err := checkSave(s); err != nil {
		return err
	}
	data, err := f.encode(s)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return writeFileAtomic(f.path, data)
}

func (f *FileStore) Rotate(_ context.Context, refreshToken string, next models.TokenPair) (models.Session, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.load()
	if err != nil {
		return models.Session{}, false, err
	}
	s, ok := rotated(current, refreshToken, next)
	if !ok {
		return current, false, nil
	}
	data, err := f.encode(s)
	if err != nil {
		return current, false, err
	}
	if err := writeFileAtomic(f.path, data); err != nil {
		return current, false, err
	}
	return s, true, nil
}

func (f *FileStore) encode(s models.Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if f.aead != nil {
		return seal(f.aead, data)
	}
	return data, nil
}

func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
