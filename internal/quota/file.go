package quota

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	lockPollInterval = 10 * time.Millisecond
	staleLockAge     = 30 * time.Second
)

// FileStore keeps string values in a JSON object on disk. Writers in other
// processes are excluded through a sibling lock file, so compare-and-swap
// holds across several CLI instances sharing one file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("quota file path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create quota directory %q: %w", dir, err)
	}

	return &FileStore{path: path}, nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	values, err := f.read()
	if err != nil {
		return nil, err
	}

	value, ok := values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

func (f *FileStore) CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	values, err := f.read()
	if err != nil {
		return false, err
	}

	current, ok := values[key]
	if old == nil {
		if ok {
			return false, nil
		}
	} else if !ok || !bytes.Equal([]byte(current), old) {
		return false, nil
	}

	values[key] = string(next)

	if err := f.write(values); err != nil {
		return false, err
	}
	return true, nil
}

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read quota file %q: %w", f.path, err)
	}

	values := map[string]string{}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse quota file %q: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quota file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp quota file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp quota file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp quota file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace quota file %q: %w", f.path, err)
	}
	return nil
}

// lock creates path.lock exclusively, waiting until ctx is done. A lock left
// behind by a crashed process is removed once it is older than staleLockAge.
func (f *FileStore) lock(ctx context.Context) (func(), error) {
	lockPath := f.path + ".lock"

	for {
		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			file.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("acquire quota lock %q: %w", lockPath, err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > staleLockAge {
			os.Remove(lockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire quota lock %q: %w", lockPath, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}
