package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultSettlePeriod is how long a FileStore waits after the last Set
// before writing the file.
const DefaultSettlePeriod = 3 * time.Second

// FileStore keeps its values in memory and writes them to a JSON file once
// they stop changing for the settle period.
type FileStore struct {
	path   string
	clock  clock.Clock
	settle time.Duration
	log    *zap.Logger

	mu     sync.Mutex
	values map[string]string
	dirty  bool
	timer  *clock.Timer
}

type FileStoreOption func(*FileStore)

func WithFileClock(c clock.Clock) FileStoreOption {
	return func(s *FileStore) {
		s.clock = c
	}
}

func WithSettlePeriod(d time.Duration) FileStoreOption {
	return func(s *FileStore) {
		s.settle = d
	}
}

func WithFileLogger(logger *zap.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.log = logger
	}
}

// OpenFileStore loads path, which may not exist yet.
func OpenFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		clock:  clock.New(),
		settle: DefaultSettlePeriod,
		log:    zap.L(),
		values: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("config")

	buf, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.log.Info("config file not found, starting empty", zap.String("path", path))
	case err != nil:
		return nil, errors.Wrapf(err, "read %s", path)
	default:
		if err := json.Unmarshal(buf, &s.values); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		if s.values == nil {
			s.values = map[string]string{}
		}
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set updates key and restarts the settle timer.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok && v == value {
		return nil
	}
	s.values[key] = value
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(s.settle, func() {
		if err := s.Flush(); err != nil {
			s.log.Error("saving config", zap.String("path", s.path), zap.Error(err))
		}
	})
	return nil
}

// Flush writes pending changes now.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty {
		return nil
	}
	buf, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := writeFileAtomic(s.path, buf); err != nil {
		return err
	}
	s.dirty = false
	s.log.Debug("config saved", zap.String("path", s.path), zap.Int("keys", len(s.values)))
	return nil
}

func (s *FileStore) Close() error {
	return s.Flush()
}

// writeFileAtomic writes to a temporary file next to path and renames it
// into place, so readers see either the old or the new contents.
func writeFileAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	_, err = f.Write(data)
	if err = multierr.Combine(err, f.Sync(), f.Close()); err != nil {
		return errors.Wrapf(err, "write %s", f.Name())
	}
	return errors.Wrapf(os.Rename(f.Name(), path), "rename %s", f.Name())
}
