// Package history persists extraction records as a bounded JSON array on the local filesystem.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultCapacity is the number of records kept when Config.Capacity is unset.
const DefaultCapacity = 50

// ErrCorrupt marks a history file whose contents could not be decoded.
var ErrCorrupt = errors.New("history file is corrupt")

// Config captures where the history file lives and how many records it keeps.
type Config struct {
	// DataDir is created on the first write, not at construction.
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir"`
	FileName string `mapstructure:"file_name" yaml:"file_name"`
	Capacity int    `mapstructure:"capacity" yaml:"capacity"`
}

// Store owns the on-disk history file. Records are kept most-recent-first.
type Store struct {
	dir      string
	path     string
	capacity int
	logger   *zap.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// New creates a Store. The data directory is not touched until the first Append.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	name := cfg.FileName
	if strings.TrimSpace(name) == "" {
		name = "history.json"
	}
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("file name %q must not contain a directory", name)
	}
	capacity := cfg.Capacity
	if capacity < 0 {
		return nil, fmt.Errorf("capacity must be >= 0")
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:      cfg.DataDir,
		path:     filepath.Join(cfg.DataDir, name),
		capacity: capacity,
		logger:   logger,
	}, nil
}

// Path returns the location of the history file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored history. A missing file yields an empty history, and so
// does a corrupt one, after logging a warning.
func (s *Store) Load(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTolerant()
}

// Append inserts rec at the front of the history, trims it to capacity, and rewrites the file.
func (s *Store) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadTolerant()
	if err != nil {
		return err
	}
	next := make([]Record, 0, min(len(current)+1, s.capacity))
	next = append(next, rec)
	next = append(next, current...)
	if len(next) > s.capacity {
		next = next[:s.capacity]
	}
	return s.write(next)
}

// FindByBaseURL returns the most recent record whose BaseURL equals url exactly.
func (s *Store) FindByBaseURL(ctx context.Context, url string) (Record, bool, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return Record{}, false, err
	}
	for _, rec := range records {
		if rec.BaseURL == url {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

// Clear removes the history file. Clearing an absent history is not an error.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove history file: %w", err)
	}
	return nil
}

func (s *Store) loadTolerant() ([]Record, error) {
	records, err := s.read()
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("history file unreadable; treating as empty", zap.String("path", s.path), zap.Error(err))
		return []Record{}, nil
	}
	return records, err
}

func (s *Store) read() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// write replaces the history file via a temp file and rename so readers never see a partial array.
func (s *Store) write(records []Record) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Warn("failed to remove temp history file", zap.String("path", tmpName), zap.Error(rmErr))
		}
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
