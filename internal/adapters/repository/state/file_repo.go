package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// StateFile is the name of the persisted system inside the data directory
const StateFile = "state.json"

// LockFile guards read-modify-write cycles on StateFile across processes
const LockFile = "state.lock"

const lockRetryDelay = 25 * time.Millisecond

// FileRepository stores the governance state as a json file
type FileRepository struct {
	path string
	mu   sync.RWMutex
}

// NewFileRepository creates a repository rooted at the configured data directory
func NewFileRepository(cfg *config.RuntimeConfig) *FileRepository {
	return &FileRepository{path: filepath.Join(cfg.DataDir, StateFile)}
}

// Path returns the location of the state file
func (r *FileRepository) Path() string {
	return r.path
}

// Exists reports whether a state has been saved
func (r *FileRepository) Exists(_ context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, err := os.Stat(r.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat state file: %w", err)
}

// Load reads the state from disk
func (r *FileRepository) Load(_ context.Context) (*governance.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, usecase.ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st governance.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", r.path, err)
	}
	return &st, nil
}

// Save writes the state, replacing the previous file atomically
func (r *FileRepository) Save(_ context.Context, st *governance.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write to temp file first
	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Lock takes an exclusive advisory lock on the data directory, waiting until
// it is free or ctx is done
func (r *FileRepository) Lock(ctx context.Context) (func() error, error) {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fl := flock.New(filepath.Join(dir, LockFile))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to acquire %s", fl.Path())
	}
	return fl.Unlock, nil
}

var _ usecase.StateRepository = (*FileRepository)(nil)
