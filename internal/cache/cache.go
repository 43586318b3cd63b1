package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jschlyter/spc2mqtt/internal/spc"
)

const cacheFileName = "spc2mqtt_cache.json"

// Data is the persisted form of a panel mirror, used to bring the bridge up
// with the last known state when the gateway is unreachable at boot.
type Data struct {
	Snapshot spc.Snapshot `json:"snapshot"`
	SavedAt  time.Time    `json:"saved_at"`
}

// Store reads and writes the cache file. An empty Dir means the user cache
// directory.
type Store struct {
	Dir string
}

func (s *Store) Save(snap spc.Snapshot) error {
	data, err := json.Marshal(Data{Snapshot: snap, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %v", err)
	}

	dir, err := s.dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, cacheFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %v", err)
	}
	return nil
}

// Load returns the cached data, or nil when no cache file exists yet.
func (s *Store) Load() (*Data, error) {
	dir, err := s.dir()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(dir, cacheFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %v", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %v", err)
	}
	return &data, nil
}

func (s *Store) Delete() error {
	dir, err := s.dir()
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, cacheFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %v", err)
	}
	return nil
}

func (s *Store) dir() (string, error) {
	if s.Dir != "" {
		return s.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %v", err)
	}
	return filepath.Join(base, "spc2mqtt"), nil
}
