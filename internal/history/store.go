package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/logger"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/pkg/errors"
)

// Store is a time-windowed, file-persisted set of previously published
// ASINs. It is loaded once at the start of a run, consulted for dedup
// decisions, appended to for newly selected offers, and saved at the end
// of the run. Saving persists only the window-filtered set, so the file
// is self-pruning on every run.
//
// The store is not safe for concurrent use; a run is the single writer.
type Store struct {
	path    string
	window  time.Duration
	entries map[string]time.Time
	log     *logger.Logger
}

// NewStore creates a store backed by the given file
func NewStore(path string, window time.Duration) *Store {
	return &Store{
		path:    path,
		window:  window,
		entries: make(map[string]time.Time),
		log:     logger.ForHistory(),
	}
}

// Load reads the persisted entries and filters them to the retention
// window. Corrupt or missing state never blocks a run: the store starts
// empty and the returned error exists only for operator visibility.
func (s *Store) Load(now time.Time) error {
	s.entries = make(map[string]time.Time)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewPersistence(s.path, "failed to read history file", err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.NewPersistence(s.path, "corrupt history file, starting empty", err)
	}

	cutoff := now.Add(-s.window)
	for asin, epoch := range raw {
		ts := time.Unix(int64(epoch), 0)
		if ts.After(cutoff) || ts.Equal(cutoff) {
			s.entries[asin] = ts
		}
	}
	s.log.Debug().Int("kept", len(s.entries)).Int("expired", len(raw)-len(s.entries)).Msg("History loaded")

	return nil
}

// Contains reports whether the ASIN was published within the retention
// window. O(1) against the index built at Load.
func (s *Store) Contains(asin string) bool {
	_, ok := s.entries[asin]
	return ok
}

// Record marks an ASIN as published at the given time. Not durable until
// Save.
func (s *Store) Record(asin string, now time.Time) {
	s.entries[asin] = now
}

// Len returns the number of entries currently in the window
func (s *Store) Len() int {
	return len(s.entries)
}

// Save persists the current (already window-filtered) set, replacing the
// prior state atomically: the new content is written to a temporary file
// and renamed over the old one, so a failed write leaves the previous
// durable state intact.
func (s *Store) Save() error {
	raw := make(map[string]float64, len(s.entries))
	for asin, ts := range s.entries {
		raw[asin] = float64(ts.Unix())
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return errors.NewPersistence(s.path, "failed to encode history", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.NewPersistence(s.path, "failed to write history file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.NewPersistence(s.path, "failed to replace history file", err)
	}
	s.log.Debug().Int("entries", len(raw)).Msg("History saved")

	return nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return filepath.Clean(s.path)
}
