// Package seen persists the set of job ids already notified. The file is a
// flat JSON array of ids, sorted on write, because it lives under version
// control and must stay diff-reviewable.
package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jobwatch/internal/domain"
)

// ErrIO marks a state-file write failure. Load never returns it: a missing
// or corrupt file degrades to an empty set with a warning, since the first
// run has no history.
var ErrIO = errors.New("seen store io error")

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads the persisted set. Fails soft: warnings describe why an empty
// set came back instead of file contents.
func (s *Store) Load() (domain.SeenSet, []string) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewSeenSet(), []string{fmt.Sprintf("seen file %s not found; starting with empty set", s.path)}
		}
		return domain.NewSeenSet(), []string{fmt.Sprintf("seen file %s unreadable (%v); starting with empty set", s.path, err)}
	}

	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return domain.NewSeenSet(), []string{fmt.Sprintf("seen file %s corrupt (%v); starting with empty set", s.path, err)}
	}
	return domain.NewSeenSet(ids...), nil
}

// Save writes the set atomically via tmp+rename. A write failure is fatal
// to the run: losing the update risks duplicate notifications next time.
func (s *Store) Save(set domain.SeenSet) error {
	b, err := json.MarshalIndent(set.SortedIDs(), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrIO, err)
	}
	b = append(b, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", ErrIO, dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrIO, s.path, err)
	}
	return nil
}
