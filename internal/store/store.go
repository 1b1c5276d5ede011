// Package store persists projects and historical percentage archives as
// JSON arrays in flat files. Every operation reads the whole file; writers
// within the process are serialized and each write replaces the file
// atomically. Concurrent writers in other processes are last-write-wins.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ciceromayk/parametrico/internal/budget"
)

// Store is the project repository backed by a single JSON file.
type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// New returns a store for the projects file at path.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger, now: time.Now}
}

// Path returns the projects file location.
func (s *Store) Path() string {
	return s.path
}

// Init creates the projects file and its directory if they are missing.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ensureFile(s.path)
}

func (s *Store) readAll() ([]*budget.Project, error) {
	var projects []*budget.Project
	if err := readJSON(s.path, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// List returns the summary of every stored project ordered by id.
func (s *Store) List() ([]budget.Summary, error) {
	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]budget.Summary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, p.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

// Load returns the project with the given id, with defaults filled in for
// fields older records lack. A missing id reports ok == false.
func (s *Store) Load(id int) (*budget.Project, bool, error) {
	projects, err := s.readAll()
	if err != nil {
		return nil, false, err
	}
	for _, p := range projects {
		if p.ID == id {
			p.Normalize()
			return p, true, nil
		}
	}
	return nil, false, nil
}

// Save inserts or replaces p and returns its id. A project with ID 0 gets
// max(existing)+1; CreatedAt is set only when zero. The caller's project
// receives the assigned ID and CreatedAt.
func (s *Store) Save(p *budget.Project) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: nil project", budget.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return 0, err
	}

	if p.ID == 0 {
		p.ID = nextID(projects)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC().Truncate(time.Second)
	}

	record := p.Clone()
	replaced := false
	for i, existing := range projects {
		if existing.ID == record.ID {
			record.CreatedAt = pickCreatedAt(existing.CreatedAt, record.CreatedAt)
			projects[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, record)
	}
	p.CreatedAt = record.CreatedAt

	if err := writeJSON(s.path, projects); err != nil {
		return 0, err
	}
	s.logger.Debug("project saved",
		zap.String("op", "store.Save"),
		zap.Int("id", record.ID),
		zap.Bool("replaced", replaced))
	return record.ID, nil
}

// Delete removes the project with the given id. Deleting a missing id is a no-op.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return err
	}

	kept := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return nil
	}

	if err := writeJSON(s.path, kept); err != nil {
		return err
	}
	s.logger.Debug("project deleted", zap.String("op", "store.Delete"), zap.Int("id", id))
	return nil
}

func nextID(projects []*budget.Project) int {
	maxID := 0
	for _, p := range projects {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

// pickCreatedAt keeps the stored creation time; it is never changed by a later save.
func pickCreatedAt(stored, incoming time.Time) time.Time {
	if stored.IsZero() {
		return incoming
	}
	return stored
}
