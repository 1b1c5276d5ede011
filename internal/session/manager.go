package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/internal/store"
)

var (
	// ErrNotFound is returned when a project or archive entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOpen is returned when an edit targets a project without an open session.
	ErrNotOpen = errors.New("project is not open")
)

// ProjectStore persists projects.
type ProjectStore interface {
	List() ([]budget.Summary, error)
	Load(id int) (*budget.Project, bool, error)
	Save(p *budget.Project) (int, error)
	Delete(id int) error
}

// ArchiveStore keeps historical percentage snapshots of one category.
type ArchiveStore interface {
	List() ([]store.Entry, error)
	Get(id int) (store.Entry, bool, error)
	Append(name string, percentages map[string]float64) (store.Entry, error)
}

// Manager holds the open sessions, keyed by project id.
type Manager struct {
	projects ProjectStore
	archives map[string]ArchiveStore
	defaults budget.Defaults
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[int]*Session
}

// NewManager wires the stores the sessions read from and save to.
func NewManager(projects ProjectStore, stages, indirect ArchiveStore, defaults budget.Defaults, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		projects: projects,
		archives: map[string]ArchiveStore{
			store.CategoryStages:   stages,
			store.CategoryIndirect: indirect,
		},
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[int]*Session),
	}
}

// List returns the stored projects.
func (m *Manager) List() ([]budget.Summary, error) {
	return m.projects.List()
}

// Create builds a project from input, saves it and opens a session on it.
func (m *Manager) Create(input budget.ProjectInput) (*Session, error) {
	p, err := budget.NewProject(input, m.defaults, m.now())
	if err != nil {
		return nil, err
	}
	id, err := m.projects.Save(p)
	if err != nil {
		return nil, fmt.Errorf("failed to save new project: %w", err)
	}

	s := New(p)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("project created",
		zap.String("op", "session.Create"),
		zap.Int("id", id),
		zap.String("name", p.Name))
	return s, nil
}

// Open returns the session of project id, loading it from the store when
// it is not open yet. An already open session keeps its unsaved edits.
func (m *Manager) Open(id int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s, nil
	}

	p, ok, err := m.projects.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: project %d", ErrNotFound, id)
	}

	s := New(p)
	m.sessions[id] = s
	m.logger.Debug("project opened", zap.String("op", "session.Open"), zap.Int("id", id))
	return s, nil
}

// Get returns the open session of project id.
func (m *Manager) Get(id int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %d", ErrNotOpen, id)
	}
	return s, nil
}

// Save persists the open session of project id.
func (m *Manager) Save(id int) (*budget.Project, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	p := s.snapshot()
	if _, err := m.projects.Save(p); err != nil {
		return nil, fmt.Errorf("failed to save project %d: %w", id, err)
	}
	s.markSaved(p)

	m.logger.Info("project saved", zap.String("op", "session.Save"), zap.Int("id", id))
	return p, nil
}

// Discard closes the session of project id without saving.
func (m *Manager) Discard(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: project %d", ErrNotOpen, id)
	}
	delete(m.sessions, id)
	m.logger.Debug("session discarded",
		zap.String("op", "session.Discard"),
		zap.Int("id", id),
		zap.Bool("dirty", s.Dirty()))
	return nil
}

// Delete removes project id from the store and closes its session.
func (m *Manager) Delete(id int) error {
	if err := m.projects.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	m.logger.Info("project deleted", zap.String("op", "session.Delete"), zap.Int("id", id))
	return nil
}

// Archive returns the archive of category.
func (m *Manager) Archive(category string) (ArchiveStore, error) {
	a, ok := m.archives[category]
	if !ok || a == nil {
		return nil, fmt.Errorf("%w: archive category %q", ErrNotFound, category)
	}
	return a, nil
}

// Reference looks up an archive entry.
func (m *Manager) Reference(category string, entryID int) (store.Entry, error) {
	a, err := m.Archive(category)
	if err != nil {
		return store.Entry{}, err
	}
	entry, ok, err := a.Get(entryID)
	if err != nil {
		return store.Entry{}, fmt.Errorf("failed to read %s archive: %w", category, err)
	}
	if !ok {
		return store.Entry{}, fmt.Errorf("%w: %s archive entry %d", ErrNotFound, category, entryID)
	}
	return entry, nil
}

// ArchiveStages stores the current stage percentages of project id under
// the project name.
func (m *Manager) ArchiveStages(id int) (store.Entry, error) {
	return m.archiveSet(id, store.CategoryStages, func(p *budget.Project) budget.PercentageSet {
		return p.StagePercentages
	})
}

// ArchiveIndirect stores the current indirect percentages of project id.
func (m *Manager) ArchiveIndirect(id int) (store.Entry, error) {
	return m.archiveSet(id, store.CategoryIndirect, func(p *budget.Project) budget.PercentageSet {
		return p.IndirectCostPercentages
	})
}

func (m *Manager) archiveSet(id int, category string, pick func(*budget.Project) budget.PercentageSet) (store.Entry, error) {
	s, err := m.Get(id)
	if err != nil {
		return store.Entry{}, err
	}
	a, err := m.Archive(category)
	if err != nil {
		return store.Entry{}, err
	}

	p := s.Project()
	entry, err := a.Append(p.Name, pick(p).Values())
	if err != nil {
		return store.Entry{}, fmt.Errorf("failed to archive %s of project %d: %w", category, id, err)
	}
	return entry, nil
}
