package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ciceromayk/parametrico/internal/budget"
)

// Archive categories.
const (
	CategoryStages   = "stages"
	CategoryIndirect = "indirect"
)

// Entry is a named percentage snapshot kept for reuse as a reference.
type Entry struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Date        time.Time          `json:"date"`
	Percentages map[string]float64 `json:"percentages"`
}

// Archive is an append-only list of entries stored in one JSON file.
type Archive struct {
	category string
	path     string
	logger   *zap.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewArchive returns the archive of category stored at path.
func NewArchive(category, path string, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{category: category, path: path, logger: logger, now: time.Now}
}

// Category returns the archive category.
func (a *Archive) Category() string {
	return a.category
}

// Init creates the archive file if it is missing.
func (a *Archive) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ensureFile(a.path)
}

// List returns every entry in insertion order.
func (a *Archive) List() ([]Entry, error) {
	var entries []Entry
	if err := readJSON(a.path, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Get returns the entry with the given id.
func (a *Archive) Get(id int) (Entry, bool, error) {
	entries, err := a.List()
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Append stores a copy of percentages under name and returns the new entry.
func (a *Archive) Append(name string, percentages map[string]float64) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, fmt.Errorf("%w: archive entry name is required", budget.ErrInvalid)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := a.List()
	if err != nil {
		return Entry{}, err
	}

	maxID := 0
	for _, e := range entries {
		if e.ID > maxID {
			maxID = e.ID
		}
	}

	copied := make(map[string]float64, len(percentages))
	for k, v := range percentages {
		copied[k] = v
	}
	entry := Entry{
		ID:          maxID + 1,
		Name:        name,
		Date:        a.now().UTC().Truncate(time.Second),
		Percentages: copied,
	}

	if err := writeJSON(a.path, append(entries, entry)); err != nil {
		return Entry{}, err
	}
	a.logger.Info("archive entry appended",
		zap.String("op", "store.Archive.Append"),
		zap.String("category", a.category),
		zap.Int("id", entry.ID),
		zap.String("name", entry.Name))
	return entry, nil
}
