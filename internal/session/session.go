// Package session holds the editable state of open projects. A Session is
// the single owner of one project's in-memory record between loading and
// saving; every edit goes through one of its methods and either applies in
// full or, if validation fails, not at all.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/internal/calc"
	"github.com/ciceromayk/parametrico/internal/redistribute"
	"github.com/ciceromayk/parametrico/internal/store"
	"github.com/ciceromayk/parametrico/pkg/constants"
	"github.com/ciceromayk/parametrico/pkg/mathutil"
)

// Session is the application state of one open project.
type Session struct {
	mu      sync.Mutex
	project *budget.Project
	stages  *redistribute.Tracker
	dirty   bool
}

// New opens a session over a copy of p.
func New(p *budget.Project) *Session {
	project := p.Clone()
	project.Normalize()
	return &Session{
		project: project,
		stages:  redistribute.NewTracker(project.StagePercentages.Values(), bandBounds(budget.ConstructionStages)),
	}
}

// ID returns the id of the project, 0 while it was never saved.
func (s *Session) ID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.ID
}

// Project returns a copy of the current project.
func (s *Session) Project() *budget.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Clone()
}

// Summary aggregates the current project.
func (s *Session) Summary() (calc.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calc.Project(s.project)
}

// Dirty reports whether the session holds unsaved edits.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// UpdateInfo replaces the general project data.
func (s *Session) UpdateInfo(input budget.ProjectInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.project.ApplyInput(input); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// SetFloors replaces the floor table. Fixed-coefficient types are snapped to
// their value before validation.
func (s *Session) SetFloors(floors []budget.Floor) ([]budget.Floor, error) {
	fixed := make([]budget.Floor, len(floors))
	for i, f := range floors {
		f = budget.FixCoefficient(f)
		if err := budget.ValidateFloor(f); err != nil {
			return nil, fmt.Errorf("floor %d: %w", i+1, err)
		}
		fixed[i] = f
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.Floors = fixed
	s.dirty = true
	return append([]budget.Floor(nil), fixed...), nil
}

// AddFloor appends the default floor.
func (s *Session) AddFloor() []budget.Floor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.Floors = append(s.project.Floors, budget.DefaultFloor())
	s.dirty = true
	return append([]budget.Floor(nil), s.project.Floors...)
}

// RemoveLastFloor drops the last floor, if any.
func (s *Session) RemoveLastFloor() []budget.Floor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.project.Floors); n > 0 {
		s.project.Floors = s.project.Floors[:n-1]
		s.dirty = true
	}
	return append([]budget.Floor(nil), s.project.Floors...)
}

// SetStagePercentage sets one construction stage, marks it manual and
// redistributes the difference over the other stages. The value must lie
// within the stage's band.
func (s *Session) SetStagePercentage(name string, value float64) (budget.PercentageSet, bool, error) {
	band, ok := budget.LookupBand(budget.ConstructionStages, name)
	if !ok {
		return nil, false, fmt.Errorf("%w: unknown construction stage %q", budget.ErrInvalid, name)
	}
	if clamped := redistribute.Clamp(value, redistribute.Range{Min: band.Min, Max: band.Max}); !mathutil.WithinTolerance(value, clamped, constants.PercentageTolerance) {
		return nil, false, fmt.Errorf("%w: %q must be within [%.2f, %.2f], got %.2f",
			budget.ErrInvalid, name, band.Min, band.Max, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStage(name, value, constants.ManualSource)
}

// ApplyStageReference copies one stage percentage from an archive entry,
// records the entry name as its source and redistributes. The copied value
// is clamped to the stage's band.
func (s *Session) ApplyStageReference(name string, entry store.Entry) (budget.PercentageSet, bool, error) {
	band, ok := budget.LookupBand(budget.ConstructionStages, name)
	if !ok {
		return nil, false, fmt.Errorf("%w: unknown construction stage %q", budget.ErrInvalid, name)
	}
	value, ok := entry.Percentages[name]
	if !ok {
		return nil, false, fmt.Errorf("%w: reference %q has no value for %q", budget.ErrInvalid, entry.Name, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStage(name, redistribute.Clamp(value, redistribute.Range{Min: band.Min, Max: band.Max}), entry.Name)
}

func (s *Session) setStage(name string, value float64, source string) (budget.PercentageSet, bool, error) {
	res, err := s.stages.Set(name, value)
	if err != nil {
		return nil, false, err
	}

	stages := s.project.StagePercentages.WithValues(res.Set)
	entry := stages[name]
	entry.Source = source
	stages[name] = entry

	s.project.StagePercentages = stages
	s.dirty = true
	return stages.Clone(), res.Redistributed, nil
}

// SetIndirectPercentage sets one indirect cost item. Indirect items are
// independent: the value is clamped to the item's band and nothing else moves.
func (s *Session) SetIndirectPercentage(name string, value float64) (budget.PercentageSet, error) {
	band, ok := budget.LookupBand(budget.IndirectCostItems, name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown indirect cost item %q", budget.ErrInvalid, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setIndirect(band, value, constants.ManualSource), nil
}

// ApplyIndirectReference copies one indirect item from an archive entry.
func (s *Session) ApplyIndirectReference(name string, entry store.Entry) (budget.PercentageSet, error) {
	band, ok := budget.LookupBand(budget.IndirectCostItems, name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown indirect cost item %q", budget.ErrInvalid, name)
	}
	value, ok := entry.Percentages[name]
	if !ok {
		return nil, fmt.Errorf("%w: reference %q has no value for %q", budget.ErrInvalid, entry.Name, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setIndirect(band, value, entry.Name), nil
}

func (s *Session) setIndirect(band budget.Band, value float64, source string) budget.PercentageSet {
	set := s.project.IndirectCostPercentages.Clone()
	set[band.Name] = budget.PercentageEntry{
		Percentage: redistribute.Clamp(value, redistribute.Range{Min: band.Min, Max: band.Max}),
		Source:     source,
	}
	s.project.IndirectCostPercentages = set
	s.dirty = true
	return set.Clone()
}

// SetSiteAdmin replaces the monthly site administration costs and the
// construction duration.
func (s *Session) SetSiteAdmin(monthly map[string]float64, months int) error {
	if months < constants.MinConstructionMonths || months > constants.MaxConstructionMonths {
		return fmt.Errorf("%w: construction months must be within [%d, %d], got %d",
			budget.ErrInvalid, constants.MinConstructionMonths, constants.MaxConstructionMonths, months)
	}
	costs, err := checkAmounts("site admin", monthly)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.SiteAdminCosts = costs
	s.project.ConstructionMonths = months
	s.dirty = true
	return nil
}

// SetFixedIndirect replaces the fixed indirect costs.
func (s *Session) SetFixedIndirect(amounts map[string]float64) error {
	costs, err := checkAmounts("fixed indirect", amounts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.FixedIndirectCosts = costs
	s.dirty = true
	return nil
}

// snapshot returns a copy for persisting.
func (s *Session) snapshot() *budget.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Clone()
}

// markSaved records the persisted id and creation time and clears the dirty flag.
func (s *Session) markSaved(p *budget.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.ID = p.ID
	s.project.CreatedAt = p.CreatedAt
	s.dirty = false
}

func checkAmounts(kind string, amounts map[string]float64) (map[string]float64, error) {
	out := make(map[string]float64, len(amounts))
	for name, amount := range amounts {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: %s cost name is required", budget.ErrInvalid, kind)
		}
		if amount < 0 {
			return nil, fmt.Errorf("%w: %s cost %q must not be negative", budget.ErrInvalid, kind, trimmed)
		}
		out[trimmed] = mathutil.Round(amount)
	}
	return out, nil
}

func bandBounds(bands []budget.Band) redistribute.Bounds {
	bounds := make(redistribute.Bounds, len(bands))
	for _, b := range bands {
		bounds[b.Name] = redistribute.Range{Min: b.Min, Max: b.Max}
	}
	return bounds
}
