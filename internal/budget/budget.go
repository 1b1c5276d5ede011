// Package budget defines the typed records of a parametric budget: projects,
// floors, cost configuration and bounded percentage sets, together with the
// normative reference tables they are checked against.
package budget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ciceromayk/parametrico/pkg/constants"
)

// ErrInvalid marks user input that must be rejected without mutation.
var ErrInvalid = errors.New("invalid input")

// CostConfig holds the per-m² prices of a project.
type CostConfig struct {
	LandCostPerM2         float64 `json:"land_cost_per_m2" yaml:"landCostPerM2" validate:"gte=0"`
	ConstructionCostPerM2 float64 `json:"construction_cost_per_m2" yaml:"constructionCostPerM2" validate:"gte=0"`
	AvgSalePricePerM2     float64 `json:"avg_sale_price_per_m2" yaml:"avgSalePricePerM2" validate:"gte=0"`
}

// Floor is one floor row of the building description.
type Floor struct {
	Name          string  `json:"name" validate:"required"`
	Type          string  `json:"type" validate:"required"`
	Repetition    int     `json:"repetition" validate:"gte=1"`
	Coefficient   float64 `json:"coefficient" validate:"gte=0"`
	Area          float64 `json:"area" validate:"gte=0"`
	CountsAsBuilt bool    `json:"counts_as_built"`
}

// DefaultFloor returns the floor added to new projects and by "add floor".
func DefaultFloor() Floor {
	return Floor{
		Name:          "Pavimento Tipo",
		Type:          DefaultFloorType,
		Repetition:    1,
		Coefficient:   1.00,
		Area:          100.0,
		CountsAsBuilt: true,
	}
}

// PercentageEntry is a percentage together with where it came from:
// "Manual" or the name of a historical project used as reference.
type PercentageEntry struct {
	Percentage float64 `json:"percentage"`
	Source     string  `json:"source"`
}

// UnmarshalJSON accepts the object form and the bare-number form written by
// older revisions of the projects file.
func (e *PercentageEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var value float64
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return fmt.Errorf("percentage entry: %w", err)
		}
		e.Percentage = value
		e.Source = constants.ManualSource
		return nil
	}

	type plain PercentageEntry
	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*e = PercentageEntry(decoded)
	if e.Source == "" {
		e.Source = constants.ManualSource
	}
	return nil
}

// PercentageSet maps an item name to its percentage entry.
type PercentageSet map[string]PercentageEntry

// NewPercentageSet builds a set with every band at its default value.
func NewPercentageSet(bands []Band) PercentageSet {
	set := make(PercentageSet, len(bands))
	for _, b := range bands {
		set[b.Name] = PercentageEntry{Percentage: b.Default, Source: constants.ManualSource}
	}
	return set
}

// Values returns the bare percentages.
func (s PercentageSet) Values() map[string]float64 {
	values := make(map[string]float64, len(s))
	for name, entry := range s {
		values[name] = entry.Percentage
	}
	return values
}

// WithValues returns a copy where each percentage is replaced by values[name].
// Sources are kept; items absent from values are copied unchanged.
func (s PercentageSet) WithValues(values map[string]float64) PercentageSet {
	out := s.Clone()
	for name, value := range values {
		entry := out[name]
		if entry.Source == "" {
			entry.Source = constants.ManualSource
		}
		entry.Percentage = value
		out[name] = entry
	}
	return out
}

// Clone returns an independent copy of the set.
func (s PercentageSet) Clone() PercentageSet {
	if s == nil {
		return nil
	}
	out := make(PercentageSet, len(s))
	for name, entry := range s {
		out[name] = entry
	}
	return out
}

// Total returns the sum of all percentages.
func (s PercentageSet) Total() float64 {
	total := 0.0
	for _, name := range s.Names() {
		total += s[name].Percentage
	}
	return total
}

// Names returns the item names sorted alphabetically.
func (s PercentageSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Project is a persisted budget study.
type Project struct {
	ID                      int                `json:"id"`
	Name                    string             `json:"name"`
	LandArea                float64            `json:"land_area"`
	PrivateArea             float64            `json:"private_area"`
	UnitCount               int                `json:"unit_count"`
	Address                 string             `json:"address"`
	CostConfig              CostConfig         `json:"cost_config"`
	Floors                  []Floor            `json:"floors"`
	StagePercentages        PercentageSet      `json:"stage_percentages"`
	IndirectCostPercentages PercentageSet      `json:"indirect_cost_percentages"`
	FixedIndirectCosts      map[string]float64 `json:"fixed_indirect_costs"`
	SiteAdminCosts          map[string]float64 `json:"site_admin_costs"`
	ConstructionMonths      int                `json:"construction_months"`
	CreatedAt               time.Time          `json:"created_at"`
}

// Summary is the listing view of a project.
type Summary struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the listing view of the project.
func (p *Project) Summary() Summary {
	return Summary{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Floors = append([]Floor(nil), p.Floors...)
	out.StagePercentages = p.StagePercentages.Clone()
	out.IndirectCostPercentages = p.IndirectCostPercentages.Clone()
	out.FixedIndirectCosts = cloneAmounts(p.FixedIndirectCosts)
	out.SiteAdminCosts = cloneAmounts(p.SiteAdminCosts)
	return &out
}

// Normalize fills fields that older records may lack with their defaults.
func (p *Project) Normalize() {
	if p.Floors == nil {
		p.Floors = []Floor{}
	}
	p.StagePercentages = fillBands(p.StagePercentages, ConstructionStages)
	p.IndirectCostPercentages = fillBands(p.IndirectCostPercentages, IndirectCostItems)
	if p.FixedIndirectCosts == nil {
		p.FixedIndirectCosts = map[string]float64{}
	}
	if p.SiteAdminCosts == nil {
		p.SiteAdminCosts = DefaultSiteAdminCosts()
	}
	if p.ConstructionMonths <= 0 {
		p.ConstructionMonths = constants.DefaultConstructionMonths
	}
}

// DefaultSiteAdminCosts returns the default monthly site administration costs.
func DefaultSiteAdminCosts() map[string]float64 {
	costs := make(map[string]float64, len(SiteAdminItems))
	for _, item := range SiteAdminItems {
		costs[item.Name] = item.Monthly
	}
	return costs
}

func fillBands(set PercentageSet, bands []Band) PercentageSet {
	if set == nil {
		return NewPercentageSet(bands)
	}
	for _, b := range bands {
		if _, ok := set[b.Name]; !ok {
			set[b.Name] = PercentageEntry{Percentage: b.Default, Source: constants.ManualSource}
		}
	}
	return set
}

func cloneAmounts(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
