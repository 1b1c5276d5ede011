// Package calc turns a project's floors and cost configuration into area,
// cost and viability figures. Every function is pure: the same input
// always yields the same Summary.
package calc

import (
	"fmt"
	"sort"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/pkg/mathutil"
)

// FloorResult holds the derived figures of one floor.
type FloorResult struct {
	Floor           budget.Floor `json:"floor"`
	TotalArea       float64      `json:"total_area"`
	EquivalentArea  float64      `json:"equivalent_area"`
	ConstructedArea float64      `json:"constructed_area"`
	DirectCost      float64      `json:"direct_cost"`
}

// Line is a named amount, optionally with the percentage that produced it.
type Line struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage,omitempty"`
	Amount     float64 `json:"amount"`
}

// Input collects everything the aggregation needs.
type Input struct {
	Floors              []budget.Floor
	UnitCost            float64
	IndirectPercentages map[string]float64
	FixedIndirectCosts  map[string]float64
	StagePercentages    map[string]float64
	PrivateArea         float64
	AvgSalePricePerM2   float64
	LandArea            float64
	LandCostPerM2       float64
	UnitCount           int
	SiteAdminMonthly    map[string]float64
	ConstructionMonths  int
}

// Totals are the column sums of the floor table.
type Totals struct {
	TotalArea       float64 `json:"total_area"`
	EquivalentArea  float64 `json:"equivalent_area"`
	ConstructedArea float64 `json:"constructed_area"`
	DirectCost      float64 `json:"direct_cost"`
}

// Indicators are ratios derived from the totals. Any ratio whose
// denominator is zero is reported as 0.
type Indicators struct {
	DirectCostPerBuiltM2    float64 `json:"direct_cost_per_built_m2"`
	IndirectCostPerBuiltM2  float64 `json:"indirect_cost_per_built_m2"`
	TotalCostPerBuiltM2     float64 `json:"total_cost_per_built_m2"`
	LandShareOfTotalPct     float64 `json:"land_share_of_total_pct"`
	DirectShareOfTotalPct   float64 `json:"direct_share_of_total_pct"`
	IndirectShareOfTotalPct float64 `json:"indirect_share_of_total_pct"`
	BuiltToPrivateRatio     float64 `json:"built_to_private_ratio"`
	AvgDirectCostPerUnit    float64 `json:"avg_direct_cost_per_unit"`
}

// Summary is the complete budget result.
type Summary struct {
	Floors            []FloorResult `json:"floors"`
	Totals            Totals        `json:"totals"`
	VGV               float64       `json:"vgv"`
	IndirectItems     []Line        `json:"indirect_items"`
	FixedIndirect     []Line        `json:"fixed_indirect"`
	IndirectCostTotal float64       `json:"indirect_cost_total"`
	LandCostTotal     float64       `json:"land_cost_total"`
	GrandTotalCost    float64       `json:"grand_total_cost"`
	GrossProfit       float64       `json:"gross_profit"`
	MarginPct         float64       `json:"margin_pct"`
	Stages            []Line        `json:"stages"`
	CostByFloorType   []Line        `json:"cost_by_floor_type"`
	SiteAdminMonthly  float64       `json:"site_admin_monthly"`
	SiteAdminTotal    float64       `json:"site_admin_total"`
	Indicators        Indicators    `json:"indicators"`
}

// FloorFigures derives the areas and cost of a single floor.
func FloorFigures(f budget.Floor, unitCost float64) FloorResult {
	total := f.Area * float64(f.Repetition)
	equivalent := total * f.Coefficient
	constructed := 0.0
	if f.CountsAsBuilt {
		constructed = total
	}
	return FloorResult{
		Floor:           f,
		TotalArea:       total,
		EquivalentArea:  equivalent,
		ConstructedArea: constructed,
		DirectCost:      equivalent * unitCost,
	}
}

// VGV is the projected gross sales value.
func VGV(privateArea, avgSalePricePerM2 float64) float64 {
	return privateArea * avgSalePricePerM2
}

// Aggregate validates the floors and computes the full Summary.
func Aggregate(in Input) (Summary, error) {
	if in.UnitCost < 0 {
		return Summary{}, fmt.Errorf("%w: unit cost must not be negative", budget.ErrInvalid)
	}
	if in.ConstructionMonths < 0 {
		return Summary{}, fmt.Errorf("%w: construction months must not be negative", budget.ErrInvalid)
	}

	var s Summary
	s.Floors = make([]FloorResult, 0, len(in.Floors))
	byType := make(map[string]float64)
	for i, f := range in.Floors {
		if err := budget.ValidateFloor(f); err != nil {
			return Summary{}, fmt.Errorf("floor %d: %w", i+1, err)
		}
		r := FloorFigures(f, in.UnitCost)
		s.Floors = append(s.Floors, r)
		s.Totals.TotalArea += r.TotalArea
		s.Totals.EquivalentArea += r.EquivalentArea
		s.Totals.ConstructedArea += r.ConstructedArea
		s.Totals.DirectCost += r.DirectCost
		byType[f.Type] += r.DirectCost
	}

	s.VGV = VGV(in.PrivateArea, in.AvgSalePricePerM2)

	s.IndirectItems = percentLines(in.IndirectPercentages, s.VGV)
	s.FixedIndirect = amountLines(in.FixedIndirectCosts)
	for _, line := range s.IndirectItems {
		s.IndirectCostTotal += line.Amount
	}
	for _, line := range s.FixedIndirect {
		s.IndirectCostTotal += line.Amount
	}

	s.LandCostTotal = in.LandArea * in.LandCostPerM2
	s.GrandTotalCost = s.Totals.DirectCost + s.IndirectCostTotal + s.LandCostTotal
	s.GrossProfit = s.VGV - s.GrandTotalCost
	s.MarginPct = mathutil.CalculatePercentage(s.GrossProfit, s.VGV)

	s.Stages = percentLines(in.StagePercentages, s.Totals.DirectCost)
	s.CostByFloorType = amountLines(byType)

	for _, name := range sortedKeys(in.SiteAdminMonthly) {
		s.SiteAdminMonthly += in.SiteAdminMonthly[name]
	}
	s.SiteAdminTotal = s.SiteAdminMonthly * float64(in.ConstructionMonths)

	built := s.Totals.ConstructedArea
	s.Indicators = Indicators{
		DirectCostPerBuiltM2:    mathutil.SafeDivide(s.Totals.DirectCost, built),
		IndirectCostPerBuiltM2:  mathutil.SafeDivide(s.IndirectCostTotal, built),
		TotalCostPerBuiltM2:     mathutil.SafeDivide(s.GrandTotalCost, built),
		LandShareOfTotalPct:     mathutil.CalculatePercentage(s.LandCostTotal, s.GrandTotalCost),
		DirectShareOfTotalPct:   mathutil.CalculatePercentage(s.Totals.DirectCost, s.GrandTotalCost),
		IndirectShareOfTotalPct: mathutil.CalculatePercentage(s.IndirectCostTotal, s.GrandTotalCost),
		BuiltToPrivateRatio:     mathutil.SafeDivide(built, in.PrivateArea),
		AvgDirectCostPerUnit:    mathutil.SafeDivide(s.Totals.DirectCost, float64(in.UnitCount)),
	}

	return s, nil
}

// FromProject builds the aggregation input of a project.
func FromProject(p *budget.Project) Input {
	return Input{
		Floors:              p.Floors,
		UnitCost:            p.CostConfig.ConstructionCostPerM2,
		IndirectPercentages: p.IndirectCostPercentages.Values(),
		FixedIndirectCosts:  p.FixedIndirectCosts,
		StagePercentages:    p.StagePercentages.Values(),
		PrivateArea:         p.PrivateArea,
		AvgSalePricePerM2:   p.CostConfig.AvgSalePricePerM2,
		LandArea:            p.LandArea,
		LandCostPerM2:       p.CostConfig.LandCostPerM2,
		UnitCount:           p.UnitCount,
		SiteAdminMonthly:    p.SiteAdminCosts,
		ConstructionMonths:  p.ConstructionMonths,
	}
}

// Project aggregates a project directly.
func Project(p *budget.Project) (Summary, error) {
	return Aggregate(FromProject(p))
}

func percentLines(percentages map[string]float64, base float64) []Line {
	lines := make([]Line, 0, len(percentages))
	for _, name := range sortedKeys(percentages) {
		pct := percentages[name]
		lines = append(lines, Line{Name: name, Percentage: pct, Amount: mathutil.ApplyPercentage(base, pct)})
	}
	return lines
}

func amountLines(amounts map[string]float64) []Line {
	lines := make([]Line, 0, len(amounts))
	for _, name := range sortedKeys(amounts) {
		lines = append(lines, Line{Name: name, Amount: amounts[name]})
	}
	return lines
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
