package session

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/internal/redistribute"
	"github.com/ciceromayk/parametrico/internal/store"
	"github.com/ciceromayk/parametrico/pkg/constants"
	"github.com/ciceromayk/parametrico/pkg/testutil"
)

const (
	structure = "Estrutura (Supraestrutura)"
	painting  = "Pintura"
	brokerage = "Corretagem"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	return NewManager(
		store.New(filepath.Join(dir, "projects.json"), nil),
		store.NewArchive(store.CategoryStages, filepath.Join(dir, "historico_direto.json"), nil),
		store.NewArchive(store.CategoryIndirect, filepath.Join(dir, "historico_indireto.json"), nil),
		budget.StandardDefaults(),
		nil,
	)
}

func createProject(t *testing.T, m *Manager) *Session {
	t.Helper()
	s, err := m.Create(budget.ProjectInput{Name: "Residencial Aurora", LandArea: 1000, PrivateArea: 2000, UnitCount: 20})
	require.NoError(t, err)
	return s
}

func TestSetStagePercentageRedistributes(t *testing.T) {
	s := createProject(t, newTestManager(t))

	stages, redistributed, err := s.SetStagePercentage(structure, 18)
	require.NoError(t, err)
	assert.True(t, redistributed)
	assert.Equal(t, 18.0, stages[structure].Percentage)
	assert.Equal(t, constants.ManualSource, stages[structure].Source)
	assert.InDelta(t, 100, stages.Total(), 1e-6)

	// Others shrink by 2 in proportion to their previous share of 84.
	assert.InDelta(t, 8-2*8.0/84, stages["Serviços Preliminares e Fundações"].Percentage, 1e-9)
	assert.True(t, s.Dirty())

	// A second edit is measured against the settled set.
	stages, _, err = s.SetStagePercentage(painting, 6)
	require.NoError(t, err)
	assert.Equal(t, 6.0, stages[painting].Percentage)
	assert.InDelta(t, 100, stages.Total(), 1e-6)
}

func TestSetStagePercentageUnchangedValue(t *testing.T) {
	s := createProject(t, newTestManager(t))
	_, redistributed, err := s.SetStagePercentage(painting, 5)
	require.NoError(t, err)
	assert.False(t, redistributed)
}

func TestSetStagePercentageRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		stage string
		value float64
	}{
		{"Unknown stage", "Telhado", 5},
		{"Below band", painting, 3.9},
		{"Above band", painting, 8.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			s := createProject(t, m)
			before := s.Project().StagePercentages

			_, _, err := s.SetStagePercentage(tt.stage, tt.value)
			assert.ErrorIs(t, err, budget.ErrInvalid)
			assert.Equal(t, before, s.Project().StagePercentages)
			assert.False(t, s.Dirty())
		})
	}
}

func TestStageBandsHoldAfterEdits(t *testing.T) {
	s := createProject(t, newTestManager(t))

	stages, _, err := s.SetStagePercentage(structure, 22)
	require.NoError(t, err)
	stages, _, err = s.SetStagePercentage("Instalações (Elétrica e Hidráulica)", 18)
	require.NoError(t, err)

	for _, band := range budget.ConstructionStages {
		v := stages[band.Name].Percentage
		assert.GreaterOrEqual(t, v, band.Min-1e-9, band.Name)
		assert.LessOrEqual(t, v, band.Max+1e-9, band.Name)
	}
}

func TestApplyStageReference(t *testing.T) {
	s := createProject(t, newTestManager(t))
	entry := store.Entry{ID: 3, Name: "Edifício Sol", Percentages: map[string]float64{painting: 7, structure: 30}}

	stages, redistributed, err := s.ApplyStageReference(painting, entry)
	require.NoError(t, err)
	assert.True(t, redistributed)
	assert.Equal(t, budget.PercentageEntry{Percentage: 7, Source: "Edifício Sol"}, stages[painting])
	assert.InDelta(t, 100, stages.Total(), 1e-6)

	// Reference values are held to the stage band.
	stages, _, err = s.ApplyStageReference(structure, entry)
	require.NoError(t, err)
	assert.Equal(t, 22.0, stages[structure].Percentage)

	_, _, err = s.ApplyStageReference("Revestimentos de Piso", entry)
	assert.ErrorIs(t, err, budget.ErrInvalid)
}

func TestSetIndirectPercentageClampsWithoutRedistributing(t *testing.T) {
	s := createProject(t, newTestManager(t))
	before := s.Project().IndirectCostPercentages

	set, err := s.SetIndirectPercentage(brokerage, 9)
	require.NoError(t, err)
	assert.Equal(t, 5.0, set[brokerage].Percentage)

	for name, entry := range before {
		if name != brokerage {
			assert.Equal(t, entry, set[name], name)
		}
	}

	_, err = s.SetIndirectPercentage("Seguro", 1)
	assert.ErrorIs(t, err, budget.ErrInvalid)
}

func TestApplyIndirectReference(t *testing.T) {
	s := createProject(t, newTestManager(t))
	entry := store.Entry{ID: 1, Name: "Edifício Sol", Percentages: map[string]float64{"Publicidade": 1.2}}

	set, err := s.ApplyIndirectReference("Publicidade", entry)
	require.NoError(t, err)
	assert.Equal(t, budget.PercentageEntry{Percentage: 1.2, Source: "Edifício Sol"}, set["Publicidade"])
}

func TestFloorEdits(t *testing.T) {
	s := createProject(t, newTestManager(t))

	floors := s.AddFloor()
	assert.Len(t, floors, 2)

	floors, err := s.SetFloors([]budget.Floor{
		{Name: "Tipo", Type: budget.DefaultFloorType, Repetition: 8, Coefficient: 0.3, Area: 250, CountsAsBuilt: true},
		{Name: "Garagem", Type: "Garagem (Subsolo)", Repetition: 1, Coefficient: 0.7, Area: 600, CountsAsBuilt: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, floors[0].Coefficient, "fixed coefficient types snap to their value")

	_, err = s.SetFloors([]budget.Floor{{Name: "Varanda", Type: "Varandas", Repetition: 1, Coefficient: 0.2, Area: 10}})
	assert.ErrorIs(t, err, budget.ErrInvalid)
	assert.Len(t, s.Project().Floors, 2, "rejected floors leave the table untouched")

	floors = s.RemoveLastFloor()
	assert.Len(t, floors, 1)
	floors = s.RemoveLastFloor()
	assert.Empty(t, floors)
	floors = s.RemoveLastFloor()
	assert.Empty(t, floors)
}

func TestSiteAdminAndFixedIndirect(t *testing.T) {
	s := createProject(t, newTestManager(t))

	require.NoError(t, s.SetSiteAdmin(map[string]float64{"Engenheiro Residente": 16000}, 24))
	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 16000.0*24, summary.SiteAdminTotal)

	assert.ErrorIs(t, s.SetSiteAdmin(nil, 0), budget.ErrInvalid)
	assert.ErrorIs(t, s.SetSiteAdmin(nil, 61), budget.ErrInvalid)
	assert.ErrorIs(t, s.SetSiteAdmin(map[string]float64{"Vigia": -1}, 12), budget.ErrInvalid)

	require.NoError(t, s.SetFixedIndirect(map[string]float64{" Stand de Vendas ": 150000}))
	assert.Equal(t, map[string]float64{"Stand de Vendas": 150000}, s.Project().FixedIndirectCosts)
	assert.ErrorIs(t, s.SetFixedIndirect(map[string]float64{"": 1}), budget.ErrInvalid)

	require.NoError(t, s.SetFixedIndirect(map[string]float64{"Maquete": 1234.567}))
	assert.Equal(t, 1234.57, s.Project().FixedIndirectCosts["Maquete"])
}

func TestUpdateInfo(t *testing.T) {
	s := createProject(t, newTestManager(t))

	require.NoError(t, s.UpdateInfo(budget.ProjectInput{Name: "Aurora II", LandArea: 900, PrivateArea: 1800, UnitCount: 16, Address: "Rua A, 10"}))
	p := s.Project()
	assert.Equal(t, "Aurora II", p.Name)
	assert.Equal(t, "Rua A, 10", p.Address)

	err := s.UpdateInfo(budget.ProjectInput{Name: "", UnitCount: 1})
	assert.ErrorIs(t, err, budget.ErrInvalid)
	assert.Equal(t, "Aurora II", s.Project().Name)
}

func TestSessionProjectIsCopy(t *testing.T) {
	s := createProject(t, newTestManager(t))
	p := s.Project()
	p.Floors[0].Area = 1
	p.StagePercentages[painting] = budget.PercentageEntry{Percentage: 99}

	again := s.Project()
	assert.Equal(t, 100.0, again.Floors[0].Area)
	assert.Equal(t, 5.0, again.StagePercentages[painting].Percentage)
}

func TestSessionSummaryMatchesCalc(t *testing.T) {
	s := createProject(t, newTestManager(t))
	summary, err := s.Summary()
	require.NoError(t, err)

	assert.Equal(t, 100.0, summary.Totals.EquivalentArea)
	assert.Equal(t, 450000.0, summary.Totals.DirectCost)
	assert.Equal(t, 20000000.0, summary.VGV)
	assert.Len(t, summary.Stages, len(budget.ConstructionStages))
	line := testutil.FindLine(summary.Stages, painting)
	require.NotNil(t, line)
	assert.InDelta(t, 22500.0, line.Amount, 1e-6)
	assert.False(t, math.IsNaN(summary.MarginPct))
}

func TestBandBounds(t *testing.T) {
	bounds := bandBounds(budget.ConstructionStages)
	assert.Equal(t, redistribute.Range{Min: 4, Max: 8}, bounds[painting])
}
