package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/pkg/constants"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "data", "projects.json"), nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func newProject(t *testing.T, name string) *budget.Project {
	t.Helper()
	p, err := budget.NewProject(budget.ProjectInput{Name: name, LandArea: 500, PrivateArea: 1200, UnitCount: 10}, budget.StandardDefaults(), fixedNow)
	require.NoError(t, err)
	return p
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	p, ok, err := s.Load(1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestStoreInitCreatesFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	// Init leaves an existing file alone.
	_, err = s.Save(newProject(t, "Alfa"))
	require.NoError(t, err)
	require.NoError(t, s.Init())
	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStoreSaveAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Save(newProject(t, "Alfa"))
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := s.Save(newProject(t, "Beta"))
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	require.NoError(t, s.Delete(1))

	third, err := s.Save(newProject(t, "Gama"))
	require.NoError(t, err)
	assert.Equal(t, 3, third, "ids follow the current maximum")

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Beta", list[0].Name)
	assert.Equal(t, "Gama", list[1].Name)
}

func TestStoreSaveReplacesAndPreservesCreatedAt(t *testing.T) {
	s := newTestStore(t)
	p := newProject(t, "Alfa")

	id, err := s.Save(p)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	p.Name = "Alfa Revisado"
	p.CreatedAt = fixedNow.Add(48 * time.Hour)
	_, err = s.Save(p)
	require.NoError(t, err)

	loaded, ok, err := s.Load(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Alfa Revisado", loaded.Name)
	assert.True(t, loaded.CreatedAt.Equal(fixedNow), "created_at must not change, got %s", loaded.CreatedAt)
	assert.True(t, p.CreatedAt.Equal(fixedNow))

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStoreSaveSetsMissingCreatedAt(t *testing.T) {
	s := newTestStore(t)
	p := newProject(t, "Alfa")
	p.CreatedAt = time.Time{}

	_, err := s.Save(p)
	require.NoError(t, err)
	assert.True(t, p.CreatedAt.Equal(fixedNow))
}

func TestStoreSaveKeepsCallerIndependent(t *testing.T) {
	s := newTestStore(t)
	p := newProject(t, "Alfa")
	id, err := s.Save(p)
	require.NoError(t, err)

	p.Floors[0].Area = 999

	loaded, _, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, loaded.Floors[0].Area)
}

func TestStoreDeleteMissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save(newProject(t, "Alfa"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(42))

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	p := newProject(t, "Alfa")
	p.Floors = append(p.Floors, budget.Floor{Name: "Garagem", Type: "Garagem (Subsolo)", Repetition: 2, Coefficient: 0.6, Area: 400, CountsAsBuilt: true})
	p.StagePercentages["Pintura"] = budget.PercentageEntry{Percentage: 6.5, Source: "Residencial Aurora"}
	p.FixedIndirectCosts["Stand de Vendas"] = 120000

	id, err := s.Save(p)
	require.NoError(t, err)

	loaded, ok, err := s.Load(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.Floors, loaded.Floors)
	assert.Equal(t, p.StagePercentages, loaded.StagePercentages)
	assert.Equal(t, p.IndirectCostPercentages, loaded.IndirectCostPercentages)
	assert.Equal(t, 120000.0, loaded.FixedIndirectCosts["Stand de Vendas"])
	assert.Equal(t, p.CostConfig, loaded.CostConfig)
}

func TestStoreLoadsLegacyRecords(t *testing.T) {
	s := newTestStore(t)
	legacy := `[{
		"id": 7,
		"name": "Antigo",
		"land_area": 300,
		"private_area": 900,
		"unit_count": 6,
		"created_at": "2023-01-10T08:00:00Z",
		"stage_percentages": {"Pintura": 5.5},
		"floors": [{"name": "Tipo", "type": "Área Privativa (Autônoma)", "repetition": 3, "coefficient": 1, "area": 300, "counts_as_built": true}]
	}]`
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacy), 0o644))

	p, ok, err := s.Load(7)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, budget.PercentageEntry{Percentage: 5.5, Source: constants.ManualSource}, p.StagePercentages["Pintura"])
	assert.Len(t, p.StagePercentages, len(budget.ConstructionStages))
	assert.Len(t, p.IndirectCostPercentages, len(budget.IndirectCostItems))
	assert.Equal(t, constants.DefaultConstructionMonths, p.ConstructionMonths)
	assert.NotNil(t, p.FixedIndirectCosts)
	assert.Len(t, p.SiteAdminCosts, len(budget.SiteAdminItems))
}

func TestStoreCorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.List()
	assert.Error(t, err)

	_, err = s.Save(newProject(t, "Alfa"))
	assert.Error(t, err)
}

func TestStoreSaveNil(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save(nil)
	assert.ErrorIs(t, err, budget.ErrInvalid)
}
