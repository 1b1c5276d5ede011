package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciceromayk/parametrico/internal/budget"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a := NewArchive(CategoryStages, filepath.Join(t.TempDir(), "historico_direto.json"), nil)
	a.now = func() time.Time { return fixedNow }
	return a
}

func TestArchiveAppendAndGet(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.Init())

	list, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	first, err := a.Append("Residencial Aurora", map[string]float64{"Pintura": 6})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.True(t, first.Date.Equal(fixedNow))

	second, err := a.Append("  Edifício Sol  ", map[string]float64{"Pintura": 4})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, "Edifício Sol", second.Name)

	got, ok, err := a.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Residencial Aurora", got.Name)
	assert.Equal(t, 6.0, got.Percentages["Pintura"])

	_, ok, err = a.Get(99)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err = a.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestArchiveAppendCopiesPercentages(t *testing.T) {
	a := newTestArchive(t)
	values := map[string]float64{"Pintura": 6}

	entry, err := a.Append("Aurora", values)
	require.NoError(t, err)
	values["Pintura"] = 1

	assert.Equal(t, 6.0, entry.Percentages["Pintura"])
	stored, _, err := a.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, stored.Percentages["Pintura"])
}

func TestArchiveAppendRequiresName(t *testing.T) {
	a := newTestArchive(t)
	_, err := a.Append("   ", nil)
	assert.ErrorIs(t, err, budget.ErrInvalid)
}
