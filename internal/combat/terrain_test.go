package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynmech/internal/config"
	"dynmech/internal/util"
)

func TestGenerateGridIsSeeded(t *testing.T) {
	ts := NewTerrainSet(nil)
	a, err := GenerateGrid(8, 6, ts, util.New(3))
	require.NoError(t, err)
	b, err := GenerateGrid(8, 6, ts, util.New(3))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for _, row := range a.Tiles {
		require.Len(t, row, 8)
		for _, id := range row {
			assert.Equal(t, id, ts.Get(id).ID)
		}
	}
}

func TestGenerateGridRejectsEmpty(t *testing.T) {
	_, err := GenerateGrid(0, 3, NewTerrainSet(nil), util.New(1))
	assert.Error(t, err)
}

func TestTerrainSetFallsBack(t *testing.T) {
	ts := NewTerrainSet(nil)
	assert.Equal(t, "normal", ts.Get("quicksand").ID)
	assert.Equal(t, 2, ts.Get("lava").Hazard)

	custom := NewTerrainSet(&config.TerrainConfig{Default: "plain"})
	assert.Equal(t, "plain", custom.Get("anything").ID)
	assert.Equal(t, 1, custom.Get("anything").MovementCost)

	g, err := GenerateGrid(2, 2, custom, util.New(1))
	require.NoError(t, err)
	assert.Equal(t, "plain", g.TerrainAt(Pos{1, 1}))
}

func TestGridBounds(t *testing.T) {
	g := NewGrid(3, 2, "normal")
	assert.True(t, g.InBounds(Pos{2, 1}))
	assert.False(t, g.InBounds(Pos{3, 1}))
	assert.False(t, g.InBounds(Pos{0, -1}))
	assert.Equal(t, "", g.TerrainAt(Pos{5, 5}))
}
