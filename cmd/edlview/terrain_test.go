package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/oliverbestmann/edlview/orion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTerrain() orion.TerrainConfig {
	return orion.TerrainConfig{
		Points:    2000,
		Seed:      7,
		Size:      50,
		Height:    5,
		Frequency: 0.02,
	}
}

func TestGenerateTerrain(t *testing.T) {
	conf := smallTerrain()

	points := generateTerrain(conf)
	require.Len(t, points, conf.Points)

	for _, point := range points {
		assert.InDelta(t, 0, point.Position[0], float64(conf.Size/2))
		assert.InDelta(t, 0, point.Position[2], float64(conf.Size/2))
		assert.InDelta(t, 0, point.Position[1], float64(conf.Height))
		assert.EqualValues(t, 255, point.Color[3])
	}

	// same seed, same terrain
	assert.Equal(t, points, generateTerrain(conf))

	conf.Seed = 8
	assert.NotEqual(t, points, generateTerrain(conf))
}

func TestTerrainColor(t *testing.T) {
	water := terrainColor(-1)
	assert.Greater(t, water[2], water[0])

	snow := terrainColor(1)
	assert.GreaterOrEqual(t, snow[0], uint8(240))
	assert.GreaterOrEqual(t, snow[1], uint8(240))

	// clamped outside of the range
	assert.Equal(t, water, terrainColor(-5))
	assert.Equal(t, snow, terrainColor(5))
}

func TestHeadlessBackendUnknown(t *testing.T) {
	_, _, err := headlessBackend("opengl", orion.DefaultConfig())
	require.Error(t, err)
}

func TestTerrainScreenshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.png")

	conf := orion.DefaultConfig()
	conf.Terrain = smallTerrain()
	conf.Screenshot.Width = 64
	conf.Screenshot.Height = 48
	conf.Screenshot.Path = path

	backend, release, err := headlessBackend("soft", conf)
	require.NoError(t, err)
	defer release()

	app := &terrainApp{terrain: conf.Terrain, orbit: 30}

	err = orion.RunHeadless(context.Background(), backend, orion.RunOptions{App: app, Config: conf})
	require.NoError(t, err)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, stat.Size())
}
