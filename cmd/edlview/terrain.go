package main

import (
	"math/rand/v2"

	"github.com/furui/fastnoiselite-go"
	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/orion"
	"github.com/oliverbestmann/edlview/pointcloud"
)

// generateTerrain scatters points over a fractal noise height field.
func generateTerrain(conf orion.TerrainConfig) []pointcloud.Point {
	noise := fastnoiselite.NewNoise()
	noise.Seed = int32(conf.Seed)
	noise.SetNoiseType(fastnoiselite.NoiseTypeOpenSimplex2)
	noise.FractalType = fastnoiselite.FractalTypeFBm
	noise.Frequency = float64(conf.Frequency)
	noise.SetFractalOctaves(5)

	rng := rand.New(rand.NewPCG(uint64(conf.Seed), 0x5eed))

	half := conf.Size / 2

	points := make([]pointcloud.Point, 0, conf.Points)
	for range conf.Points {
		x := rng.Float32() * conf.Size
		z := rng.Float32() * conf.Size

		// in [-1, 1]
		h := float32(noise.GetNoise2D(fastnoiselite.FNLfloat(x), fastnoiselite.FNLfloat(z)))

		points = append(points, pointcloud.Point{
			Position: glm.Vec3f{x - half, h * conf.Height, z - half},
			Color:    terrainColor(h),
		})
	}

	return points
}

var terrainColors = []glm.Vec3f{
	{0.16, 0.32, 0.55},
	{0.22, 0.45, 0.18},
	{0.42, 0.36, 0.22},
	{0.55, 0.52, 0.50},
	{0.95, 0.95, 0.97},
}

// terrainColor maps a height in [-1, 1] onto a water to snow gradient.
func terrainColor(h float32) [4]uint8 {
	t := min(max((h+1)/2, 0), 1) * float32(len(terrainColors)-1)

	idx := min(int(t), len(terrainColors)-2)
	frac := t - float32(idx)

	lo, hi := terrainColors[idx], terrainColors[idx+1]
	color := lo.MulScalar(1 - frac).Add(hi.MulScalar(frac))

	return [4]uint8{
		uint8(color[0]*255 + 0.5),
		uint8(color[1]*255 + 0.5),
		uint8(color[2]*255 + 0.5),
		255,
	}
}

// terrainApp shows the generated terrain and orbits the camera around it.
type terrainApp struct {
	terrain orion.TerrainConfig

	// degrees per second
	orbit float32

	center   glm.Vec3f
	distance float32
}

func (a *terrainApp) Initialize(viewer *orion.Viewer) error {
	points := generateTerrain(a.terrain)

	geometry := pointcloud.BuildGeometry(points, pointcloud.BuildOptions{})
	viewer.Add(pointcloud.New("terrain", geometry))

	a.center = geometry.BoundingBox.Center()
	a.distance = a.terrain.Size * 0.9

	return a.Update(viewer, &orion.FrameTimes{})
}

func (a *terrainApp) Update(viewer *orion.Viewer, times *orion.FrameTimes) error {
	angle := glm.DegToRad(a.orbit * float32(times.Elapsed.Seconds()))
	sin, cos := glm.Sincos(angle)

	eye := a.center.Add(glm.Vec3f{
		cos * a.distance,
		a.distance * 0.5,
		sin * a.distance,
	})

	viewer.Camera().LookAt(eye, a.center, glm.Vec3f{0, 1, 0})

	return nil
}
