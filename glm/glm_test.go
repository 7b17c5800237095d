package glm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat4OfIsColumnMajor(t *testing.T) {
	m := Mat4Of([4][4]float32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	})

	assert.Equal(t, Vec4f{5, 6, 7, 8}, m.Column(1))
	assert.Equal(t, float32(13), m[12])
}

func TestMulIdentity(t *testing.T) {
	m := TranslationMat4[float32](1, 2, 3).Scale(2, 2, 2)
	assert.Equal(t, m, m.Mul(IdentityMat4[float32]()))
	assert.Equal(t, m, IdentityMat4[float32]().Mul(m))
}

func TestTranslateTransformsPoint(t *testing.T) {
	m := TranslationMat4[float64](1, 2, 3)
	assert.Equal(t, Vec4d{2, 3, 4, 1}, m.Transform(Vec4d{1, 1, 1, 1}))
}

func TestPerspectiveMapsNearAndFar(t *testing.T) {
	const near, far = 0.5, 100.0
	proj := Perspective[float64](DegToRad(90), 1, near, far)

	ndc := func(z float64) float64 {
		clip := proj.Transform(Vec4d{0, 0, -z, 1})
		return clip[2] / clip[3]
	}

	assert.InDelta(t, -1, ndc(near), 1e-9)
	assert.InDelta(t, 1, ndc(far), 1e-9)

	// w carries the linear view depth
	assert.InDelta(t, 7, proj.Transform(Vec4d{0, 0, -7, 1})[3], 1e-9)
}

func TestOrthographicIdentity(t *testing.T) {
	proj := Orthographic[float32](-1, 1, -1, 1, -1, 1)
	assert.Equal(t, ScaleMat4[float32](1, 1, -1), proj)
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	view := LookAt(Vec3d{0, 0, 5}, Vec3d{}, Vec3d{0, 1, 0})

	eye := view.Transform(Vec4d{0, 0, 5, 1})
	assert.InDeltaSlice(t, []float64{0, 0, 0, 1}, eye[:], 1e-9)

	center := view.Transform(Vec4d{0, 0, 0, 1})
	assert.InDelta(t, -5, center[2], 1e-9)
}

func TestRotationZ(t *testing.T) {
	m := RotationZMat4[float32](Rad(math.Pi / 2))
	v := m.Transform(Vec4f{1, 0, 0, 1})
	assert.InDeltaSlice(t, []float32{0, 1, 0, 1}, v[:], 1e-5)
}

func TestBox3(t *testing.T) {
	box := Box3FromPoints(Vec3f{1, 2, 3}, Vec3f{-1, 4, 0}, Vec3f{0, 0, 1})

	assert.Equal(t, Vec3f{-1, 0, 0}, box.Min)
	assert.Equal(t, Vec3f{1, 4, 3}, box.Max)
	assert.Equal(t, Vec3f{2, 4, 3}, box.Size())
	assert.True(t, box.Contains(Vec3f{0, 1, 1}))
	assert.False(t, box.Contains(Vec3f{0, 5, 1}))
}

func TestBox3Octants(t *testing.T) {
	box := Box3f{Max: Vec3f{2, 2, 2}}

	for idx := range 8 {
		octant := box.Octant(idx)
		assert.Equal(t, Vec3f{1, 1, 1}, octant.Size())
		assert.Equal(t, idx, box.OctantOf(octant.Center()))
	}
}
