package scene

import (
	"testing"

	"github.com/oliverbestmann/edlview/glm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackgroundClearColor(t *testing.T) {
	tests := []struct {
		background Background
		want       glm.Vec4f
	}{
		{BackgroundSkybox, glm.Vec4f{0, 0, 0, 0}},
		{BackgroundGradient, glm.Vec4f{0, 0, 0, 0}},
		{BackgroundBlack, glm.Vec4f{0, 0, 0, 1}},
		{BackgroundWhite, glm.Vec4f{1, 1, 1, 1}},
		{BackgroundNone, glm.Vec4f{0, 0, 0, 0}},
		{Background(42), glm.Vec4f{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.background.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.background.ClearColor().ToVec())
		})
	}
}

func TestBackgroundText(t *testing.T) {
	var bg Background
	require.NoError(t, bg.UnmarshalText([]byte("white")))
	assert.Equal(t, BackgroundWhite, bg)

	text, err := BackgroundGradient.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "gradient", string(text))

	assert.Error(t, bg.UnmarshalText([]byte("purple")))
}

func TestColorDefaultIsWhite(t *testing.T) {
	var c Color
	assert.Equal(t, ColorWhite, c)
	assert.Equal(t, float32(0.5), c.WithAlpha(0.5).Alpha())
}

func TestTraverseFindsNestedLights(t *testing.T) {
	sc := New()
	inner := &Group{}
	light := &SpotLight{Intensity: 1}

	inner.Add(light)
	sc.Add(&Quad{})
	sc.Add(inner)

	var kinds []Kind
	sc.Traverse(func(node Node) { kinds = append(kinds, node.Kind()) })

	assert.Equal(t, []Kind{KindGroup, KindQuad, KindGroup, KindSpotLight}, kinds)
	assert.Equal(t, []*SpotLight{light}, sc.SpotLights())

	assert.True(t, sc.Remove(inner))
	assert.False(t, sc.Remove(inner))
	assert.Empty(t, sc.SpotLights())
}

func TestCameraSnapshotIsIndependent(t *testing.T) {
	camera := NewPerspectiveCamera(glm.DegToRad(60), 1, 0.1, 100)
	snapshot := camera.Snapshot()

	camera.Near = 1
	camera.UpdateProjection()

	assert.Equal(t, float32(0.1), snapshot.Near)
	assert.NotEqual(t, camera.Projection, snapshot.Projection)
}

func TestCameraSetAspect(t *testing.T) {
	camera := NewPerspectiveCamera(glm.DegToRad(90), 1, 0.1, 100)
	camera.SetAspect(2)

	assert.InDelta(t, 0.5, camera.Projection[0], 1e-6)
	assert.InDelta(t, 1, camera.Projection[5], 1e-6)
}
