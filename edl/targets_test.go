package edl

import (
	"testing"

	"github.com/oliverbestmann/edlview/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetSetInitialize(t *testing.T) {
	backend := newFakeBackend(640, 480)
	targets := NewTargetSet(backend)

	require.NoError(t, targets.Initialize())
	require.NoError(t, targets.Initialize())

	assert.Len(t, backend.targets, 2)

	capture := targets.Capture().Options()
	assert.Equal(t, ColorFormatFloat, capture.ColorFormat)
	assert.Equal(t, DepthUint, capture.DepthFormat)
	assert.Equal(t, FilterNearest, capture.MinFilter)
	assert.Equal(t, FilterNearest, capture.MagFilter)
	assert.False(t, capture.GenerateMipmaps)

	regular := targets.Regular().Options()
	assert.Equal(t, ColorFormatDefault, regular.ColorFormat)
	assert.Equal(t, DepthUint, regular.DepthFormat)

	width, height := targets.Size()
	assert.EqualValues(t, 1024, width)
	assert.EqualValues(t, 1024, height)
}

func TestTargetSetResize(t *testing.T) {
	sizes := [][2]uint32{{1, 1}, {2, 2}, {640, 480}, {1024, 1024}, {3840, 2160}, {17, 4096}}

	for _, size := range sizes {
		backend := newFakeBackend(size[0], size[1])
		targets := NewTargetSet(backend)
		require.NoError(t, targets.Initialize())

		require.NoError(t, targets.Resize(size[0], size[1]))

		assert.Equal(t, size[0], targets.Capture().Width())
		assert.Equal(t, size[1], targets.Capture().Height())
		assert.Equal(t, size[0], targets.Regular().Width())
		assert.Equal(t, size[1], targets.Regular().Height())

		allocated := len(backend.targets)

		require.NoError(t, targets.Resize(size[0], size[1]))
		assert.Len(t, backend.targets, allocated, "second resize to %v allocated", size)
	}
}

func TestTargetSetResizeReleasesOldTargets(t *testing.T) {
	backend := newFakeBackend(640, 480)
	targets := NewTargetSet(backend)
	require.NoError(t, targets.Initialize())

	require.NoError(t, targets.Resize(640, 480))

	require.Len(t, backend.targets, 4)
	assert.True(t, backend.targets[0].released)
	assert.True(t, backend.targets[1].released)
	assert.False(t, backend.targets[2].released)
	assert.False(t, backend.targets[3].released)

	// zero sizes are ignored
	require.NoError(t, targets.Resize(0, 100))
	assert.Len(t, backend.targets, 4)
}

func TestTargetSetNoopBeforeInitialize(t *testing.T) {
	backend := newFakeBackend(640, 480)
	targets := NewTargetSet(backend)

	assert.NoError(t, targets.Resize(100, 100))
	assert.NoError(t, targets.Clear(scene.BackgroundWhite))

	assert.False(t, targets.Initialized())
	assert.Empty(t, backend.targets)
	assert.Empty(t, backend.calls)
}

func TestTargetSetClear(t *testing.T) {
	cases := []struct {
		background scene.Background
		color      scene.Color
	}{
		{scene.BackgroundBlack, scene.ColorBlack},
		{scene.BackgroundWhite, scene.ColorWhite},
		{scene.BackgroundSkybox, scene.ColorTransparent},
		{scene.BackgroundGradient, scene.ColorTransparent},
		{scene.BackgroundNone, scene.ColorTransparent},
	}

	for _, tc := range cases {
		t.Run(tc.background.String(), func(t *testing.T) {
			backend := newFakeBackend(64, 64)
			targets := NewTargetSet(backend)
			require.NoError(t, targets.Initialize())

			previous := &fakeTarget{opts: TargetOptions{Width: 1, Height: 1}}
			backend.SetRenderTarget(previous)

			require.NoError(t, targets.Clear(tc.background))

			clears := backend.callsOf("clear")
			require.Len(t, clears, 2)

			assert.Same(t, targets.Capture(), clears[0].target)
			assert.Equal(t, tc.color, clears[0].color)
			assert.True(t, clears[0].clearColor)
			assert.True(t, clears[0].clearDepth)
			assert.True(t, clears[0].stencil)

			assert.Same(t, targets.Regular(), clears[1].target)
			assert.Equal(t, tc.color, clears[1].color)
			assert.True(t, clears[1].clearColor)
			assert.True(t, clears[1].clearDepth)
			assert.False(t, clears[1].stencil)

			assert.Same(t, previous, backend.RenderTarget())
		})
	}
}

func TestTargetSetCaptureFormatFallback(t *testing.T) {
	cases := []struct {
		caps     Capabilities
		expected ColorFormat
	}{
		{Capabilities{FloatColorTargets: true}, ColorFormatFloat},
		{Capabilities{HalfFloatColorTargets: true}, ColorFormatHalfFloat},
		{Capabilities{}, ColorFormatDefault},
	}

	for _, tc := range cases {
		backend := newFakeBackend(64, 64)
		backend.caps = tc.caps

		targets := NewTargetSet(backend)
		require.NoError(t, targets.Initialize())

		assert.Equal(t, tc.expected, targets.Capture().Options().ColorFormat)
	}
}

func TestTargetSetRelease(t *testing.T) {
	backend := newFakeBackend(64, 64)
	targets := NewTargetSet(backend)
	require.NoError(t, targets.Initialize())

	targets.Release()

	assert.False(t, targets.Initialized())
	assert.Nil(t, targets.Capture())
	for _, target := range backend.targets {
		assert.True(t, target.released)
	}
}
