package edl

import (
	"context"
	"testing"

	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// budgetStreamer records the point budget in effect during each update.
type budgetStreamer struct {
	budget  *pointcloud.Budget
	updates []int
	sizes   [][2]uint32
}

func (s *budgetStreamer) Update(clouds []*pointcloud.PointCloud, camera *scene.Camera, width, height uint32) pointcloud.UpdateResult {
	value := s.budget.Value()
	s.updates = append(s.updates, value)
	s.sizes = append(s.sizes, [2]uint32{width, height})

	return pointcloud.UpdateResult{Budget: value}
}

func newScreenshotRenderer(backend Backend, budget *pointcloud.Budget, streamer Streamer) *Renderer {
	clouds := []*pointcloud.PointCloud{testCloud(true)}

	sc := scene.New()
	sc.Add(clouds[0])

	return NewRenderer(RendererOptions{
		Backend:     backend,
		Scene:       sc,
		Budget:      budget,
		Streamer:    streamer,
		PointClouds: func() []*pointcloud.PointCloud { return clouds },
	})
}

func TestScreenshotRestoresBudget(t *testing.T) {
	budgets := []int{0, 1, 500_000, 1_000_000, 4_999_999, 5_000_000, 5_000_001, 20_000_000}

	for _, value := range budgets {
		backend := newFakeBackend(64, 48)
		budget := pointcloud.NewBudget(value)
		streamer := &budgetStreamer{budget: budget}

		renderer := newScreenshotRenderer(backend, budget, streamer)

		var screenshot Screenshot
		err := renderer.CaptureScreenshot(context.Background(), testCamera(), 320, 200, func(s Screenshot) {
			screenshot = s
		})

		require.NoError(t, err)

		require.Len(t, streamer.updates, 1)
		assert.Equal(t, max(10_000_000, 2*value), streamer.updates[0])
		assert.Equal(t, [2]uint32{320, 200}, streamer.sizes[0])

		assert.Equal(t, value, budget.Value())
		assert.False(t, budget.Overridden())

		assert.EqualValues(t, 320, screenshot.Width)
		assert.EqualValues(t, 200, screenshot.Height)
		assert.Len(t, screenshot.Pixels, 320*200*4)
	}
}

func TestScreenshotRestoresBudgetOnError(t *testing.T) {
	backend := newFakeBackend(64, 48)
	budget := pointcloud.NewBudget(1234)

	renderer := newScreenshotRenderer(backend, budget, &budgetStreamer{budget: budget})

	backend.renderErr = assert.AnError

	err := renderer.CaptureScreenshot(context.Background(), testCamera(), 32, 32, func(Screenshot) {
		t.Fatal("callback must not be called")
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1234, budget.Value())

	// the screenshot target is released on failure
	for _, target := range backend.targets {
		if target.opts.Label == "screenshot" {
			assert.True(t, target.released)
		}
	}
}

func TestScreenshotWithOverriddenBudget(t *testing.T) {
	backend := newFakeBackend(64, 48)
	budget := pointcloud.NewBudget(1000)
	streamer := &budgetStreamer{budget: budget}

	renderer := newScreenshotRenderer(backend, budget, streamer)

	guard, err := budget.Override(50)
	require.NoError(t, err)

	var called bool
	err = renderer.CaptureScreenshot(context.Background(), testCamera(), 32, 32, func(s Screenshot) {
		called = true
		assert.True(t, s.Empty())
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, streamer.updates)
	assert.Equal(t, 50, budget.Value())

	guard.Restore()
	assert.Equal(t, 1000, budget.Value())
}

func TestScreenshotCancelled(t *testing.T) {
	backend := newFakeBackend(64, 48)
	budget := pointcloud.NewBudget(1000)

	renderer := newScreenshotRenderer(backend, budget, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var screenshot *Screenshot
	err := renderer.CaptureScreenshot(ctx, testCamera(), 32, 32, func(s Screenshot) {
		screenshot = &s
	})

	require.NoError(t, err)
	require.NotNil(t, screenshot)
	assert.True(t, screenshot.Empty())
	assert.Equal(t, 1000, budget.Value())
}

func TestScreenshotRedirectsComposite(t *testing.T) {
	backend := newFakeBackend(64, 48)
	renderer := newScreenshotRenderer(backend, nil, nil)

	require.NoError(t, renderer.Clear(scene.BackgroundWhite))
	backend.calls = nil

	require.NoError(t, renderer.CaptureScreenshot(context.Background(), testCamera(), 100, 50, func(Screenshot) {}))

	var screenshot RenderTarget
	for _, target := range backend.targets {
		if target.opts.Label == "screenshot" {
			screenshot = target
		}
	}

	require.NotNil(t, screenshot)

	// cleared with the background color before anything is drawn
	first := backend.calls[0]
	assert.Equal(t, "clear", first.op)
	assert.Same(t, screenshot, first.target)
	assert.Equal(t, scene.ColorWhite, first.color)

	renders := backend.callsOf("render")
	require.Len(t, renders, 3)
	assert.Same(t, renderer.Targets().Capture(), renders[0].target)
	assert.Same(t, screenshot, renders[1].target)
	assert.Same(t, screenshot, renders[2].target)

	width, height := renderer.Targets().Size()
	assert.EqualValues(t, 100, width)
	assert.EqualValues(t, 50, height)

	// the screen stays bound
	assert.Nil(t, backend.RenderTarget())

	// the next interactive frame uses the screen size again
	require.NoError(t, renderer.Render(testCamera()))

	width, height = renderer.Targets().Size()
	assert.EqualValues(t, 64, width)
	assert.EqualValues(t, 48, height)
}

func TestScreenshotImage(t *testing.T) {
	screenshot := Screenshot{
		Width:  2,
		Height: 1,
		Pixels: []byte{255, 0, 0, 255, 0, 0, 255, 128},
	}

	img := screenshot.Image()
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())

	first := img.NRGBAAt(0, 0)
	assert.EqualValues(t, 255, first.R)
	assert.EqualValues(t, 255, first.A)
	assert.EqualValues(t, 128, img.NRGBAAt(1, 0).A)
}
