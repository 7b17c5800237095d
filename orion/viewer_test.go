package orion

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
	"github.com/oliverbestmann/edlview/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cubeCloud returns a cloud of n*n*n points filling the unit cube.
func cubeCloud(n int) *pointcloud.PointCloud {
	var points []pointcloud.Point
	for x := range n {
		for y := range n {
			for z := range n {
				points = append(points, pointcloud.Point{
					Position: glm.Vec3f{
						float32(x) / float32(n),
						float32(y) / float32(n),
						float32(z) / float32(n),
					},
					Color: [4]uint8{200, 180, 160, 255},
				})
			}
		}
	}

	geometry := pointcloud.BuildGeometry(points, pointcloud.BuildOptions{MaxNodePoints: 512})
	return pointcloud.New("cube", geometry)
}

func lookAtCube(camera *scene.Camera) {
	camera.LookAt(glm.Vec3f{0.5, 0.5, 3}, glm.Vec3f{0.5, 0.5, 0.5}, glm.Vec3f{0, 1, 0})
}

func newTestViewer(t *testing.T, width, height uint32) (*Viewer, *soft.Backend) {
	t.Helper()

	backend := soft.New(width, height)

	conf := DefaultConfig()
	conf.Render.Background = scene.BackgroundWhite

	viewer, err := NewViewer(backend, conf)
	require.NoError(t, err)

	lookAtCube(viewer.Camera())

	t.Cleanup(viewer.Release)

	return viewer, backend
}

func TestViewerAddAndRemove(t *testing.T) {
	viewer, _ := newTestViewer(t, 32, 32)

	cloud := cubeCloud(12)
	viewer.Add(cloud)

	require.Len(t, viewer.PointClouds(), 1)
	assert.Contains(t, viewer.Scene().Nodes, scene.Node(cloud))
	assert.True(t, cloud.Material.UseEDL)
	assert.Equal(t, DefaultConfig().Render.PointSize, cloud.Material.PointSize)

	result := viewer.Update()
	assert.Greater(t, result.VisiblePoints, 0)
	assert.Greater(t, viewer.Streamer().Loaded(), 0)
	assert.Equal(t, result, viewer.LastUpdate())

	assert.True(t, viewer.RemovePointCloud(cloud))
	assert.Empty(t, viewer.PointClouds())
	assert.Empty(t, viewer.Scene().Nodes)
	assert.Equal(t, 0, viewer.Streamer().Loaded())
	assert.Empty(t, cloud.VisibleNodes)

	assert.False(t, viewer.RemovePointCloud(cloud))
}

func TestViewerRenderWithEDL(t *testing.T) {
	viewer, backend := newTestViewer(t, 32, 32)

	viewer.Add(cubeCloud(12))
	viewer.Update()

	require.NoError(t, viewer.Render())

	stats := viewer.Renderer().Stats()
	assert.Equal(t, 1, stats.Captures)
	assert.Equal(t, 1, stats.Composites)
	assert.Greater(t, backend.PointsDrawn(), 0)
	assert.Nil(t, backend.RenderTarget())
}

func TestViewerRendererUsesViewerCamera(t *testing.T) {
	viewer, backend := newTestViewer(t, 32, 32)

	viewer.Add(cubeCloud(12))
	viewer.Update()

	require.NoError(t, viewer.Renderer().Render(nil))

	assert.Equal(t, 1, viewer.Renderer().Stats().Composites)
	assert.Greater(t, backend.PointsDrawn(), 0)
}

func TestViewerRenderWithoutEDL(t *testing.T) {
	viewer, backend := newTestViewer(t, 32, 32)

	cloud := cubeCloud(12)
	viewer.Add(cloud)

	viewer.SetEDLEnabled(false)
	assert.False(t, viewer.EDLEnabled())
	assert.False(t, cloud.Material.UseEDL)
	assert.True(t, cloud.Material.NeedsUpdate())

	viewer.Update()
	require.NoError(t, viewer.Render())

	stats := viewer.Renderer().Stats()
	assert.Equal(t, 0, stats.Frames)
	assert.Equal(t, 0, stats.Captures)
	assert.Greater(t, backend.PointsDrawn(), 0)

	// points rendered without a composite are not darkened
	pixels, err := backend.ReadPixels(nil)
	require.NoError(t, err)
	assert.Contains(t, rgbaPixels(pixels), [4]byte{200, 180, 160, 255})

	viewer.SetEDLEnabled(true)
	assert.True(t, cloud.Material.UseEDL)
}

func TestViewerBackground(t *testing.T) {
	viewer, backend := newTestViewer(t, 4, 4)

	viewer.SetBackground(scene.BackgroundBlack)
	assert.Equal(t, scene.BackgroundBlack, viewer.Background())

	require.NoError(t, viewer.Render())

	pixels, err := backend.ReadPixels(nil)
	require.NoError(t, err)

	for _, pixel := range rgbaPixels(pixels) {
		assert.Equal(t, [4]byte{0, 0, 0, 255}, pixel)
	}
}

func TestViewerWriteScreenshot(t *testing.T) {
	viewer, _ := newTestViewer(t, 32, 32)

	viewer.Add(cubeCloud(12))

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, viewer.WriteScreenshot(context.Background(), path, 16, 8))

	fp, err := os.Open(path)
	require.NoError(t, err)
	defer fp.Close()

	img, err := png.Decode(fp)
	require.NoError(t, err)

	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())

	assert.Equal(t, pointcloud.DefaultPointBudget, viewer.Budget().Value())
	assert.False(t, viewer.Budget().Overridden())
	assert.Equal(t, 1, viewer.Renderer().Stats().Screenshots)
}

func TestViewerScreenshotCancelled(t *testing.T) {
	viewer, _ := newTestViewer(t, 32, 32)
	viewer.Add(cubeCloud(4))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	screenshot, err := viewer.Screenshot(ctx, 16, 16)
	require.NoError(t, err)
	assert.True(t, screenshot.Empty())

	path := filepath.Join(t.TempDir(), "shot.png")
	assert.Error(t, viewer.WriteScreenshot(ctx, path, 16, 16))
	assert.NoFileExists(t, path)
}

func TestViewerResizeUpdatesAspect(t *testing.T) {
	viewer, _ := newTestViewer(t, 32, 32)

	before := viewer.Camera().Projection
	viewer.Resize(64, 32)
	assert.NotEqual(t, before, viewer.Camera().Projection)

	// a zero size is ignored
	after := viewer.Camera().Projection
	viewer.Resize(0, 32)
	assert.Equal(t, after, viewer.Camera().Projection)
}

type testApp struct {
	initialized int
	updated     int
}

func (a *testApp) Initialize(viewer *Viewer) error {
	a.initialized++
	viewer.Add(cubeCloud(8))
	lookAtCube(viewer.Camera())
	return nil
}

func (a *testApp) Update(viewer *Viewer, times *FrameTimes) error {
	a.updated++
	return nil
}

func TestRunHeadless(t *testing.T) {
	app := &testApp{}

	conf := DefaultConfig()
	conf.Screenshot.Width = 24
	conf.Screenshot.Height = 16
	conf.Screenshot.Path = filepath.Join(t.TempDir(), "headless.png")

	err := RunHeadless(context.Background(), soft.New(24, 16), RunOptions{App: app, Config: conf})
	require.NoError(t, err)

	assert.Equal(t, 1, app.initialized)
	assert.Equal(t, 1, app.updated)
	assert.FileExists(t, conf.Screenshot.Path)
}

func TestRunHeadlessRequiresApp(t *testing.T) {
	err := RunHeadless(context.Background(), soft.New(4, 4), RunOptions{})
	assert.Error(t, err)
}

func rgbaPixels(pixels []byte) [][4]byte {
	var result [][4]byte
	for idx := 0; idx+4 <= len(pixels); idx += 4 {
		result = append(result, [4]byte(pixels[idx:idx+4]))
	}

	return result
}
