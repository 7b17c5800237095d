package pointcloud

import (
	"testing"

	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridPoints returns n*n*n points on a regular grid in the unit cube.
func gridPoints(n int) []Point {
	var points []Point
	for x := range n {
		for y := range n {
			for z := range n {
				points = append(points, Point{
					Position: glm.Vec3f{
						float32(x) / float32(n),
						float32(y) / float32(n),
						float32(z) / float32(n),
					},
					Color: [4]uint8{255, 255, 255, 255},
				})
			}
		}
	}

	return points
}

func testCamera() *scene.Camera {
	camera := scene.NewPerspectiveCamera(glm.DegToRad(60), 1, 0.1, 100)
	camera.LookAt(glm.Vec3f{0.5, 0.5, 3}, glm.Vec3f{0.5, 0.5, 0.5}, glm.Vec3f{0, 1, 0})
	return camera
}

func TestBuildGeometryKeepsAllPoints(t *testing.T) {
	points := gridPoints(16)

	geometry := BuildGeometry(points, BuildOptions{MaxNodePoints: 256})
	assert.Equal(t, len(points), geometry.PointCount)

	var count, nodes int
	geometry.Walk(func(node *Node) bool {
		nodes++
		count += len(node.Points)

		assert.LessOrEqual(t, len(node.Points), 256)

		for _, point := range node.Points {
			assert.True(t, node.Bounds.Contains(point.Position), "point outside of node %s", node.Name)
		}

		return true
	})

	assert.Equal(t, len(points), count)
	assert.Greater(t, nodes, 1)

	size := geometry.BoundingBox.Size()
	assert.Equal(t, size[0], size[1])
	assert.Equal(t, size[0], size[2])
}

func TestBuildGeometryNodeNames(t *testing.T) {
	geometry := BuildGeometry(gridPoints(8), BuildOptions{MaxNodePoints: 32})

	require.Equal(t, "r", geometry.Root.Name)

	geometry.Walk(func(node *Node) bool {
		assert.Len(t, node.Name, node.Level+1)
		assert.InDelta(t, geometry.Spacing/float32(int(1)<<node.Level), node.Spacing, 1e-6)
		return true
	})
}

func TestStreamerRespectsBudget(t *testing.T) {
	geometry := BuildGeometry(gridPoints(16), BuildOptions{MaxNodePoints: 256})
	cloud := New("grid", geometry)

	budget := NewBudget(600)
	streamer, err := NewStreamer(StreamerOptions{Budget: budget, MinNodePixelSize: 1})
	require.NoError(t, err)

	result := streamer.Update([]*PointCloud{cloud}, testCamera(), 512, 512)

	assert.Equal(t, 600, result.Budget)
	assert.LessOrEqual(t, result.VisiblePoints, 600)
	assert.Equal(t, result.VisiblePoints, cloud.VisiblePointCount())
	assert.Equal(t, result.VisibleNodes, len(cloud.VisibleNodes))
	assert.True(t, result.Exhausted)

	// the root is always selected first
	require.NotEmpty(t, cloud.VisibleNodes)
	assert.Same(t, geometry.Root, cloud.VisibleNodes[0])
}

func TestStreamerSelectsEverythingWithLargeBudget(t *testing.T) {
	geometry := BuildGeometry(gridPoints(16), BuildOptions{MaxNodePoints: 256})
	cloud := New("grid", geometry)

	streamer, err := NewStreamer(StreamerOptions{Budget: NewBudget(10_000_000), MinNodePixelSize: 0.001})
	require.NoError(t, err)

	result := streamer.Update([]*PointCloud{cloud}, testCamera(), 512, 512)

	assert.False(t, result.Exhausted)
	assert.Equal(t, geometry.PointCount, result.VisiblePoints)
}

func TestStreamerSkipsInvisibleAndCulledClouds(t *testing.T) {
	geometry := BuildGeometry(gridPoints(4), BuildOptions{})

	hidden := New("hidden", geometry)
	hidden.Visible = false

	streamer, err := NewStreamer(StreamerOptions{})
	require.NoError(t, err)

	result := streamer.Update([]*PointCloud{hidden}, testCamera(), 64, 64)
	assert.Zero(t, result.VisibleNodes)
	assert.Empty(t, hidden.VisibleNodes)

	// camera looking away from the cloud
	behind := New("behind", geometry)
	camera := testCamera()
	camera.LookAt(glm.Vec3f{0.5, 0.5, 3}, glm.Vec3f{0.5, 0.5, 10}, glm.Vec3f{0, 1, 0})

	result = streamer.Update([]*PointCloud{behind}, camera, 64, 64)
	assert.Zero(t, result.VisibleNodes)
}

type recordingLoader struct {
	loaded   map[string]bool
	unloaded []string
}

func (l *recordingLoader) Load(node *Node) error {
	l.loaded[node.Name] = true
	return nil
}

func (l *recordingLoader) Unload(node *Node) {
	delete(l.loaded, node.Name)
	l.unloaded = append(l.unloaded, node.Name)
}

func TestStreamerForgetUnloadsNodes(t *testing.T) {
	geometry := BuildGeometry(gridPoints(8), BuildOptions{MaxNodePoints: 64})
	cloud := New("grid", geometry)

	loader := &recordingLoader{loaded: map[string]bool{}}

	streamer, err := NewStreamer(StreamerOptions{Loader: loader, MinNodePixelSize: 1})
	require.NoError(t, err)

	var released int
	streamer.OnUnload(func(node *Node) { released++ })

	streamer.Update([]*PointCloud{cloud}, testCamera(), 256, 256)
	require.NotEmpty(t, loader.loaded)

	loaded := streamer.Loaded()
	assert.Equal(t, len(cloud.VisibleNodes), loaded)

	streamer.Forget(cloud)
	assert.Empty(t, loader.loaded)
	assert.Equal(t, loaded, released)
	assert.Zero(t, streamer.Loaded())
	assert.Nil(t, cloud.VisibleNodes)
}
