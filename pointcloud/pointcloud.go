// Package pointcloud holds the point-cloud side of the renderer contract:
// octree geometry, the point material the shaders read, the global point
// budget and a level-of-detail streamer selecting which octree nodes to draw.
package pointcloud

import (
	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/scene"
)

// Point is a single colored point.
type Point struct {
	Position glm.Vec3f
	Color    [4]uint8
}

// Uniforms are the shader uniforms of a point material that are not plain
// material flags.
type Uniforms struct {
	OctreeSize float32
}

// Material describes how the points of a cloud are shaded.
type Material struct {
	// Weighted enables weighted splat blending, which EDL rendering disables.
	Weighted bool

	// UseEDL makes the point shader write the logarithmic linear depth
	// into the alpha channel of float render targets.
	UseEDL bool

	ScreenWidth  float32
	ScreenHeight float32

	// Spacing of the root node, used to scale adaptive point sizes.
	Spacing float32

	// Size of a point in pixels.
	PointSize float32

	Uniforms Uniforms

	needsUpdate bool
}

func NewMaterial() *Material {
	return &Material{PointSize: 1, needsUpdate: true}
}

func (m *Material) Blend() scene.BlendMode {
	return scene.BlendReplace
}

func (m *Material) DepthTest() bool {
	return true
}

func (m *Material) DepthWrite() bool {
	return true
}

// Invalidate marks the uniforms as changed, the backend uploads them again
// before the next draw.
func (m *Material) Invalidate() {
	m.needsUpdate = true
}

func (m *Material) NeedsUpdate() bool {
	return m.needsUpdate
}

func (m *Material) MarkUploaded() {
	m.needsUpdate = false
}

// PointCloud is a scene node drawing the currently selected nodes of an octree.
type PointCloud struct {
	Name     string
	Visible  bool
	Geometry *Geometry
	Material *Material

	// VisibleNodes is the node selection of the latest streamer update,
	// ordered by priority.
	VisibleNodes []*Node
}

func New(name string, geometry *Geometry) *PointCloud {
	return &PointCloud{
		Name:     name,
		Visible:  true,
		Geometry: geometry,
		Material: NewMaterial(),
	}
}

func (pc *PointCloud) Kind() scene.Kind {
	return scene.KindPointCloud
}

// OctreeSize is the extent of the octree bounding box along x.
func (pc *PointCloud) OctreeSize() float32 {
	return pc.Geometry.BoundingBox.Size()[0]
}

// VisiblePointCount sums the points of all visible nodes.
func (pc *PointCloud) VisiblePointCount() int {
	var count int
	for _, node := range pc.VisibleNodes {
		count += len(node.Points)
	}

	return count
}

// ShowAll selects every node of the octree, bypassing the streamer.
func (pc *PointCloud) ShowAll() {
	pc.VisibleNodes = pc.VisibleNodes[:0]

	pc.Geometry.Walk(func(node *Node) bool {
		pc.VisibleNodes = append(pc.VisibleNodes, node)
		return true
	})
}
