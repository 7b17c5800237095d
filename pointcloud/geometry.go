package pointcloud

import (
	"strconv"

	"github.com/oliverbestmann/edlview/glm"
)

// maximum octree depth, a node at this level keeps all remaining points.
const maxLevel = 16

// Node is a node of the octree. Each node holds a subsample of the points
// inside its bounds with a minimum distance of roughly Spacing; the children
// refine it.
type Node struct {
	// Name encodes the path from the root, e.g. "r", "r0", "r07".
	Name  string
	Level int

	Bounds  glm.Box3f
	Spacing float32

	Points   []Point
	Children [8]*Node
}

func (n *Node) IsLeaf() bool {
	for _, child := range n.Children {
		if child != nil {
			return false
		}
	}

	return true
}

// Geometry is the octree of a point cloud.
type Geometry struct {
	// BoundingBox is the cubic bounding box of the octree.
	BoundingBox glm.Box3f

	// Spacing of the root node.
	Spacing float32

	Root       *Node
	PointCount int
}

// Walk visits all nodes depth first. Children of a node are skipped if fn
// returns false.
func (g *Geometry) Walk(fn func(node *Node) bool) {
	var walk func(node *Node)
	walk = func(node *Node) {
		if !fn(node) {
			return
		}

		for _, child := range node.Children {
			if child != nil {
				walk(child)
			}
		}
	}

	if g.Root != nil {
		walk(g.Root)
	}
}

type BuildOptions struct {
	// Maximum number of points stored in a single node. Defaults to 20_000.
	MaxNodePoints int

	// Spacing of the root node. Defaults to 1/128 of the octree size.
	Spacing float32
}

// BuildGeometry sorts the points into an octree. Every node keeps at most one
// point per grid cell of its spacing and forwards the rest to its children.
func BuildGeometry(points []Point, opts BuildOptions) *Geometry {
	if opts.MaxNodePoints <= 0 {
		opts.MaxNodePoints = 20_000
	}

	positions := make([]glm.Vec3f, len(points))
	for idx, point := range points {
		positions[idx] = point.Position
	}

	bounds := cubic(glm.Box3FromPoints(positions...))

	if opts.Spacing <= 0 {
		opts.Spacing = bounds.Size()[0] / 128
	}

	root := &Node{
		Name:    "r",
		Bounds:  bounds,
		Spacing: opts.Spacing,
	}

	b := builder{maxNodePoints: opts.MaxNodePoints}
	b.insert(root, points)

	return &Geometry{
		BoundingBox: bounds,
		Spacing:     opts.Spacing,
		Root:        root,
		PointCount:  len(points),
	}
}

type builder struct {
	maxNodePoints int
}

func (b *builder) insert(node *Node, points []Point) {
	if len(points) <= b.maxNodePoints || node.Level >= maxLevel || node.Spacing <= 0 {
		node.Points = append(node.Points, points...)
		return
	}

	occupied := map[[3]int32]struct{}{}

	var rest [8][]Point
	for _, point := range points {
		cell := cellOf(node, point.Position)

		if _, taken := occupied[cell]; !taken && len(node.Points) < b.maxNodePoints {
			occupied[cell] = struct{}{}
			node.Points = append(node.Points, point)
			continue
		}

		idx := node.Bounds.OctantOf(point.Position)
		rest[idx] = append(rest[idx], point)
	}

	for idx, childPoints := range rest {
		if len(childPoints) == 0 {
			continue
		}

		child := &Node{
			Name:    node.Name + strconv.Itoa(idx),
			Level:   node.Level + 1,
			Bounds:  node.Bounds.Octant(idx),
			Spacing: node.Spacing / 2,
		}

		node.Children[idx] = child
		b.insert(child, childPoints)
	}
}

func cellOf(node *Node, pos glm.Vec3f) [3]int32 {
	rel := pos.Sub(node.Bounds.Min)

	return [3]int32{
		int32(rel[0] / node.Spacing),
		int32(rel[1] / node.Spacing),
		int32(rel[2] / node.Spacing),
	}
}

// cubic grows the box to a cube with the same minimum corner.
func cubic(box glm.Box3f) glm.Box3f {
	size := box.Size()
	edge := max(size[0], size[1], size[2])

	return glm.Box3f{
		Min: box.Min,
		Max: box.Min.Add(glm.Vec3f{edge, edge, edge}),
	}
}
