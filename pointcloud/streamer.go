package pointcloud

import (
	"container/heap"
	"log/slog"

	"github.com/chewxy/math32"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/scene"
)

// Loader makes the points of a node available. The in-memory octree built by
// BuildGeometry needs no loader, file backed octrees plug in here.
type Loader interface {
	Load(node *Node) error
	Unload(node *Node)
}

// DefaultMaxLoadedNodes is the number of nodes a streamer keeps loaded.
const DefaultMaxLoadedNodes = 4096

type StreamerOptions struct {
	Budget *Budget

	// Maximum number of nodes kept loaded. Defaults to 4096.
	MaxLoadedNodes int

	// Nodes projecting to fewer pixels than this are not refined further.
	// Defaults to 50.
	MinNodePixelSize float32

	Loader Loader
}

// UpdateResult summarizes the node selection of a single update.
type UpdateResult struct {
	VisibleNodes  int
	VisiblePoints int

	// Budget in effect during the update.
	Budget int

	// Exhausted is true if the budget stopped the traversal before all
	// candidate nodes were selected.
	Exhausted bool
}

// Streamer selects the octree nodes to draw. Nodes are visited in order of
// their projected screen size until the point budget is used up.
type Streamer struct {
	budget           *Budget
	loader           Loader
	minNodePixelSize float32

	loaded   *lru.Cache[*Node, struct{}]
	onUnload []func(node *Node)
}

func NewStreamer(opts StreamerOptions) (*Streamer, error) {
	if opts.Budget == nil {
		opts.Budget = NewBudget(DefaultPointBudget)
	}

	if opts.MaxLoadedNodes <= 0 {
		opts.MaxLoadedNodes = DefaultMaxLoadedNodes
	}

	if opts.MinNodePixelSize <= 0 {
		opts.MinNodePixelSize = 50
	}

	s := &Streamer{
		budget:           opts.Budget,
		loader:           opts.Loader,
		minNodePixelSize: opts.MinNodePixelSize,
	}

	loaded, err := lru.NewWithEvict(opts.MaxLoadedNodes, s.evict)
	if err != nil {
		return nil, err
	}

	s.loaded = loaded

	return s, nil
}

func (s *Streamer) Budget() *Budget {
	return s.budget
}

// OnUnload registers a callback invoked whenever a node drops out of the
// loaded node cache. Backends use it to release per node buffers.
func (s *Streamer) OnUnload(fn func(node *Node)) {
	s.onUnload = append(s.onUnload, fn)
}

// Loaded returns the number of nodes currently loaded.
func (s *Streamer) Loaded() int {
	return s.loaded.Len()
}

// Update selects the visible nodes of all clouds for the given camera and
// viewport and stores them in PointCloud.VisibleNodes.
func (s *Streamer) Update(clouds []*PointCloud, camera *scene.Camera, width, height uint32) UpdateResult {
	budget := s.budget.Value()

	result := UpdateResult{Budget: budget}

	queue := &nodeQueue{}

	for cloudIdx, cloud := range clouds {
		cloud.VisibleNodes = cloud.VisibleNodes[:0]

		if !cloud.Visible || cloud.Geometry == nil || cloud.Geometry.Root == nil {
			continue
		}

		heap.Push(queue, queueItem{
			cloud:    cloudIdx,
			node:     cloud.Geometry.Root,
			priority: math32.Inf(1),
		})
	}

	viewProjection := camera.ViewProjection()

	for queue.Len() > 0 {
		item := heap.Pop(queue).(queueItem)
		node := item.node

		if !inFrustum(viewProjection, node.Bounds) {
			continue
		}

		if result.VisiblePoints+len(node.Points) > budget {
			result.Exhausted = true
			break
		}

		if !s.load(node) {
			continue
		}

		cloud := clouds[item.cloud]
		cloud.VisibleNodes = append(cloud.VisibleNodes, node)

		result.VisibleNodes++
		result.VisiblePoints += len(node.Points)

		for _, child := range node.Children {
			if child == nil {
				continue
			}

			size := projectedSize(camera, child.Bounds, height)
			if size < s.minNodePixelSize {
				continue
			}

			heap.Push(queue, queueItem{cloud: item.cloud, node: child, priority: size})
		}
	}

	slog.Debug(
		"Point cloud update",
		slog.Int("nodes", result.VisibleNodes),
		slog.Int("points", result.VisiblePoints),
		slog.Int("budget", budget),
		slog.Bool("exhausted", result.Exhausted),
		slog.Int("loaded", s.loaded.Len()),
		slog.Int("width", int(width)),
		slog.Int("height", int(height)),
	)

	return result
}

// Forget drops all loaded nodes of the given cloud.
func (s *Streamer) Forget(cloud *PointCloud) {
	if cloud.Geometry == nil {
		return
	}

	cloud.Geometry.Walk(func(node *Node) bool {
		s.loaded.Remove(node)
		return true
	})

	cloud.VisibleNodes = nil
}

func (s *Streamer) load(node *Node) bool {
	if _, ok := s.loaded.Get(node); ok {
		return true
	}

	if s.loader != nil {
		if err := s.loader.Load(node); err != nil {
			slog.Warn("Failed to load node", slog.String("node", node.Name), slog.Any("err", err))
			return false
		}
	}

	s.loaded.Add(node, struct{}{})

	return true
}

func (s *Streamer) evict(node *Node, _ struct{}) {
	if s.loader != nil {
		s.loader.Unload(node)
	}

	for _, fn := range s.onUnload {
		fn(node)
	}
}

// projectedSize estimates the diameter of the bounding sphere of the box in
// pixels.
func projectedSize(camera *scene.Camera, box glm.Box3f, height uint32) float32 {
	radius := box.Size().Length() / 2

	center := camera.View.Transform(box.Center().Extend(1))

	// element (1, 1) of the projection scales view space y to clip space
	scale := camera.Projection[5] * float32(height) / 2

	// orthographic projections keep w at 1
	if camera.Projection[15] == 1 {
		return 2 * radius * scale
	}

	distance := center.Truncate().Length()
	if distance < radius {
		return math32.Inf(1)
	}

	return 2 * radius * scale / distance
}

// inFrustum tests the box corners against the clip space planes. The box is
// only rejected if all corners are outside of the same plane.
func inFrustum(viewProjection glm.Mat4f, box glm.Box3f) bool {
	var corners [8]glm.Vec4f
	for idx := range corners {
		corner := box.Min
		for axis := range 3 {
			if idx&(1<<axis) != 0 {
				corner[axis] = box.Max[axis]
			}
		}

		corners[idx] = viewProjection.Transform(corner.Extend(1))
	}

	for axis := range 3 {
		for _, sign := range [2]float32{-1, 1} {
			outside := true
			for _, c := range corners {
				if sign*c[axis] <= c[3] {
					outside = false
					break
				}
			}

			if outside {
				return false
			}
		}
	}

	return true
}

type queueItem struct {
	cloud    int
	node     *Node
	priority float32
}

// nodeQueue is a max heap on the priority.
type nodeQueue []queueItem

func (q nodeQueue) Len() int           { return len(q) }
func (q nodeQueue) Less(i, j int) bool { return q[i].priority > q[j].priority }
func (q nodeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *nodeQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
