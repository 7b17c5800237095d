package scene

import "github.com/oliverbestmann/edlview/glm"

type Kind int

const (
	KindGroup Kind = iota
	KindPointCloud
	KindQuad
	KindSpotLight
)

// Node is anything that can be placed into a Scene.
type Node interface {
	Kind() Kind
}

// Group is a node holding other nodes.
type Group struct {
	Nodes []Node
}

func (g *Group) Kind() Kind {
	return KindGroup
}

func (g *Group) Add(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// Remove removes the node from this group, not from nested groups.
// Returns true if the node was found.
func (g *Group) Remove(node Node) bool {
	for idx, candidate := range g.Nodes {
		if candidate == node {
			g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)
			return true
		}
	}

	return false
}

// Scene is the root of the node graph handed to a renderer.
type Scene struct {
	Group
}

func New() *Scene {
	return &Scene{}
}

// Traverse calls fn for every node in the scene, depth first. Groups are
// passed to fn before their children.
func (s *Scene) Traverse(fn func(node Node)) {
	traverse(&s.Group, fn)
}

func traverse(node Node, fn func(node Node)) {
	fn(node)

	if group, ok := node.(*Group); ok {
		for _, child := range group.Nodes {
			traverse(child, fn)
		}
	}
}

// SpotLights collects all spot lights of the scene.
func (s *Scene) SpotLights() []*SpotLight {
	var lights []*SpotLight

	s.Traverse(func(node Node) {
		if light, ok := node.(*SpotLight); ok {
			lights = append(lights, light)
		}
	})

	return lights
}

type SpotLight struct {
	Position  glm.Vec3f
	Direction glm.Vec3f
	Color     Color
	Intensity float32
	Angle     glm.Rad
}

func (l *SpotLight) Kind() Kind {
	return KindSpotLight
}
