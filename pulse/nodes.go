package pulse

import (
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/edlview/pointcloud"
)

// NodeBuffers holds the vertex buffers of uploaded octree nodes. Buffers
// are released when a node is evicted or forgotten.
type NodeBuffers struct {
	ctx   *Context
	cache *lru.Cache[*pointcloud.Node, *wgpu.Buffer]
}

func NewNodeBuffers(ctx *Context, capacity int) (*NodeBuffers, error) {
	cache, err := lru.NewWithEvict[*pointcloud.Node, *wgpu.Buffer](capacity, releaseNodeBuffer)
	if err != nil {
		return nil, fmt.Errorf("create node buffer cache: %w", err)
	}

	return &NodeBuffers{ctx: ctx, cache: cache}, nil
}

func releaseNodeBuffer(node *pointcloud.Node, buffer *wgpu.Buffer) {
	slog.Debug("Release node buffer", slog.String("node", node.Name))
	buffer.Release()
}

// Get returns the vertex buffer of the node, uploading its points on first
// use. Nodes without points have no buffer.
func (n *NodeBuffers) Get(node *pointcloud.Node) (*wgpu.Buffer, error) {
	if len(node.Points) == 0 {
		return nil, nil
	}

	if buffer, ok := n.cache.Get(node); ok {
		return buffer, nil
	}

	buffer, err := n.ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Node." + node.Name,
		Contents: wgpu.ToBytes(node.Points),
		Usage:    wgpu.BufferUsageVertex,
	})

	if err != nil {
		return nil, fmt.Errorf("upload node %q: %w", node.Name, err)
	}

	n.cache.Add(node, buffer)

	return buffer, nil
}

// Forget releases the buffer of the node, if it was uploaded.
func (n *NodeBuffers) Forget(node *pointcloud.Node) {
	n.cache.Remove(node)
}

func (n *NodeBuffers) Len() int {
	return n.cache.Len()
}

func (n *NodeBuffers) Release() {
	n.cache.Purge()
}
