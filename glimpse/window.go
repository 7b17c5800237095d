// Package glimpse opens a native window that a webgpu surface can render to.
package glimpse

import "github.com/cogentcore/webgpu/wgpu"

type Window interface {
	// GetSize returns the size of the framebuffer in pixels.
	GetSize() (uint32, uint32)

	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Run calls render until the window is closed or render fails.
	Run(render func() error) error

	Terminate()
}
