//go:build !headless

package orion

import (
	"errors"
	"fmt"

	"github.com/oliverbestmann/edlview/glimpse"
	"github.com/oliverbestmann/edlview/pulse"
)

// Run opens a window and renders the app until the window is closed.
func Run(opts RunOptions) error {
	app := opts.App
	if app == nil {
		return errors.New("App must not be nil")
	}

	conf := opts.Config.WithDefaults()

	// create a new window
	win, err := glimpse.NewWindow(
		conf.Window.Width,
		conf.Window.Height,
		conf.Window.Title,
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	defer win.Terminate()

	// initialize the webgpu device
	ctx, err := pulse.New(win.SurfaceDescriptor())
	if err != nil {
		return fmt.Errorf("initializing wgpu: %w", err)
	}

	defer ctx.Release()

	backend, err := pulse.NewBackend(ctx, pulse.BackendOptions{
		MSAA:           conf.Window.MSAA,
		MaxNodeBuffers: conf.Render.MaxLoadedNodes,
	})
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}

	defer backend.Release()

	viewer, err := NewViewer(backend, conf)
	if err != nil {
		return fmt.Errorf("create viewer: %w", err)
	}

	defer viewer.Release()

	forgetUnloadedNodes(viewer, backend)

	loopState := &LoopState{
		Window:  win,
		Backend: backend,
		Viewer:  viewer,
		App:     app,
	}

	return win.Run(func() error {
		return loopOnce(loopState)
	})
}
