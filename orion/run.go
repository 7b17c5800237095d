package orion

import (
	"context"
	"errors"
	"fmt"

	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/pointcloud"
)

// nodeCache is implemented by backends keeping per node gpu buffers.
type nodeCache interface {
	ForgetNode(node *pointcloud.Node)
}

// forgetUnloadedNodes lets the node buffers of the backend follow the
// nodes the streamer keeps loaded.
func forgetUnloadedNodes(viewer *Viewer, backend edl.Backend) {
	if cache, ok := backend.(nodeCache); ok {
		viewer.Streamer().OnUnload(cache.ForgetNode)
	}
}

type RunOptions struct {
	// app to run. This is the only field that is required
	App App

	Config Config
}

// RunHeadless initializes and updates the app once, then renders a
// screenshot with the given backend and writes it as png to the configured
// screenshot path.
func RunHeadless(ctx context.Context, backend edl.Backend, opts RunOptions) error {
	app := opts.App
	if app == nil {
		return errors.New("App must not be nil")
	}

	conf := opts.Config.WithDefaults()

	viewer, err := NewViewer(backend, conf)
	if err != nil {
		return fmt.Errorf("create viewer: %w", err)
	}

	defer viewer.Release()

	forgetUnloadedNodes(viewer, backend)

	var initialized bool
	var times FrameTimes
	times.Tick()

	if err := performUpdate(viewer, app, &initialized, &times); err != nil {
		return err
	}

	// the camera follows the screenshot, not the screen
	viewer.Resize(uint32(conf.Screenshot.Width), uint32(conf.Screenshot.Height))

	return viewer.WriteScreenshot(ctx,
		conf.Screenshot.Path,
		uint32(conf.Screenshot.Width),
		uint32(conf.Screenshot.Height),
	)
}
