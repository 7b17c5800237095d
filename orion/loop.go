//go:build !headless

package orion

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/edlview/glimpse"
	"github.com/oliverbestmann/edlview/pulse"
)

type LoopState struct {
	Window  glimpse.Window
	Backend *pulse.Backend
	Viewer  *Viewer
	App     App

	SurfaceWidth  uint32
	SurfaceHeight uint32
	Initialized   bool

	Times FrameTimes
}

func loopOnce(loopState *LoopState) error {
	DebugStats.StartFrame()

	// get surface size for next frame
	surfaceWidth, surfaceHeight := loopState.Window.GetSize()

	// nothing to render into while minimized
	if surfaceWidth == 0 || surfaceHeight == 0 {
		return nil
	}

	// reconfigure surface if needed
	if loopState.SurfaceWidth != surfaceWidth || loopState.SurfaceHeight != surfaceHeight {
		slog.Debug("Resize surface",
			slog.Int("width", int(surfaceWidth)),
			slog.Int("height", int(surfaceHeight)),
		)

		if err := loopState.Backend.Resize(surfaceWidth, surfaceHeight); err != nil {
			return fmt.Errorf("resize surface: %w", err)
		}

		loopState.Viewer.Resize(surfaceWidth, surfaceHeight)

		loopState.SurfaceWidth = surfaceWidth
		loopState.SurfaceHeight = surfaceHeight
	}

	// get the surface texture (the actual screen)
	if err := loopState.Backend.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	err := renderFrame(loopState)

	// present even if rendering failed to hand the surface texture back
	if endErr := loopState.Backend.EndFrame(); err == nil && endErr != nil {
		err = fmt.Errorf("end frame: %w", endErr)
	}

	DebugStats.EndFrame()

	if loopState.Times.Tick() {
		DebugStats.Log(loopState.Viewer)
	}

	return err
}

func renderFrame(loopState *LoopState) error {
	if err := performUpdate(loopState.Viewer, loopState.App, &loopState.Initialized, &loopState.Times); err != nil {
		return err
	}

	DebugStats.StartRender()

	if err := loopState.Viewer.Render(); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	return nil
}
