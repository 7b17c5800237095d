package edl

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
)

// minimum point budget while capturing a screenshot
const screenshotBudget = 10_000_000

// Screenshot holds rgba8 pixels, top row first. A zero sized screenshot
// signals that the capture could not be completed.
type Screenshot struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

func (s Screenshot) Empty() bool {
	return s.Width == 0 || s.Height == 0
}

// Image wraps the pixels into an image without copying them.
func (s Screenshot) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    s.Pixels,
		Stride: int(s.Width) * 4,
		Rect:   image.Rect(0, 0, int(s.Width), int(s.Height)),
	}
}

// CaptureScreenshot renders a single frame of the given size into an
// offscreen target and passes the pixels to callback. The point budget is
// raised for a streamer update before rendering and is restored on every
// return path. A nil camera falls back to the camera of the renderer
// options.
//
// If ctx is done before the pixels are read back, or the budget is already
// overridden, callback receives an empty Screenshot and no error is returned.
func (r *Renderer) CaptureScreenshot(ctx context.Context, camera *scene.Camera, width, height uint32, callback func(Screenshot)) error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrRenderInProgress
	}

	defer r.busy.Store(false)

	if width == 0 || height == 0 || ctx.Err() != nil {
		callback(Screenshot{})
		return nil
	}

	snapshot := r.cameraOf(camera)

	switch err := r.streamForScreenshot(&snapshot, width, height); {
	case errors.Is(err, pointcloud.ErrBudgetOverridden):
		slog.Warn("Point budget is overridden, skipping screenshot")
		callback(Screenshot{})
		return nil

	case err != nil:
		return err
	}

	target, err := r.backend.NewRenderTarget(TargetOptions{
		Label:       "screenshot",
		Width:       width,
		Height:      height,
		DepthFormat: DepthUint,
	})

	if err != nil {
		return fmt.Errorf("create screenshot target: %w", err)
	}

	defer target.Release()

	if err := r.clearScreenshotTarget(target); err != nil {
		return err
	}

	if err := r.render(snapshot, target, width, height); err != nil {
		return fmt.Errorf("render screenshot: %w", err)
	}

	if ctx.Err() != nil {
		slog.Warn("Screenshot cancelled before read back", slog.Any("err", ctx.Err()))
		callback(Screenshot{})
		return nil
	}

	pixels, err := r.backend.ReadPixels(target)
	if err != nil {
		return fmt.Errorf("read screenshot pixels: %w", err)
	}

	r.stats.Screenshots++

	callback(Screenshot{
		Width:  width,
		Height: height,
		Pixels: pixels,
	})

	return nil
}

// streamForScreenshot runs a streamer update with a raised point budget. The
// budget is restored right after the update, the render uses the nodes that
// were selected.
func (r *Renderer) streamForScreenshot(camera *scene.Camera, width, height uint32) error {
	previous := r.budget.Value()

	guard, err := r.budget.Override(max(screenshotBudget, 2*previous))
	if err != nil {
		return err
	}

	defer guard.Restore()

	if r.streamer != nil {
		result := r.streamer.Update(r.pointClouds(), camera, width, height)

		slog.Info(
			"Updated point clouds for screenshot",
			slog.Int("points", result.VisiblePoints),
			slog.Int("budget", result.Budget),
		)
	}

	guard.Restore()

	return nil
}

func (r *Renderer) clearScreenshotTarget(target RenderTarget) error {
	rd, err := r.ensureReady()
	if err != nil {
		return err
	}

	previous := r.backend.RenderTarget()
	defer r.backend.SetRenderTarget(previous)

	r.backend.SetRenderTarget(target)
	r.backend.SetClearColor(r.background.ClearColor())

	if err := r.backend.Clear(true, true, true); err != nil {
		return fmt.Errorf("clear screenshot target: %w", err)
	}

	// the capture target must match the screenshot, the next interactive
	// frame resizes it back to the screen
	if err := rd.targets.Resize(target.Width(), target.Height()); err != nil {
		return err
	}

	return rd.targets.Clear(r.background)
}
