package edl

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/edlview/scene"
)

// size of the targets until the first resize
const placeholderSize = 1024

// TargetSet owns the two offscreen targets of the pipeline: the capture
// target receiving color and depth of the point cloud pass, and the regular
// target with the same size.
type TargetSet struct {
	backend Backend

	capture RenderTarget
	regular RenderTarget

	// color format of the capture target after checking the capabilities
	captureFormat ColorFormat
}

func NewTargetSet(backend Backend) *TargetSet {
	return &TargetSet{backend: backend}
}

// Initialize creates both targets at a placeholder size. Calling Initialize
// on an initialized set does nothing.
func (t *TargetSet) Initialize() error {
	if t.Initialized() {
		return nil
	}

	t.captureFormat = captureColorFormat(t.backend.Capabilities())

	if err := t.create(placeholderSize, placeholderSize); err != nil {
		return err
	}

	slog.Debug(
		"Initialized edl render targets",
		slog.Int("colorFormat", int(t.captureFormat)),
	)

	return nil
}

func (t *TargetSet) Initialized() bool {
	return t.capture != nil && t.regular != nil
}

// Resize recreates both targets with the given size. Does nothing if the set
// is not initialized, the size did not change or one dimension is zero.
func (t *TargetSet) Resize(width, height uint32) error {
	if !t.Initialized() || width == 0 || height == 0 {
		return nil
	}

	if t.capture.Width() == width && t.capture.Height() == height &&
		t.regular.Width() == width && t.regular.Height() == height {
		return nil
	}

	t.release()

	if err := t.create(width, height); err != nil {
		return fmt.Errorf("resize edl targets to %dx%d: %w", width, height, err)
	}

	return nil
}

// Clear clears both targets with the clear color of the background mode. The
// stencil buffer of the regular target is kept. The binding that was active
// before the call is restored.
func (t *TargetSet) Clear(background scene.Background) error {
	if !t.Initialized() {
		return nil
	}

	previous := t.backend.RenderTarget()
	defer t.backend.SetRenderTarget(previous)

	t.backend.SetClearColor(background.ClearColor())

	t.backend.SetRenderTarget(t.capture)
	if err := t.backend.Clear(true, true, true); err != nil {
		return fmt.Errorf("clear capture target: %w", err)
	}

	t.backend.SetRenderTarget(t.regular)
	if err := t.backend.Clear(true, true, false); err != nil {
		return fmt.Errorf("clear regular target: %w", err)
	}

	return nil
}

// Release releases both targets. The set can be initialized again later.
func (t *TargetSet) Release() {
	t.release()
}

func (t *TargetSet) Size() (width, height uint32) {
	if t.capture == nil {
		return 0, 0
	}

	return t.capture.Width(), t.capture.Height()
}

func (t *TargetSet) Capture() RenderTarget {
	return t.capture
}

func (t *TargetSet) Regular() RenderTarget {
	return t.regular
}

func (t *TargetSet) create(width, height uint32) error {
	capture, err := t.backend.NewRenderTarget(TargetOptions{
		Label:       "edl capture",
		Width:       width,
		Height:      height,
		ColorFormat: t.captureFormat,
		DepthFormat: DepthUint,
		MinFilter:   FilterNearest,
		MagFilter:   FilterNearest,
	})

	if err != nil {
		return fmt.Errorf("create capture target: %w", err)
	}

	regular, err := t.backend.NewRenderTarget(TargetOptions{
		Label:       "edl regular",
		Width:       width,
		Height:      height,
		DepthFormat: DepthUint,
		MinFilter:   FilterNearest,
		MagFilter:   FilterNearest,
	})

	if err != nil {
		capture.Release()
		return fmt.Errorf("create regular target: %w", err)
	}

	t.capture = capture
	t.regular = regular

	return nil
}

func (t *TargetSet) release() {
	if t.capture != nil {
		t.capture.Release()
		t.capture = nil
	}

	if t.regular != nil {
		t.regular.Release()
		t.regular = nil
	}
}

func captureColorFormat(caps Capabilities) ColorFormat {
	switch {
	case caps.FloatColorTargets:
		return ColorFormatFloat

	case caps.HalfFloatColorTargets:
		slog.Warn("Backend has no float color targets, edl depth is stored with half precision")
		return ColorFormatHalfFloat

	default:
		slog.Warn("Backend has no float color targets, edl shading is not available")
		return ColorFormatDefault
	}
}
