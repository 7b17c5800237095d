package edl

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
)

var ErrRenderInProgress = errors.New("render already in progress")

// Streamer selects the octree nodes to draw for the given view.
type Streamer interface {
	Update(clouds []*pointcloud.PointCloud, camera *scene.Camera, width, height uint32) pointcloud.UpdateResult
}

type RendererOptions struct {
	Backend Backend
	Scene   *scene.Scene

	// Settings are read on every frame.
	Settings *Settings

	// Budget is raised while capturing a screenshot. Defaults to a
	// budget of pointcloud.DefaultPointBudget.
	Budget *pointcloud.Budget

	// Streamer is updated before a screenshot is captured, optional.
	Streamer Streamer

	// PointClouds returns the point clouds of the scene.
	PointClouds func() []*pointcloud.PointCloud

	// Camera is used when Render or CaptureScreenshot get no camera.
	Camera *scene.Camera
}

// FrameStats count what the renderer did since it was created.
type FrameStats struct {
	Frames          int
	Captures        int
	Composites      int
	SkippedCaptures int
	Screenshots     int

	VisiblePointClouds int
	Phase              Phase
}

// state is either uninitialized or ready.
type state interface {
	isState()
}

type uninitialized struct{}

type ready struct {
	targets  *TargetSet
	material *Material
}

func (uninitialized) isState() {}
func (*ready) isState()        {}

// Renderer draws the scene with eye dome lighting. Each frame renders the
// point clouds into the capture target, renders the scene into the
// destination and blends the shaded capture over it.
type Renderer struct {
	backend     Backend
	scene       *scene.Scene
	settings    *Settings
	budget      *pointcloud.Budget
	streamer    Streamer
	pointClouds func() []*pointcloud.PointCloud
	camera      *scene.Camera

	state  state
	screen *ScreenPass

	// last background passed to Clear
	background scene.Background

	busy  atomic.Bool
	stats FrameStats
}

func NewRenderer(opts RendererOptions) *Renderer {
	if opts.Settings == nil {
		settings := DefaultSettings()
		opts.Settings = &settings
	}

	if opts.Budget == nil {
		opts.Budget = pointcloud.NewBudget(pointcloud.DefaultPointBudget)
	}

	if opts.Scene == nil {
		opts.Scene = scene.New()
	}

	if opts.PointClouds == nil {
		opts.PointClouds = func() []*pointcloud.PointCloud { return nil }
	}

	return &Renderer{
		backend:     opts.Backend,
		scene:       opts.Scene,
		settings:    opts.Settings,
		budget:      opts.Budget,
		streamer:    opts.Streamer,
		pointClouds: opts.PointClouds,
		camera:      opts.Camera,
		state:       uninitialized{},
		screen:      NewScreenPass(),
	}
}

func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Targets returns the target set, or nil before the first frame.
func (r *Renderer) Targets() *TargetSet {
	switch st := r.state.(type) {
	case uninitialized:
		return nil
	case *ready:
		return st.targets
	default:
		panic(fmt.Sprintf("unknown renderer state %T", st))
	}
}

// Clear clears the bound target and both offscreen targets with the clear
// color of the background.
func (r *Renderer) Clear(background scene.Background) error {
	rd, err := r.ensureReady()
	if err != nil {
		return err
	}

	r.background = background

	r.backend.SetClearColor(background.ClearColor())

	if err := r.backend.Clear(true, true, true); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	return rd.targets.Clear(background)
}

// Render draws a frame to the screen. A nil camera falls back to the camera
// of the renderer options. Without any camera only the scene is drawn.
func (r *Renderer) Render(camera *scene.Camera) error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrRenderInProgress
	}

	defer r.busy.Store(false)

	width, height := r.backend.Size()

	return r.render(r.cameraOf(camera), nil, width, height)
}

// cameraOf snapshots the camera to render with. The zero camera has no
// projection and skips the eye dome lighting passes.
func (r *Renderer) cameraOf(camera *scene.Camera) scene.Camera {
	if camera == nil {
		camera = r.camera
	}

	if camera == nil {
		slog.Debug("Render without camera")
		return scene.Camera{}
	}

	return camera.Snapshot()
}

// Release releases the offscreen targets. The next frame creates them again.
func (r *Renderer) Release() {
	switch st := r.state.(type) {
	case uninitialized:
	case *ready:
		st.targets.Release()
	default:
		panic(fmt.Sprintf("unknown renderer state %T", st))
	}

	r.state = uninitialized{}
}

func (r *Renderer) ensureReady() (*ready, error) {
	switch st := r.state.(type) {
	case *ready:
		return st, nil

	case uninitialized:
		targets := NewTargetSet(r.backend)
		if err := targets.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize edl: %w", err)
		}

		rd := &ready{
			targets:  targets,
			material: NewMaterial(),
		}

		r.state = rd

		return rd, nil

	default:
		panic(fmt.Sprintf("unknown renderer state %T", st))
	}
}

// render runs the passes of a single frame. A nil destination is the screen.
func (r *Renderer) render(camera scene.Camera, destination RenderTarget, width, height uint32) error {
	rd, err := r.ensureReady()
	if err != nil {
		return err
	}

	entry := r.backend.RenderTarget()
	defer r.backend.SetRenderTarget(entry)

	defer r.setPhase(PhaseIdle)

	r.stats.Frames++

	if err := rd.targets.Resize(width, height); err != nil {
		return err
	}

	clouds := visiblePointClouds(r.pointClouds())
	r.stats.VisiblePointClouds = len(clouds)

	withEDL := len(clouds) > 0 && width > 0 && height > 0 && !camera.Projection.IsZero()

	if withEDL {
		r.setPhase(PhasePreparingMaterials)
		prepareMaterials(clouds, width, height)

		r.setPhase(PhaseCapturePass)
		if err := r.capture(rd, &camera); err != nil {
			return err
		}
	} else {
		r.stats.SkippedCaptures++
	}

	r.setPhase(PhaseScreenPass)
	r.backend.SetRenderTarget(destination)

	if err := r.backend.Render(r.scene, &camera); err != nil {
		return fmt.Errorf("render screen pass: %w", err)
	}

	if withEDL {
		r.setPhase(PhaseCompositing)

		uniforms := ComputeUniforms(camera, rd.targets.Capture(), *r.settings)
		rd.material.SetUniforms(uniforms)

		if uniforms.HasInputs() {
			if err := r.screen.Draw(r.backend, rd.material, destination); err != nil {
				return fmt.Errorf("composite: %w", err)
			}

			r.stats.Composites++
		}
	}

	// overlays drawn after this frame must not be hidden by the point clouds
	r.backend.SetRenderTarget(destination)
	if err := r.backend.ClearDepth(); err != nil {
		return fmt.Errorf("clear depth: %w", err)
	}

	return nil
}

func (r *Renderer) capture(rd *ready, camera *scene.Camera) error {
	r.backend.SetRenderTarget(rd.targets.Capture())

	// lights do not change the capture pass
	if lights := r.scene.SpotLights(); len(lights) > 0 {
		slog.Debug("Capture pass with spot lights", slog.Int("lights", len(lights)))

		if err := r.backend.Render(r.scene, camera); err != nil {
			return fmt.Errorf("render capture pass: %w", err)
		}
	} else {
		if err := r.backend.Render(r.scene, camera); err != nil {
			return fmt.Errorf("render capture pass: %w", err)
		}
	}

	r.stats.Captures++

	return nil
}

func (r *Renderer) setPhase(phase Phase) {
	r.stats.Phase = phase
}

func visiblePointClouds(clouds []*pointcloud.PointCloud) []*pointcloud.PointCloud {
	var visible []*pointcloud.PointCloud
	for _, cloud := range clouds {
		if cloud.Visible {
			visible = append(visible, cloud)
		}
	}

	return visible
}

func prepareMaterials(clouds []*pointcloud.PointCloud, width, height uint32) {
	for _, cloud := range clouds {
		material := cloud.Material

		material.Weighted = false
		material.UseEDL = true
		material.ScreenWidth = float32(width)
		material.ScreenHeight = float32(height)

		if cloud.Geometry != nil {
			material.Uniforms.OctreeSize = cloud.OctreeSize()
			material.Spacing = cloud.Geometry.Spacing
		}

		material.Invalidate()
	}
}
