// Package orion runs the point cloud viewer. It owns the scene, the camera,
// the point budget and the streamer and renders frames through an edl
// renderer, either into a window or headless.
package orion

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"slices"

	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
)

// Viewer holds everything needed to draw point clouds.
type Viewer struct {
	backend edl.Backend

	scene  *scene.Scene
	camera *scene.Camera
	clouds []*pointcloud.PointCloud

	budget   *pointcloud.Budget
	streamer *pointcloud.Streamer
	settings *edl.Settings
	renderer *edl.Renderer

	background scene.Background
	edlEnabled bool
	pointSize  float32

	lastUpdate pointcloud.UpdateResult
}

func NewViewer(backend edl.Backend, conf Config) (*Viewer, error) {
	conf = conf.WithDefaults()

	budget := pointcloud.NewBudget(conf.Render.PointBudget)

	streamer, err := pointcloud.NewStreamer(pointcloud.StreamerOptions{
		Budget:           budget,
		MaxLoadedNodes:   conf.Render.MaxLoadedNodes,
		MinNodePixelSize: conf.Render.MinNodePixelSize,
	})

	if err != nil {
		return nil, fmt.Errorf("create streamer: %w", err)
	}

	width, height := backend.Size()

	camera := scene.NewPerspectiveCamera(
		glm.DegToRad(conf.Camera.FovY),
		aspectOf(width, height),
		conf.Camera.Near,
		conf.Camera.Far,
	)

	settings := conf.EDL

	v := &Viewer{
		backend:    backend,
		scene:      scene.New(),
		camera:     camera,
		budget:     budget,
		streamer:   streamer,
		settings:   &settings,
		background: conf.Render.Background,
		edlEnabled: !conf.Render.DisableEDL,
		pointSize:  conf.Render.PointSize,
	}

	v.renderer = edl.NewRenderer(edl.RendererOptions{
		Backend:     backend,
		Scene:       v.scene,
		Settings:    v.settings,
		Budget:      budget,
		Streamer:    streamer,
		PointClouds: v.PointClouds,
		Camera:      v.camera,
	})

	return v, nil
}

func (v *Viewer) Camera() *scene.Camera {
	return v.camera
}

func (v *Viewer) Scene() *scene.Scene {
	return v.scene
}

// Settings returns the eye dome lighting settings. Changes apply to the
// next frame.
func (v *Viewer) Settings() *edl.Settings {
	return v.settings
}

func (v *Viewer) Budget() *pointcloud.Budget {
	return v.budget
}

func (v *Viewer) Streamer() *pointcloud.Streamer {
	return v.streamer
}

func (v *Viewer) Renderer() *edl.Renderer {
	return v.renderer
}

func (v *Viewer) PointClouds() []*pointcloud.PointCloud {
	return v.clouds
}

// LastUpdate returns the result of the latest streamer update.
func (v *Viewer) LastUpdate() pointcloud.UpdateResult {
	return v.lastUpdate
}

// Add places the point cloud into the scene.
func (v *Viewer) Add(cloud *pointcloud.PointCloud) {
	cloud.Material.UseEDL = v.edlEnabled
	cloud.Material.PointSize = v.pointSize
	cloud.Material.Invalidate()

	v.scene.Add(cloud)
	v.clouds = append(v.clouds, cloud)

	var pointCount int
	if cloud.Geometry != nil {
		pointCount = cloud.Geometry.PointCount
	}

	slog.Info("Point cloud added",
		slog.String("name", cloud.Name),
		slog.Int("points", pointCount),
	)
}

// RemovePointCloud removes the cloud from the scene and unloads its nodes.
// Returns false if the cloud was not part of the viewer.
func (v *Viewer) RemovePointCloud(cloud *pointcloud.PointCloud) bool {
	idx := slices.Index(v.clouds, cloud)
	if idx < 0 {
		return false
	}

	v.clouds = slices.Delete(v.clouds, idx, idx+1)
	v.scene.Remove(cloud)
	v.streamer.Forget(cloud)

	cloud.VisibleNodes = nil

	slog.Info("Point cloud removed", slog.String("name", cloud.Name))

	return true
}

func (v *Viewer) EDLEnabled() bool {
	return v.edlEnabled
}

// SetEDLEnabled switches eye dome lighting on or off. Without it the scene
// is rendered straight to the screen.
func (v *Viewer) SetEDLEnabled(enabled bool) {
	if v.edlEnabled == enabled {
		return
	}

	v.edlEnabled = enabled

	for _, cloud := range v.clouds {
		cloud.Material.UseEDL = enabled
		cloud.Material.Invalidate()
	}
}

func (v *Viewer) Background() scene.Background {
	return v.background
}

func (v *Viewer) SetBackground(background scene.Background) {
	v.background = background
}

// Resize adapts the camera to a new screen size.
func (v *Viewer) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}

	v.camera.SetAspect(aspectOf(width, height))
}

// Update selects the octree nodes to draw for the current camera.
func (v *Viewer) Update() pointcloud.UpdateResult {
	width, height := v.backend.Size()
	v.lastUpdate = v.streamer.Update(v.clouds, v.camera, width, height)
	return v.lastUpdate
}

// Render clears the screen and draws a frame.
func (v *Viewer) Render() error {
	if err := v.renderer.Clear(v.background); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	if v.edlEnabled {
		return v.renderer.Render(v.camera)
	}

	v.backend.SetRenderTarget(nil)

	if err := v.backend.Render(v.scene, v.camera); err != nil {
		return fmt.Errorf("render scene: %w", err)
	}

	return nil
}

// Screenshot renders a frame of the given size offscreen. The screenshot is
// empty if ctx was cancelled or another screenshot raised the point budget.
func (v *Viewer) Screenshot(ctx context.Context, width, height uint32) (edl.Screenshot, error) {
	var result edl.Screenshot

	err := v.renderer.CaptureScreenshot(ctx, v.camera, width, height, func(screenshot edl.Screenshot) {
		result = screenshot
	})

	return result, err
}

// WriteScreenshot renders a screenshot and writes it to path as png.
func (v *Viewer) WriteScreenshot(ctx context.Context, path string, width, height uint32) error {
	screenshot, err := v.Screenshot(ctx, width, height)
	if err != nil {
		return err
	}

	if screenshot.Empty() {
		return fmt.Errorf("screenshot %dx%d was skipped", width, height)
	}

	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot file: %w", err)
	}

	defer fp.Close()

	if err := png.Encode(fp, screenshot.Image()); err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}

	slog.Info("Screenshot written",
		slog.String("path", path),
		slog.Int("width", int(width)),
		slog.Int("height", int(height)),
	)

	return fp.Close()
}

// Release releases the offscreen targets of the renderer.
func (v *Viewer) Release() {
	v.renderer.Release()
}

func aspectOf(width, height uint32) float32 {
	if width == 0 || height == 0 {
		return 1
	}

	return float32(width) / float32(height)
}
