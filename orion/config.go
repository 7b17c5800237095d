package orion

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Window     WindowConfig     `toml:"window"`
	Render     RenderConfig     `toml:"render"`
	EDL        edl.Settings     `toml:"edl"`
	Camera     CameraConfig     `toml:"camera"`
	Screenshot ScreenshotConfig `toml:"screenshot"`
	Terrain    TerrainConfig    `toml:"terrain"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	MSAA   bool   `toml:"msaa"`
}

type RenderConfig struct {
	// DisableEDL renders the point clouds without eye dome lighting.
	DisableEDL bool `toml:"disable_edl"`

	Background scene.Background `toml:"background"`

	PointBudget      int     `toml:"point_budget"`
	PointSize        float32 `toml:"point_size"`
	MinNodePixelSize float32 `toml:"min_node_pixel_size"`
	MaxLoadedNodes   int     `toml:"max_loaded_nodes"`
}

type CameraConfig struct {
	// vertical field of view in degrees
	FovY float32 `toml:"fov_y"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`

	// Orbit is the camera rotation speed in degrees per second.
	Orbit float32 `toml:"orbit"`
}

type ScreenshotConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Path   string `toml:"path"`
}

// TerrainConfig describes the synthetic point cloud shown by the viewer.
type TerrainConfig struct {
	Points    int     `toml:"points"`
	Seed      int     `toml:"seed"`
	Size      float32 `toml:"size"`
	Height    float32 `toml:"height"`
	Frequency float32 `toml:"frequency"`
}

// DefaultConfig returns the configuration used for values not present in a
// config file.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "edlview",
		},

		Render: RenderConfig{
			Background:       scene.BackgroundBlack,
			PointBudget:      pointcloud.DefaultPointBudget,
			PointSize:        2,
			MinNodePixelSize: 50,
			MaxLoadedNodes:   pointcloud.DefaultMaxLoadedNodes,
		},

		EDL: edl.DefaultSettings(),

		Camera: CameraConfig{
			FovY:  60,
			Near:  0.1,
			Far:   1000,
			Orbit: 10,
		},

		Screenshot: ScreenshotConfig{
			Width:  1920,
			Height: 1080,
			Path:   "screenshot.png",
		},

		Terrain: TerrainConfig{
			Points:    500_000,
			Seed:      1337,
			Size:      100,
			Height:    20,
			Frequency: 0.02,
		},
	}
}

// WithDefaults replaces values that can not be used with their defaults.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()

	if c.Window.Width <= 0 {
		c.Window.Width = def.Window.Width
	}

	if c.Window.Height <= 0 {
		c.Window.Height = def.Window.Height
	}

	if c.Window.Title == "" {
		c.Window.Title = def.Window.Title
	}

	if c.Render.PointBudget <= 0 {
		c.Render.PointBudget = def.Render.PointBudget
	}

	if c.Render.PointSize <= 0 {
		c.Render.PointSize = def.Render.PointSize
	}

	if c.Render.MinNodePixelSize <= 0 {
		c.Render.MinNodePixelSize = def.Render.MinNodePixelSize
	}

	if c.Render.MaxLoadedNodes <= 0 {
		c.Render.MaxLoadedNodes = def.Render.MaxLoadedNodes
	}

	if c.EDL.Radius <= 0 {
		c.EDL.Radius = def.EDL.Radius
	}

	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		c.Camera.FovY = def.Camera.FovY
	}

	if c.Camera.Near <= 0 {
		c.Camera.Near = def.Camera.Near
	}

	if c.Camera.Far <= c.Camera.Near {
		c.Camera.Far = max(def.Camera.Far, c.Camera.Near*2)
	}

	if c.Screenshot.Width <= 0 {
		c.Screenshot.Width = def.Screenshot.Width
	}

	if c.Screenshot.Height <= 0 {
		c.Screenshot.Height = def.Screenshot.Height
	}

	if c.Screenshot.Path == "" {
		c.Screenshot.Path = def.Screenshot.Path
	}

	if c.Terrain.Points <= 0 {
		c.Terrain.Points = def.Terrain.Points
	}

	if c.Terrain.Size <= 0 {
		c.Terrain.Size = def.Terrain.Size
	}

	if c.Terrain.Frequency <= 0 {
		c.Terrain.Frequency = def.Terrain.Frequency
	}

	return c
}

// ParseConfig reads a toml config. Keys not known to Config are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	conf := DefaultConfig()

	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&conf); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return Config{}, fmt.Errorf("parse config:\n%s", strictErr.String())
		}

		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return conf.WithDefaults(), nil
}

// LoadConfig reads the config file at path.
func LoadConfig(path string) (Config, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	defer fp.Close()

	return ParseConfig(fp)
}
