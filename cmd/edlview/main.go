package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/orion"
	"github.com/oliverbestmann/edlview/pulse"
	"github.com/oliverbestmann/edlview/soft"
	"github.com/pkg/profile"
)

func main() {
	configPath := flag.String("config", "", "Path of a toml config file")
	headless := flag.Bool("headless", false, "Render a single screenshot without opening a window")
	backendName := flag.String("backend", "soft", "Backend for headless rendering, soft or webgpu")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	cpuProfile := flag.Bool("profile", false, "Write a cpu profile to the working directory")

	conf := orion.DefaultConfig()

	// flags are registered with the defaults and only applied if given
	overrides := flag.NewFlagSet("", flag.ContinueOnError)
	output := overrides.String("out", conf.Screenshot.Path, "Output path of the screenshot")
	width := overrides.Int("width", conf.Screenshot.Width, "Width of the screenshot")
	height := overrides.Int("height", conf.Screenshot.Height, "Height of the screenshot")
	disableEDL := overrides.Bool("no-edl", false, "Render without eye dome lighting")
	strength := overrides.Float64("strength", float64(conf.EDL.Strength), "Strength of the eye dome lighting")
	radius := overrides.Float64("radius", float64(conf.EDL.Radius), "Radius of the eye dome lighting in pixels")
	opacity := overrides.Float64("opacity", float64(conf.EDL.Opacity), "Opacity of the eye dome lighting")
	budget := overrides.Int("budget", conf.Render.PointBudget, "Maximum number of points to render")
	points := overrides.Int("points", conf.Terrain.Points, "Number of terrain points to generate")

	overrides.VisitAll(func(f *flag.Flag) {
		flag.Var(f.Value, f.Name, f.Usage)
	})

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})))

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	if *configPath != "" {
		var err error
		conf, err = orion.LoadConfig(*configPath)
		orion.Handle(err, "load config %q", *configPath)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			conf.Screenshot.Path = *output
		case "width":
			conf.Screenshot.Width = *width
		case "height":
			conf.Screenshot.Height = *height
		case "no-edl":
			conf.Render.DisableEDL = *disableEDL
		case "strength":
			conf.EDL.Strength = float32(*strength)
		case "radius":
			conf.EDL.Radius = float32(*radius)
		case "opacity":
			conf.EDL.Opacity = float32(*opacity)
		case "budget":
			conf.Render.PointBudget = *budget
		case "points":
			conf.Terrain.Points = *points
		}
	})

	conf = conf.WithDefaults()

	app := &terrainApp{
		terrain: conf.Terrain,
		orbit:   conf.Camera.Orbit,
	}

	opts := orion.RunOptions{App: app, Config: conf}

	if !*headless {
		orion.Handle(runWindow(opts), "run viewer")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	backend, release, err := headlessBackend(*backendName, conf)
	orion.Handle(err, "create %s backend", *backendName)
	defer release()

	orion.Handle(orion.RunHeadless(ctx, backend, opts), "render screenshot")
}

// headlessBackend creates a backend rendering into memory. The returned
// function releases it.
func headlessBackend(name string, conf orion.Config) (edl.Backend, func(), error) {
	width := uint32(conf.Screenshot.Width)
	height := uint32(conf.Screenshot.Height)

	switch name {
	case "soft":
		return soft.New(width, height), func() {}, nil

	case "webgpu":
		ctx, err := pulse.NewHeadless()
		if err != nil {
			return nil, nil, err
		}

		backend, err := pulse.NewBackend(ctx, pulse.BackendOptions{
			MaxNodeBuffers: conf.Render.MaxLoadedNodes,
		})

		if err != nil {
			ctx.Release()
			return nil, nil, err
		}

		if err := backend.Resize(width, height); err != nil {
			backend.Release()
			ctx.Release()
			return nil, nil, err
		}

		release := func() {
			backend.Release()
			ctx.Release()
		}

		return backend, release, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", name)
	}
}
