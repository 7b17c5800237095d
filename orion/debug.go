package orion

import (
	"log/slog"
	"runtime"
	"time"
)

type frame struct {
	Total time.Duration

	AcquireFrame time.Duration
	Update       time.Duration
	Render       time.Duration
}

var DebugStats debugStats

// debugStats records where the time of the recent frames went.
type debugStats struct {
	frameCount int
	frames     [60 * 10]frame

	timeStartFrame  time.Time
	timeStartUpdate time.Time
	timeStartRender time.Time
	timeEndFrame    time.Time

	mem runtime.MemStats
}

func (d *debugStats) StartFrame() {
	now := time.Now()

	if !d.timeStartFrame.IsZero() {
		d.frames[d.frameCount%len(d.frames)] = frame{
			Total:        now.Sub(d.timeStartFrame),
			AcquireFrame: d.timeStartUpdate.Sub(d.timeStartFrame),
			Update:       d.timeStartRender.Sub(d.timeStartUpdate),
			Render:       d.timeEndFrame.Sub(d.timeStartRender),
		}

		d.frameCount += 1
	}

	d.timeStartFrame = now
}

func (d *debugStats) StartUpdate() {
	d.timeStartUpdate = time.Now()
}

func (d *debugStats) StartRender() {
	d.timeStartRender = time.Now()
}

func (d *debugStats) EndFrame() {
	d.timeEndFrame = time.Now()
}

// average returns the mean durations of the recorded frames.
func (d *debugStats) average() frame {
	var result frame
	var frameCount time.Duration

	for _, frame := range d.frames {
		if frame.Total > 0 {
			frameCount += 1
			result.Total += frame.Total
			result.AcquireFrame += frame.AcquireFrame
			result.Update += frame.Update
			result.Render += frame.Render
		}
	}

	if frameCount == 0 {
		return frame{}
	}

	result.Total /= frameCount
	result.AcquireFrame /= frameCount
	result.Update /= frameCount
	result.Render /= frameCount

	return result
}

func (d *debugStats) fps() float64 {
	avg := d.average()
	if avg.Total == 0 {
		return 0
	}

	return 1.0 / avg.Total.Seconds()
}

// Log writes the frame, renderer and memory statistics.
func (d *debugStats) Log(viewer *Viewer) {
	runtime.ReadMemStats(&d.mem)

	lastCycle := (d.mem.NumGC + 255) % 256
	lastCycleDur := time.Duration(d.mem.PauseNs[lastCycle])

	avg := d.average()
	stats := viewer.Renderer().Stats()
	update := viewer.LastUpdate()

	slog.Info("Frame stats",
		slog.Group("frames",
			slog.Float64("fps", d.fps()),
			slog.Int("count", d.frameCount),
			slog.Duration("acquire", avg.AcquireFrame),
			slog.Duration("update", avg.Update),
			slog.Duration("render", avg.Render),
		),
		slog.Group("renderer",
			slog.Int("captures", stats.Captures),
			slog.Int("composites", stats.Composites),
			slog.Int("skipped", stats.SkippedCaptures),
			slog.Int("screenshots", stats.Screenshots),
			slog.Int("pointClouds", stats.VisiblePointClouds),
		),
		slog.Group("streamer",
			slog.Int("nodes", update.VisibleNodes),
			slog.Int("points", update.VisiblePoints),
			slog.Int("budget", update.Budget),
			slog.Bool("exhausted", update.Exhausted),
			slog.Int("loaded", viewer.Streamer().Loaded()),
		),
		slog.Group("memory",
			slog.Uint64("heapObjects", d.mem.HeapObjects),
			slog.Float64("heapInUseMb", float64(d.mem.HeapInuse)/(1024.0*1024.0)),
			slog.Uint64("gcCycles", uint64(d.mem.NumGC)),
			slog.Duration("gcPause", lastCycleDur),
		),
	)
}
