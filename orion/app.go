package orion

import "fmt"

// App drives the content of the viewer.
type App interface {
	// Initialize is called once before the first frame.
	Initialize(viewer *Viewer) error

	// Update is called every frame before the point clouds are streamed.
	Update(viewer *Viewer, times *FrameTimes) error
}

// performUpdate runs App.Initialize once, App.Update and the streamer update.
func performUpdate(viewer *Viewer, app App, initialized *bool, times *FrameTimes) error {
	DebugStats.StartUpdate()

	if !*initialized {
		*initialized = true

		if err := app.Initialize(viewer); err != nil {
			return fmt.Errorf("initialize app: %w", err)
		}
	}

	if err := app.Update(viewer, times); err != nil {
		return fmt.Errorf("update app: %w", err)
	}

	viewer.Update()

	return nil
}
