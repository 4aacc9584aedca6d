package sim

import "context"

// Kit is the control surface of the external simulation application.
// Settings and extensions accumulate before Start and take effect at launch.
type Kit interface {
	// SetSetting records a kit setting, e.g. "/app/livestream/port".
	SetSetting(path string, value any)
	// EnableExtension records a kit extension to enable at launch.
	EnableExtension(name string)
	// Start launches the application.
	Start(ctx context.Context) error
	// WaitReady blocks until the application reports readiness, exits, or
	// ctx is cancelled.
	WaitReady(ctx context.Context) error
	// Update performs one pump of the application loop and reports failure
	// if the application has died.
	Update() error
	// IsRunning reports whether the application is still alive.
	IsRunning() bool
	// Close shuts the application down. Safe to call after the application
	// has already exited.
	Close() error
}

// LaunchConfig mirrors the kit's headless launch parameters.
type LaunchConfig struct {
	Width          int
	Height         int
	WindowWidth    int
	WindowHeight   int
	Headless       bool
	HideUI         bool
	Renderer       string
	DisplayOptions int
}

// DefaultLaunchConfig returns the launch parameters for headless
// livestreaming: 720p render target, raytraced lighting, default grid shown.
func DefaultLaunchConfig() LaunchConfig {
	return LaunchConfig{
		Width:          1280,
		Height:         720,
		WindowWidth:    1920,
		WindowHeight:   1080,
		Headless:       true,
		HideUI:         false,
		Renderer:       "RaytracedLighting",
		DisplayOptions: 3286,
	}
}
