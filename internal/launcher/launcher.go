package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/isaac-tools/simstream/internal/address"
	"github.com/isaac-tools/simstream/internal/hostcheck"
	"github.com/isaac-tools/simstream/internal/platform/config"
	"github.com/isaac-tools/simstream/internal/platform/correlation"
	"github.com/isaac-tools/simstream/internal/sim"
)

// livestreamExtension serves the WebRTC stream; the widget extensions expose
// the stage and layers panels in the streamed UI.
const (
	livestreamExtension = "omni.services.livestream.nvcf"
	stageExtension      = "omni.kit.widget.stage"
	layersExtension     = "omni.kit.widget.layers"
)

const defaultUpdateInterval = 100 * time.Millisecond

// State tracks progress through the one-shot launch flow.
type State int

const (
	StateIdle State = iota
	StateArchChecked
	StateAddressResolved
	StateLaunching
	StateRunning
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArchChecked:
		return "arch_checked"
	case StateAddressResolved:
		return "address_resolved"
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options carry the injectable collaborators; zero values select production
// defaults.
type Options struct {
	Arch           string
	Clock          clockwork.Clock
	Out            io.Writer
	UpdateInterval time.Duration
}

// Launcher runs one launch. Not safe for concurrent use; Run may be called
// once.
type Launcher struct {
	cfg    *config.Config
	source address.Source
	kit    sim.Kit

	arch           string
	clock          clockwork.Clock
	out            io.Writer
	updateInterval time.Duration

	state State
}

// New wires a launcher from its collaborators.
func New(cfg *config.Config, source address.Source, kit sim.Kit, opts Options) *Launcher {
	if opts.Arch == "" {
		opts.Arch = runtime.GOARCH
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = defaultUpdateInterval
	}
	return &Launcher{
		cfg:            cfg,
		source:         source,
		kit:            kit,
		arch:           opts.Arch,
		clock:          opts.Clock,
		out:            opts.Out,
		updateInterval: opts.UpdateInterval,
		state:          StateIdle,
	}
}

// State returns the launch state. Only meaningful before Run or after it
// returns.
func (l *Launcher) State() State {
	return l.state
}

// Run executes the launch flow. It blocks until ctx is cancelled (the
// interrupt), the kit stops on its own, or a step fails. A nil return means a
// clean shutdown.
func (l *Launcher) Run(ctx context.Context) error {
	// The guard runs before any network or process side effect.
	if err := hostcheck.Check(l.arch); err != nil {
		return err
	}
	l.state = StateArchChecked

	ip, err := l.source.Resolve(ctx)
	if err != nil {
		return err
	}
	l.state = StateAddressResolved

	l.state = StateLaunching
	slog.InfoContext(ctx, "Starting Isaac Sim with livestream",
		"port", l.cfg.Port, "gpu", l.cfg.GPU, "endpoint", ip)

	l.configureKit(ctx, ip)
	if err := l.kit.Start(ctx); err != nil {
		return err
	}

	ready := l.kit.WaitReady(ctx)
	switch {
	case ready == nil:
		l.state = StateRunning
		fmt.Fprint(l.out, renderBanner(ip, l.cfg.Port))
		if err := l.runLoop(ctx); err != nil {
			return err
		}
	case errors.Is(ready, context.Canceled):
		// Interrupted during startup; the kit process still needs closing.
	default:
		return ready
	}

	l.state = StateShuttingDown
	fmt.Fprintln(l.out, "\nShutting down Isaac Sim...")
	if err := l.kit.Close(); err != nil {
		return err
	}
	fmt.Fprintln(l.out, "Isaac Sim closed successfully.")
	l.state = StateStopped
	return nil
}

func (l *Launcher) configureKit(ctx context.Context, ip string) {
	l.kit.SetSetting("/app/window/drawMouse", true)
	l.kit.SetSetting("/app/livestream/publicEndpointAddress", ip)
	l.kit.SetSetting("/app/livestream/port", l.cfg.Port)
	l.kit.SetSetting("/renderer/multiGpu/Enabled", false)
	l.kit.SetSetting("/renderer/activeGpu", l.cfg.GPU)
	if id, ok := correlation.SessionID(ctx); ok {
		l.kit.SetSetting("/app/livestream/sessionId", id)
	}

	l.kit.EnableExtension(livestreamExtension)
	l.kit.EnableExtension(stageExtension)
	l.kit.EnableExtension(layersExtension)
}

// runLoop pumps the kit until the interrupt arrives or the kit stops. A nil
// return hands over to the shutdown path; an error means the kit died
// abnormally.
func (l *Launcher) runLoop(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if err := l.kit.Update(); err != nil {
				return err
			}
			if !l.kit.IsRunning() {
				slog.Info("Kit stopped on its own, shutting down")
				return nil
			}
		}
	}
}
