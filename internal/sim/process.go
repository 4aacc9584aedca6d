package sim

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	apperrors "github.com/isaac-tools/simstream/internal/errors"
)

// readyMarker is printed by the kit once its startup sequence finishes and the
// livestream server is listening.
const readyMarker = "app ready"

// defaultCloseGrace bounds how long Close waits for the kit to exit after
// SIGINT before escalating to SIGKILL.
const defaultCloseGrace = 10 * time.Second

type setting struct {
	path  string
	value any
}

// ProcessKit runs the kit executable as a child process. Settings become
// "--/path=value" arguments and extensions become "--enable" arguments, so
// everything must be recorded before Start.
type ProcessKit struct {
	path       string
	launch     LaunchConfig
	gpu        int
	clock      clockwork.Clock
	closeGrace time.Duration

	settings   []setting
	extensions []string

	mu      sync.Mutex
	started bool
	closed  bool
	cmd     *exec.Cmd
	waitErr error

	ready     chan struct{}
	readyOnce sync.Once
	exited    chan struct{}
}

// NewProcessKit creates a kit wrapper around the executable at path. The GPU
// index is applied to the child environment only, never to the launcher's own.
func NewProcessKit(path string, launch LaunchConfig, gpu int, clock clockwork.Clock) *ProcessKit {
	return &ProcessKit{
		path:       path,
		launch:     launch,
		gpu:        gpu,
		clock:      clock,
		closeGrace: defaultCloseGrace,
		ready:      make(chan struct{}),
		exited:     make(chan struct{}),
	}
}

// SetSetting records a kit setting for the launch argument vector.
func (k *ProcessKit) SetSetting(path string, value any) {
	k.settings = append(k.settings, setting{path: path, value: value})
}

// EnableExtension records an extension for the launch argument vector.
func (k *ProcessKit) EnableExtension(name string) {
	k.extensions = append(k.extensions, name)
}

// Args returns the full argument vector the kit process is launched with:
// launch-config arguments first, then settings in recording order, then
// extensions.
func (k *ProcessKit) Args() []string {
	var args []string
	if k.launch.Headless {
		args = append(args, "--no-window")
	}
	args = append(args,
		fmt.Sprintf("--/app/renderer/resolution/width=%d", k.launch.Width),
		fmt.Sprintf("--/app/renderer/resolution/height=%d", k.launch.Height),
		fmt.Sprintf("--/app/window/width=%d", k.launch.WindowWidth),
		fmt.Sprintf("--/app/window/height=%d", k.launch.WindowHeight),
		fmt.Sprintf("--/app/window/hideUi=%t", k.launch.HideUI),
		fmt.Sprintf("--/app/window/displayOptions=%d", k.launch.DisplayOptions),
		fmt.Sprintf("--/renderer/mode=%s", k.launch.Renderer),
	)
	for _, s := range k.settings {
		args = append(args, fmt.Sprintf("--%s=%v", s.path, s.value))
	}
	for _, ext := range k.extensions {
		args = append(args, "--enable", ext)
	}
	return args
}

func (k *ProcessKit) childEnv() []string {
	return append(os.Environ(), fmt.Sprintf("CUDA_VISIBLE_DEVICES=%d", k.gpu))
}

// Start launches the kit process and begins watching its output for the
// readiness marker.
func (k *ProcessKit) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.started {
		return apperrors.LaunchError("kit process already started")
	}

	cmd := exec.Command(k.path, k.Args()...)
	cmd.Env = k.childEnv()
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return apperrors.LaunchError("could not attach to kit output").WithCause(err)
	}

	slog.InfoContext(ctx, "Starting kit process", "path", k.path, "gpu", k.gpu)
	if err := cmd.Start(); err != nil {
		return apperrors.LaunchError("failed to start kit process").
			WithCause(err).
			WithContext("path", k.path)
	}

	k.cmd = cmd
	k.started = true

	go func() {
		scanner := bufio.NewScanner(stdout)
		// The kit can emit very long log lines; the default 64KB token
		// limit would stop the scan before the ready marker.
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			slog.Debug("kit output", "line", line)
			if strings.Contains(line, readyMarker) {
				k.readyOnce.Do(func() { close(k.ready) })
			}
		}
		// Keep draining if the scanner bailed out, so the kit never
		// blocks on a full stdout pipe.
		_, _ = io.Copy(io.Discard, stdout)
		err := cmd.Wait()
		k.mu.Lock()
		k.waitErr = err
		k.mu.Unlock()
		close(k.exited)
	}()

	return nil
}

// WaitReady blocks until the kit prints its readiness marker. A process exit
// before the marker is a launch failure.
func (k *ProcessKit) WaitReady(ctx context.Context) error {
	select {
	case <-k.ready:
		return nil
	case <-k.exited:
		return apperrors.LaunchError("kit process exited before becoming ready").
			WithCause(k.exitErr())
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Update reports whether the kit is still healthy. A crash surfaces here; a
// clean self-initiated exit does not.
func (k *ProcessKit) Update() error {
	select {
	case <-k.exited:
		if err := k.exitErr(); err != nil {
			return apperrors.LaunchError("kit process exited unexpectedly").WithCause(err)
		}
		return nil
	default:
		return nil
	}
}

// IsRunning reports whether the kit process is alive.
func (k *ProcessKit) IsRunning() bool {
	k.mu.Lock()
	started := k.started
	k.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-k.exited:
		return false
	default:
		return true
	}
}

// Close interrupts the kit process and waits for it to exit. If the grace
// period expires the process is killed and a shutdown error is returned.
func (k *ProcessKit) Close() error {
	k.mu.Lock()
	if !k.started || k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	cmd := k.cmd
	k.mu.Unlock()

	select {
	case <-k.exited:
		// Already gone; nothing to interrupt.
		return nil
	default:
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		select {
		case <-k.exited:
			return nil
		default:
			return apperrors.ShutdownError("could not interrupt kit process").WithCause(err)
		}
	}

	select {
	case <-k.exited:
		// An interrupt-induced non-zero exit status is the expected way
		// for the kit to die here.
		return nil
	case <-k.clock.After(k.closeGrace):
		_ = cmd.Process.Kill()
		return apperrors.ShutdownError(
			fmt.Sprintf("kit process did not exit within %s, killed", k.closeGrace))
	}
}

func (k *ProcessKit) exitErr() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.waitErr
}
