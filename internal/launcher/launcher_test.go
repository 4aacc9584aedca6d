package launcher

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/isaac-tools/simstream/internal/errors"
	"github.com/isaac-tools/simstream/internal/platform/config"
	"github.com/isaac-tools/simstream/internal/platform/correlation"
)

type fakeSource struct {
	ip    string
	err   error
	calls int
}

func (f *fakeSource) Resolve(_ context.Context) (string, error) {
	f.calls++
	return f.ip, f.err
}

type recordedSetting struct {
	Path  string
	Value any
}

type fakeKit struct {
	settings   []recordedSetting
	extensions []string

	startErr  error
	readyErr  error
	updateErr error
	closeErr  error
	stopped   bool

	startCalls int
	closeCalls int
}

func (f *fakeKit) SetSetting(path string, value any) {
	f.settings = append(f.settings, recordedSetting{Path: path, Value: value})
}

func (f *fakeKit) EnableExtension(name string) {
	f.extensions = append(f.extensions, name)
}

func (f *fakeKit) Start(_ context.Context) error {
	f.startCalls++
	return f.startErr
}

func (f *fakeKit) WaitReady(_ context.Context) error { return f.readyErr }

func (f *fakeKit) Update() error { return f.updateErr }

func (f *fakeKit) IsRunning() bool { return !f.stopped }

func (f *fakeKit) Close() error {
	f.closeCalls++
	return f.closeErr
}

func testConfig() *config.Config {
	return &config.Config{
		Port:      49100,
		GPU:       0,
		Kit:       "isaac-sim.sh",
		IPService: "https://ifconfig.me",
	}
}

// interruptedCtx simulates Ctrl+C arriving while the launcher is running.
func interruptedCtx() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestRun_CleanShutdownOnInterrupt(t *testing.T) {
	source := &fakeSource{ip: "203.0.113.7"}
	kit := &fakeKit{}
	var out bytes.Buffer

	l := New(testConfig(), source, kit, Options{
		Arch:  "amd64",
		Clock: clockwork.NewFakeClock(),
		Out:   &out,
	})

	err := l.Run(interruptedCtx())
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, kit.startCalls)
	assert.Equal(t, 1, kit.closeCalls)
	assert.Equal(t, StateStopped, l.State())

	assert.Contains(t, out.String(), "Isaac Sim is Ready!")
	assert.Contains(t, out.String(), "203.0.113.7")
	assert.Contains(t, out.String(), "49100")
	assert.Contains(t, out.String(), "Shutting down Isaac Sim...")
	assert.Contains(t, out.String(), "Isaac Sim closed successfully.")
}

func TestRun_ArchGuardRejectsARM64(t *testing.T) {
	for _, arch := range []string{"arm64", "aarch64"} {
		t.Run(arch, func(t *testing.T) {
			source := &fakeSource{ip: "203.0.113.7"}
			kit := &fakeKit{}

			l := New(testConfig(), source, kit, Options{
				Arch:  arch,
				Clock: clockwork.NewFakeClock(),
				Out:   &bytes.Buffer{},
			})

			err := l.Run(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.TypeUnsupported))
			assert.Equal(t, 0, apperrors.ExitCode(err))

			// The guard fires before any network or launch side effect.
			assert.Zero(t, source.calls)
			assert.Zero(t, kit.startCalls)
		})
	}
}

func TestRun_ResolutionFailureAbortsLaunch(t *testing.T) {
	source := &fakeSource{err: apperrors.ResolutionError("could not detect public IP")}
	kit := &fakeKit{}

	l := New(testConfig(), source, kit, Options{
		Arch:  "amd64",
		Clock: clockwork.NewFakeClock(),
		Out:   &bytes.Buffer{},
	})

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeResolution))
	assert.Zero(t, kit.startCalls)
	assert.Zero(t, kit.closeCalls)
}

func TestRun_StartFailure(t *testing.T) {
	source := &fakeSource{ip: "203.0.113.7"}
	kit := &fakeKit{startErr: apperrors.LaunchError("failed to start kit process")}

	l := New(testConfig(), source, kit, Options{
		Arch:  "amd64",
		Clock: clockwork.NewFakeClock(),
		Out:   &bytes.Buffer{},
	})

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeLaunch))
	assert.Zero(t, kit.closeCalls)
}

func TestRun_CloseFailurePropagates(t *testing.T) {
	source := &fakeSource{ip: "203.0.113.7"}
	kit := &fakeKit{closeErr: apperrors.ShutdownError("kit process did not exit")}

	l := New(testConfig(), source, kit, Options{
		Arch:  "amd64",
		Clock: clockwork.NewFakeClock(),
		Out:   &bytes.Buffer{},
	})

	err := l.Run(interruptedCtx())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeShutdown))
	assert.Equal(t, 5, apperrors.ExitCode(err))
	assert.Equal(t, StateShuttingDown, l.State())
}

func TestRun_CrashDuringRunLoop(t *testing.T) {
	source := &fakeSource{ip: "203.0.113.7"}
	kit := &fakeKit{updateErr: apperrors.LaunchError("kit process exited unexpectedly")}

	l := New(testConfig(), source, kit, Options{
		Arch:           "amd64",
		Out:            &bytes.Buffer{},
		UpdateInterval: time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := l.Run(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeLaunch))
	assert.Zero(t, kit.closeCalls)
}

func TestRun_KitSelfExitShutsDownCleanly(t *testing.T) {
	source := &fakeSource{ip: "203.0.113.7"}
	kit := &fakeKit{stopped: true}

	l := New(testConfig(), source, kit, Options{
		Arch:           "amd64",
		Out:            &bytes.Buffer{},
		UpdateInterval: time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := l.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, kit.closeCalls)
	assert.Equal(t, StateStopped, l.State())
}

func TestRun_InterruptDuringStartupStillCloses(t *testing.T) {
	source := &fakeSource{ip: "203.0.113.7"}
	kit := &fakeKit{readyErr: context.Canceled}
	var out bytes.Buffer

	l := New(testConfig(), source, kit, Options{
		Arch:  "amd64",
		Clock: clockwork.NewFakeClock(),
		Out:   &out,
	})

	err := l.Run(interruptedCtx())
	require.NoError(t, err)
	assert.Equal(t, 1, kit.closeCalls)
	assert.NotContains(t, out.String(), "Isaac Sim is Ready!")
	assert.Contains(t, out.String(), "Isaac Sim closed successfully.")
}

func TestRun_ConfiguresKitForLivestream(t *testing.T) {
	source := &fakeSource{ip: "100.64.1.2"}
	kit := &fakeKit{}

	cfg := testConfig()
	cfg.Port = 8080
	cfg.GPU = 1

	l := New(cfg, source, kit, Options{
		Arch:  "amd64",
		Clock: clockwork.NewFakeClock(),
		Out:   &bytes.Buffer{},
	})

	ctx := correlation.WithSessionID(interruptedCtx(), "session-42")
	require.NoError(t, l.Run(ctx))

	assert.Equal(t, []recordedSetting{
		{Path: "/app/window/drawMouse", Value: true},
		{Path: "/app/livestream/publicEndpointAddress", Value: "100.64.1.2"},
		{Path: "/app/livestream/port", Value: 8080},
		{Path: "/renderer/multiGpu/Enabled", Value: false},
		{Path: "/renderer/activeGpu", Value: 1},
		{Path: "/app/livestream/sessionId", Value: "session-42"},
	}, kit.settings)

	assert.Equal(t, []string{
		"omni.services.livestream.nvcf",
		"omni.kit.widget.stage",
		"omni.kit.widget.layers",
	}, kit.extensions)
}
