// Command simstream launches Isaac Sim headless with WebRTC livestreaming
// enabled and prints the connection details for the streaming client.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/isaac-tools/simstream/internal/address"
	apperrors "github.com/isaac-tools/simstream/internal/errors"
	"github.com/isaac-tools/simstream/internal/launcher"
	"github.com/isaac-tools/simstream/internal/platform/config"
	"github.com/isaac-tools/simstream/internal/platform/correlation"
	"github.com/isaac-tools/simstream/internal/platform/logging"
	"github.com/isaac-tools/simstream/internal/platform/version"
	"github.com/isaac-tools/simstream/internal/sim"
)

func main() {
	root, _, err := newRootCommand()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := root.Execute(); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Type == apperrors.TypeUnsupported {
			// Informational exit, not a failure.
			fmt.Println(appErr.Message)
			os.Exit(appErr.ExitCode())
		}

		fmt.Fprintln(os.Stderr, "Error:", err)
		if apperrors.IsType(err, apperrors.TypeValidation) {
			fmt.Fprintln(os.Stderr, "See 'simstream --help' for usage.")
		}
		os.Exit(apperrors.ExitCode(err))
	}
}

func newRootCommand() (*cobra.Command, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	root := &cobra.Command{
		Use:   "simstream",
		Short: "Run Isaac Sim with livestream capabilities",
		Long: `simstream starts Isaac Sim headless with the WebRTC livestream extension
enabled, advertising either the host's public IP or its Tailscale address
to streaming clients. It blocks until interrupted (Ctrl+C), then shuts the
simulation down cleanly.`,
		Example: `  # Run with defaults
  simstream

  # Custom port and GPU
  simstream --port 8080 --gpu 1

  # Advertise the Tailscale IP instead of the public one
  simstream --tailscale`,
		Version:       version.Get().Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	// Flag defaults come from the already-loaded env layer, so flags win
	// over environment over struct defaults.
	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "TCP port for streaming")
	root.Flags().IntVar(&cfg.GPU, "gpu", cfg.GPU, "GPU to use for rendering")
	root.Flags().BoolVar(&cfg.Tailscale, "tailscale", cfg.Tailscale, "Use Tailscale IP instead of public IP")
	root.Flags().StringVar(&cfg.Kit, "kit", cfg.Kit, "Path to the Isaac Sim kit executable")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")

	// Malformed or unknown flags are validation failures, same as range
	// violations caught later.
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.ValidationError(err.Error())
	})

	return root, cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx = correlation.WithSessionID(ctx, correlation.NewSessionID())
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.InfoContext(ctx, "simstream starting",
		"version", version.Get().Version,
		"port", cfg.Port, "gpu", cfg.GPU, "tailscale", cfg.Tailscale)

	var source address.Source
	if cfg.Tailscale {
		source = address.NewTailscaleSource()
	} else {
		source = address.NewPublicSource(cfg.IPService)
	}

	clock := clockwork.NewRealClock()
	kit := sim.NewProcessKit(cfg.Kit, sim.DefaultLaunchConfig(), cfg.GPU, clock)

	return launcher.New(cfg, source, kit, launcher.Options{Clock: clock}).Run(ctx)
}
