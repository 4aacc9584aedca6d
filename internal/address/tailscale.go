package address

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	apperrors "github.com/isaac-tools/simstream/internal/errors"
)

// CommandRunner executes an external command and returns its stdout. It exists
// so tests can substitute a fake for the tailscale CLI.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Join(err, errors.New(msg))
		}
		return "", err
	}
	return stdout.String(), nil
}

// TailscaleSource resolves the host's tailnet IPv4 address via the local
// tailscale CLI.
type TailscaleSource struct {
	runner CommandRunner
}

// NewTailscaleSource creates a resolver backed by the real tailscale binary.
func NewTailscaleSource() *TailscaleSource {
	return &TailscaleSource{runner: execRunner{}}
}

// NewTailscaleSourceWithRunner creates a resolver with a custom runner.
func NewTailscaleSourceWithRunner(runner CommandRunner) *TailscaleSource {
	return &TailscaleSource{runner: runner}
}

// Resolve runs "tailscale ip -4" once and returns the first reported address.
func (s *TailscaleSource) Resolve(ctx context.Context) (string, error) {
	slog.InfoContext(ctx, "Detecting Tailscale IP address")

	out, err := s.runner.Run(ctx, "tailscale", "ip", "-4")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", apperrors.ResolutionError(
				"tailscale command not found, is Tailscale installed?").WithCause(err)
		}
		return "", apperrors.ResolutionError(
			"tailscale query failed, is the Tailscale daemon running?").
			WithCause(err).
			WithContext("command", "tailscale ip -4")
	}

	// The CLI prints one address per line; the first is the primary IPv4.
	ip, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", apperrors.ResolutionError(
			"no Tailscale IP assigned, is Tailscale connected?")
	}

	slog.InfoContext(ctx, "Detected Tailscale IP", "ip", ip)
	return ip, nil
}
