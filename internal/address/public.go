package address

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/isaac-tools/simstream/internal/errors"
)

const publicLookupTimeout = 10 * time.Second

// PublicSource resolves the host's public IP via an external lookup service
// such as ifconfig.me.
type PublicSource struct {
	endpoint string
	client   *http.Client
}

// NewPublicSource creates a resolver against the given lookup endpoint.
func NewPublicSource(endpoint string) *PublicSource {
	return &PublicSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: publicLookupTimeout},
	}
}

// Resolve issues a single GET to the lookup service and returns the trimmed
// response body.
func (s *PublicSource) Resolve(ctx context.Context) (string, error) {
	slog.InfoContext(ctx, "Detecting public IP address", "endpoint", s.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return "", apperrors.ResolutionError("could not build public IP request").WithCause(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperrors.ResolutionError("could not detect public IP").WithCause(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.ResolutionError(
			fmt.Sprintf("public IP lookup returned status %d", resp.StatusCode)).
			WithContext("endpoint", s.endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.ResolutionError("could not read public IP response").WithCause(err)
	}

	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", apperrors.ResolutionError("public IP lookup returned an empty response")
	}

	slog.InfoContext(ctx, "Detected public IP", "ip", ip)
	return ip, nil
}
