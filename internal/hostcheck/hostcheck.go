// Package hostcheck guards against launching on unsupported host platforms.
package hostcheck

import (
	"strings"

	apperrors "github.com/isaac-tools/simstream/internal/errors"
)

// Check rejects ARM64-family architectures, where the kit's livestream
// extension is not available. The identifier is usually runtime.GOARCH but is
// passed in so callers can test the rejection path.
func Check(arch string) error {
	switch strings.ToLower(arch) {
	case "arm64", "aarch64":
		return apperrors.UnsupportedError("livestream is not supported on ARM64 architecture")
	}
	return nil
}
