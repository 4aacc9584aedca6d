package hostcheck

import (
	"testing"

	apperrors "github.com/isaac-tools/simstream/internal/errors"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		arch   string
		reject bool
	}{
		{"arm64", true},
		{"aarch64", true},
		{"ARM64", true},
		{"Aarch64", true},
		{"amd64", false},
		{"x86_64", false},
		{"386", false},
		{"", false},
	}

	for _, tt := range tests {
		err := Check(tt.arch)
		if tt.reject {
			if err == nil {
				t.Errorf("Check(%q) = nil, want unsupported error", tt.arch)
			} else if !apperrors.IsType(err, apperrors.TypeUnsupported) {
				t.Errorf("Check(%q) = %v, want unsupported type", tt.arch, err)
			}
		} else if err != nil {
			t.Errorf("Check(%q) = %v, want nil", tt.arch, err)
		}
	}
}

func TestCheck_ExitsZero(t *testing.T) {
	err := Check("arm64")
	if got := apperrors.ExitCode(err); got != 0 {
		t.Errorf("exit code = %d, want 0 (informational exit)", got)
	}
}
