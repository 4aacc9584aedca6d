package launcher

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBanner_Content(t *testing.T) {
	banner := renderBanner("203.0.113.7", 49100)

	assert.Contains(t, banner, "Isaac Sim is Ready!")
	assert.Contains(t, banner, "Connect using Isaac Sim WebRTC Streaming Client:")
	assert.Contains(t, banner, "IP Address:  203.0.113.7")
	assert.Contains(t, banner, "Port:        49100")
}

func TestRenderBanner_FixedWidth(t *testing.T) {
	banner := renderBanner("100.64.1.2", 8080)

	var lines []string
	for _, line := range strings.Split(banner, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	require.NotEmpty(t, lines)

	for _, line := range lines {
		assert.Equal(t, bannerInteriorWidth+2, utf8.RuneCountInString(line),
			"line %q should match the border width", line)
	}

	assert.True(t, strings.HasPrefix(lines[0], "╔"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "╚"))
}
