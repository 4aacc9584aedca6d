package launcher

import (
	"fmt"
	"strings"
)

const bannerInteriorWidth = 60

// renderBanner builds the fixed-width connection panel shown once the kit is
// ready to accept streaming clients.
func renderBanner(ip string, port int) string {
	rows := []string{
		"",
		"       Isaac Sim is Ready!",
		"",
		"  Connect using Isaac Sim WebRTC Streaming Client:",
		"",
		fmt.Sprintf("  IP Address:  %s", ip),
		fmt.Sprintf("  Port:        %d", port),
		"",
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("╔" + strings.Repeat("═", bannerInteriorWidth) + "╗\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("║%-*s║\n", bannerInteriorWidth, row))
	}
	b.WriteString("╚" + strings.Repeat("═", bannerInteriorWidth) + "╝\n")
	b.WriteString("\n")
	return b.String()
}
