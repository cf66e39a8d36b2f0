package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Palette holds the cluster colours. Cluster ids wrap around it.
var Palette = [8]string{
	"#8A2BE2", "#4A90E2", "#50E3C2", "#F5A623",
	"#E0204D", "#34A853", "#F4B400", "#EA4335",
}

// ClusterColor returns Palette[clusterID mod len(Palette)].
func ClusterColor(clusterID int) string {
	n := len(Palette)
	return Palette[((clusterID%n)+n)%n]
}

// parseHexColor converts "#RRGGBB" into an opaque colour.
func parseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
