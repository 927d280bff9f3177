package render

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	gcolor "github.com/gookit/color"
	"golang.org/x/image/colornames"
)

// HighlightColor is drawn over calls selected by highlighting.
var HighlightColor = color.NRGBA{R: 5, G: 195, B: 5, A: 217} // rgba(5, 195, 5, 0.85)

// ParseStyle parses a CSS color: #rgb, #rrggbb, rgb(), rgba() or a named
// color. ok is false for anything else, which callers ignore as canvas does.
func ParseStyle(s string) (c color.NRGBA, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return c, false
	case s == "transparent":
		return color.NRGBA{}, true
	case strings.HasPrefix(s, "#"):
		if len(s) != 4 && len(s) != 7 {
			return c, false
		}
		rgb := gcolor.HexToRgb(s)
		if len(rgb) != 3 {
			return c, false
		}
		return color.NRGBA{R: uint8(rgb[0]), G: uint8(rgb[1]), B: uint8(rgb[2]), A: 0xff}, true
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunctional(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunctional(s[len("rgb("):len(s)-1], 3)
	}
	named, found := colornames.Map[s]
	if !found {
		return c, false
	}
	return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, true
}

func parseFunctional(body string, n int) (color.NRGBA, bool) {
	parts := strings.Split(body, ",")
	if len(parts) != n {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		ch[i] = uint8(math.Round(clamp(v, 0, 255)))
	}
	alpha := uint8(0xff)
	if n == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		alpha = uint8(math.Round(clamp(a, 0, 1) * 255))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
