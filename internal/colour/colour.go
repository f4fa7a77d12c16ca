// Package colour generates and converts result highlight colours.
package colour

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"pkt.systems/ahalaj/schema"
)

const (
	// Saturation is fixed at 100%.
	Saturation = 1.0
	// Lightness is fixed at 70%.
	Lightness = 0.7
)

var hslPattern = regexp.MustCompile(`^hsl\(\s*(\d{1,3})\s*,\s*100%\s*,\s*70%\s*\)$`)

// RandomHue returns a hue in whole degrees, uniform over [0, 360).
func RandomHue(r *rand.Rand) int {
	if r == nil {
		return rand.IntN(360)
	}
	return r.IntN(360)
}

// FromHue renders a hue as a CSS colour token.
func FromHue(hue int) schema.Colour {
	hue = ((hue % 360) + 360) % 360
	return schema.Colour(fmt.Sprintf("hsl(%d, 100%%, 70%%)", hue))
}

// Random returns a fresh colour token.
func Random(r *rand.Rand) schema.Colour {
	return FromHue(RandomHue(r))
}

// Hue extracts the hue from a token produced by FromHue.
func Hue(c schema.Colour) (int, bool) {
	m := hslPattern.FindStringSubmatch(string(c))
	if m == nil {
		return 0, false
	}
	hue, err := strconv.Atoi(m[1])
	if err != nil || hue >= 360 {
		return 0, false
	}
	return hue, true
}

// Hex converts a token to "#rrggbb" for terminals. Unknown tokens map to
// fallback.
func Hex(c schema.Colour, fallback string) string {
	hue, ok := Hue(c)
	if !ok {
		return fallback
	}
	return colorful.Hsl(float64(hue), Saturation, Lightness).Clamped().Hex()
}
