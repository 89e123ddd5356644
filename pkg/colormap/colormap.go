// Package colormap provides named continuous colour maps for boundary and
// scatter rendering. Every map implements gonum's palette.ColorMap so it can
// feed plotter heat maps and contours directly.
package colormap

import (
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Default is the diverging blue-to-red map used for two-class boundaries.
const Default = "RdBu_r"

var ErrUnknownColormap = errors.New("colormap: unknown colour map")

// rdBu holds the ColorBrewer RdBu control points, red end first.
var rdBu = []color.NRGBA{
	{0x67, 0x00, 0x1f, 0xff},
	{0xb2, 0x18, 0x2b, 0xff},
	{0xd6, 0x60, 0x4d, 0xff},
	{0xf4, 0xa5, 0x82, 0xff},
	{0xfd, 0xdb, 0xc7, 0xff},
	{0xf7, 0xf7, 0xf7, 0xff},
	{0xd1, 0xe5, 0xf0, 0xff},
	{0x92, 0xc5, 0xde, 0xff},
	{0x43, 0x93, 0xc3, 0xff},
	{0x21, 0x66, 0xac, 0xff},
	{0x05, 0x30, 0x61, 0xff},
}

var registry = map[string]func() palette.ColorMap{
	"RdBu":      func() palette.ColorMap { return newLinear(rdBu) },
	"coolwarm":  func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"blackbody": moreland.BlackBody,
	"kindlmann": moreland.Kindlmann,
	"extended":  moreland.ExtendedBlackBody,
}

// Names lists the registered colour maps, including reversed variants.
func Names() []string {
	out := make([]string, 0, 2*len(registry))
	for name := range registry {
		out = append(out, name, name+"_r")
	}
	sort.Strings(out)
	return out
}

// Lookup returns a fresh colour map spanning [0, 1]. A "_r" suffix reverses
// any registered map.
func Lookup(name string) (palette.ColorMap, error) {
	base, rev := name, false
	if strings.HasSuffix(name, "_r") {
		base, rev = strings.TrimSuffix(name, "_r"), true
	}
	mk, ok := registry[base]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownColormap, "%q", name)
	}
	cm := mk()
	cm.SetMin(0)
	cm.SetMax(1)
	if rev {
		cm = Reverse(cm)
	}
	return cm, nil
}

// WithAlpha looks up name and applies opacity a, which must be in [0, 1].
func WithAlpha(name string, a float64) (palette.ColorMap, error) {
	if math.IsNaN(a) || a < 0 || a > 1 {
		return nil, errors.Errorf("colormap: alpha must be in [0, 1], got %v", a)
	}
	cm, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	cm.SetAlpha(a)
	return cm, nil
}

// At returns the colour for v, clamping v into the map's range. NaN maps to
// transparent.
func At(cm palette.ColorMap, v float64) color.Color {
	if math.IsNaN(v) {
		return color.Transparent
	}
	v = math.Max(cm.Min(), math.Min(cm.Max(), v))
	c, err := cm.At(v)
	if err != nil {
		return color.Transparent
	}
	return c
}

// Sample returns n colours evenly spaced over the map's range. A single
// colour is taken from the middle.
func Sample(cm palette.ColorMap, n int) []color.Color {
	if n <= 0 {
		return nil
	}
	out := make([]color.Color, n)
	if n == 1 {
		out[0] = At(cm, (cm.Min()+cm.Max())/2)
		return out
	}
	step := (cm.Max() - cm.Min()) / float64(n-1)
	for i := range out {
		out[i] = At(cm, cm.Min()+float64(i)*step)
	}
	return out
}

// Palette returns n evenly sampled colours of cm as a gonum palette.
func Palette(cm palette.ColorMap, n int) palette.Palette { return listed(Sample(cm, n)) }
