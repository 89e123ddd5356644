package colormap

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// linear interpolates in sRGB between evenly spaced control points, the
// way matplotlib's LinearSegmentedColormap does for listed maps.
type linear struct {
	controls []color.NRGBA
	min, max float64
	alpha    float64
}

func newLinear(controls []color.NRGBA) *linear {
	return &linear{controls: controls, max: 1, alpha: 1}
}

func (l *linear) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < l.min:
		return nil, palette.ErrUnderflow
	case v > l.max:
		return nil, palette.ErrOverflow
	}
	t := 0.0
	if l.max > l.min {
		t = (v - l.min) / (l.max - l.min)
	}
	pos := t * float64(len(l.controls)-1)
	i := int(pos)
	if i >= len(l.controls)-1 {
		i = len(l.controls) - 2
	}
	frac := pos - float64(i)
	a, b := l.controls[i], l.controls[i+1]
	return color.NRGBA{
		R: lerp8(a.R, b.R, frac),
		G: lerp8(a.G, b.G, frac),
		B: lerp8(a.B, b.B, frac),
		A: uint8(math.Round(l.alpha * 255)),
	}, nil
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func (l *linear) Max() float64           { return l.max }
func (l *linear) SetMax(v float64)       { l.max = v }
func (l *linear) Min() float64           { return l.min }
func (l *linear) SetMin(v float64)       { l.min = v }
func (l *linear) Alpha() float64         { return l.alpha }
func (l *linear) SetAlpha(alpha float64) { l.alpha = alpha }

func (l *linear) Palette(n int) palette.Palette { return listed(Sample(l, n)) }

// reversed mirrors another map over its own range.
type reversed struct {
	palette.ColorMap
}

// Reverse returns cm traversed from Max to Min.
func Reverse(cm palette.ColorMap) palette.ColorMap {
	if r, ok := cm.(reversed); ok {
		return r.ColorMap
	}
	return reversed{cm}
}

func (r reversed) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	if v < r.Min() {
		return nil, palette.ErrUnderflow
	}
	if v > r.Max() {
		return nil, palette.ErrOverflow
	}
	return r.ColorMap.At(r.Max() - (v - r.Min()))
}

func (r reversed) Palette(n int) palette.Palette { return listed(Sample(r, n)) }

type listed []color.Color

func (l listed) Colors() []color.Color { return l }
