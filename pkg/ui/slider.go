package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal drag slider with a step increment, so parameters
// like the population land on round values.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	X, Y     float64
	W, H     float64
}

// NewSlider creates a slider. A step of 0 means continuous values.
func NewSlider(x, y, w float64, label string, min, max, value, step float64) *Slider {
	return &Slider{
		Label: label,
		Value: value,
		Min:   min,
		Max:   max,
		Step:  step,
		X:     x,
		Y:     y,
		W:     w,
		H:     12,
	}
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	mx, my := ebiten.CursorPosition()
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	if float64(mx) < s.X || float64(mx) > s.X+s.W ||
		float64(my) < s.Y || float64(my) > s.Y+s.H {
		return
	}

	// Map the horizontal position into the value range.
	p := (float64(mx) - s.X) / s.W
	v := s.Min + p*(s.Max-s.Min)

	// Snap to the nearest step.
	if s.Step > 0 {
		v = float64(int(v/s.Step+0.5)) * s.Step
	}

	if v < s.Min {
		v = s.Min
	}
	if v > s.Max {
		v = s.Max
	}
	s.Value = v
}

// Draw renders the slider track, the filled value bar and the current value.
func (s *Slider) Draw(screen *ebiten.Image) {
	// Track (dark gray)
	vector.DrawFilledRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H),
		color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	// Value bar (light gray)
	ratio := (s.Value - s.Min) / (s.Max - s.Min)
	vector.DrawFilledRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H),
		color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	ebitenutil.DebugPrintAt(screen, formatValue(s.Value), int(s.X+s.W+6), int(s.Y-2))
}

func formatValue(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.2f", v)
}
