// Package render draws analysed hot-fire series with phase shading, as PNG
// via gonum/plot or as an interactive HTML chart via go-echarts.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/banshee-data/hotfire.report/internal/telemetry"
)

// ParseColor accepts an SVG color name or a #rrggbb hex value.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

// StateColors maps igniter states to their shading color. States without an
// entry are drawn in Default.
type StateColors struct {
	Colors  map[telemetry.State]color.RGBA
	Default color.RGBA
}

// DefaultStateColors shades Idle green, Prefire orange and Firing red.
func DefaultStateColors() StateColors {
	return StateColors{
		Colors: map[telemetry.State]color.RGBA{
			telemetry.Idle:    colornames.Green,
			telemetry.Prefire: colornames.Orange,
			telemetry.Firing:  colornames.Red,
		},
		Default: colornames.Gray,
	}
}

// NewStateColors builds a mapping from state names to color strings.
func NewStateColors(mapping map[string]string, def string) (StateColors, error) {
	sc := StateColors{Colors: make(map[telemetry.State]color.RGBA, len(mapping))}
	var err error
	if sc.Default, err = ParseColor(def); err != nil {
		return StateColors{}, fmt.Errorf("default color: %w", err)
	}
	for name, c := range mapping {
		st, ok := telemetry.ParseState(name)
		if !ok {
			return StateColors{}, fmt.Errorf("unknown state %q", name)
		}
		if sc.Colors[st], err = ParseColor(c); err != nil {
			return StateColors{}, fmt.Errorf("state %s: %w", name, err)
		}
	}
	return sc, nil
}

// For returns the color of a state.
func (sc StateColors) For(s telemetry.State) color.RGBA {
	if c, ok := sc.Colors[s]; ok {
		return c
	}
	return sc.Default
}

// Style controls chart appearance.
type Style struct {
	Title  string
	Colors StateColors
	// Alpha is the opacity of the phase shading, 0 to 1.
	Alpha float64
}

// DefaultStyle returns the stand's usual chart style.
func DefaultStyle() Style {
	return Style{Title: "Igniter hot fire", Colors: DefaultStateColors(), Alpha: 0.25}
}

func withAlpha(c color.RGBA, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha*255 + 0.5)}
}

func cssColor(c color.RGBA, alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(alpha, 'f', -1, 64))
}
