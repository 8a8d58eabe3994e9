package model

import (
	"image/color"
	"strings"
)

// Position is the named placement rule for the watermark text.
type Position int

const (
	PositionBottomRight Position = iota // default
	PositionTopLeft
	PositionCenter
)

var positionNames = map[Position]string{
	PositionTopLeft:     "top-left",
	PositionCenter:      "center",
	PositionBottomRight: "bottom-right",
}

// ParsePosition maps a position name to a Position. Matching ignores case;
// anything unrecognized resolves to PositionBottomRight.
func ParsePosition(s string) Position {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range positionNames {
		if name == s {
			return p
		}
	}

	return PositionBottomRight
}

func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}

	return positionNames[PositionBottomRight]
}

// Color is one entry of the fixed watermark palette.
type Color string

const (
	ColorBlack Color = "black"
	ColorWhite Color = "white" // default
	ColorRed   Color = "red"
	ColorGreen Color = "green"
	ColorBlue  Color = "blue"
)

var palette = map[Color]color.RGBA{
	ColorBlack: {R: 0, G: 0, B: 0, A: 255},
	ColorWhite: {R: 255, G: 255, B: 255, A: 255},
	ColorRed:   {R: 255, G: 0, B: 0, A: 255},
	ColorGreen: {R: 0, G: 255, B: 0, A: 255},
	ColorBlue:  {R: 0, G: 0, B: 255, A: 255},
}

// ParseColor maps a color name to a palette entry. Matching ignores case;
// anything unrecognized resolves to ColorWhite.
func ParseColor(s string) Color {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := palette[c]; ok {
		return c
	}

	return ColorWhite
}

// RGBA returns the concrete color for c, falling back to white for values
// that did not come through ParseColor.
func (c Color) RGBA() color.RGBA {
	if rgba, ok := palette[c]; ok {
		return rgba
	}

	return palette[ColorWhite]
}

// DefaultFontSize is the font size in points used when none is configured.
const DefaultFontSize = 12

// WatermarkOptions holds the style and placement of the stamped text.
// It is built once per batch and passed by value.
type WatermarkOptions struct {
	FontSize int
	Color    Color
	Position Position
}

// DefaultWatermarkOptions returns 12pt white text in the bottom-right corner.
func DefaultWatermarkOptions() WatermarkOptions {
	return WatermarkOptions{
		FontSize: DefaultFontSize,
		Color:    ColorWhite,
		Position: PositionBottomRight,
	}
}
