package model

import "strings"

// Color is the display tag of a category.
type Color string

// Supported category colors. ColorGray is the fallback for anything else.
const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorPink   Color = "pink"
	ColorGray   Color = "gray"
)

// Colors lists every selectable color in display order.
var Colors = []Color{
	ColorRed,
	ColorBlue,
	ColorGreen,
	ColorYellow,
	ColorPurple,
	ColorOrange,
	ColorPink,
	ColorGray,
}

// ParseColor maps a stored or user-supplied name onto the enumerated set.
// Unknown and empty names yield ColorGray.
func ParseColor(s string) Color {
	switch Color(strings.ToLower(strings.TrimSpace(s))) {
	case ColorRed:
		return ColorRed
	case ColorBlue:
		return ColorBlue
	case ColorGreen:
		return ColorGreen
	case ColorYellow:
		return ColorYellow
	case ColorPurple:
		return ColorPurple
	case ColorOrange:
		return ColorOrange
	case ColorPink:
		return ColorPink
	default:
		return ColorGray
	}
}

// UnmarshalText normalizes decoded colors so unknown values never survive a load.
func (c *Color) UnmarshalText(text []byte) error {
	*c = ParseColor(string(text))
	return nil
}
