package core

import (
	"strconv"
	"strings"
)

// Color represents a foreground color for a screen cell.
// The platform maps these to ANSI 256-color codes.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorNavy
	ColorSky
	ColorDarkGreen
)

var palette = []struct {
	c       Color
	r, g, b int
}{
	{ColorRed, 205, 0, 0},
	{ColorGreen, 0, 205, 0},
	{ColorYellow, 205, 205, 0},
	{ColorBlue, 0, 0, 238},
	{ColorMagenta, 205, 0, 205},
	{ColorCyan, 0, 205, 205},
	{ColorWhite, 229, 229, 229},
	{ColorBrightRed, 255, 0, 0},
	{ColorBrightGreen, 0, 255, 0},
	{ColorBrightYellow, 255, 255, 0},
	{ColorBrightBlue, 92, 92, 255},
	{ColorBrightWhite, 255, 255, 255},
	{ColorOrange, 255, 135, 0},
	{ColorGray, 138, 138, 138},
	{ColorNavy, 0, 0, 32},
	{ColorSky, 135, 206, 235},
	{ColorDarkGreen, 0, 100, 0},
}

// ParseHexColor maps a "#RRGGBB" string to the nearest palette color.
// Anything unparseable maps to ColorDefault.
func ParseHexColor(hex string) Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return ColorDefault
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ColorDefault
	}
	r, g, b := int(v>>16&0xff), int(v>>8&0xff), int(v&0xff)

	best, bestDist := ColorDefault, -1
	for _, p := range palette {
		dr, dg, db := r-p.r, g-p.g, b-p.b
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = p.c, d
		}
	}
	return best
}
