package models

import (
	"regexp"
	"strings"
)

// Palette is the recommended set of routine colors. Any hex color is also accepted.
var Palette = map[string]string{
	"blue":   "#3B82F6",
	"green":  "#10B981",
	"yellow": "#F59E0B",
	"red":    "#EF4444",
	"purple": "#8B5CF6",
	"pink":   "#EC4899",
	"indigo": "#6366F1",
	"gray":   "#6B7280",
}

// DefaultColor is used when a routine is created without a color.
const DefaultColor = "#3B82F6"

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsPaletteColor reports whether c names a palette color.
func IsPaletteColor(c string) bool {
	_, ok := Palette[strings.ToLower(c)]
	return ok
}

// IsValidColor accepts palette names and #RRGGBB hex colors.
func IsValidColor(c string) bool {
	return IsPaletteColor(c) || hexColorRe.MatchString(c)
}

// ResolveColor maps a palette name to its hex value and leaves other colors as-is.
func ResolveColor(c string) string {
	if hex, ok := Palette[strings.ToLower(c)]; ok {
		return hex
	}
	return c
}
