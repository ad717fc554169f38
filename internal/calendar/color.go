package calendar

import (
	"strconv"
	"strings"
)

// MemberColors is the pastel palette handed out to new members.
var MemberColors = []string{
	"#FFB3BA",
	"#BAFFC9",
	"#BAE1FF",
	"#FFFFBA",
	"#FFDFBA",
	"#E0BBE4",
	"#957DAD",
	"#D4A5A5",
}

const (
	darkText  = "#1e293b"
	lightText = "#f8fafc"
)

// ContrastColor picks a dark or light foreground for text drawn on hex.
// Colors that cannot be parsed get the light foreground.
func ContrastColor(hex string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return lightText
	}
	var rgb [3]float64
	for i := range rgb {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return lightText
		}
		rgb[i] = float64(v)
	}
	luminance := (0.299*rgb[0] + 0.587*rgb[1] + 0.114*rgb[2]) / 255
	if luminance > 0.5 {
		return darkText
	}
	return lightText
}

// ColorFor returns the palette color for the n-th member.
func ColorFor(n int) string {
	if n < 0 {
		n = -n
	}
	return MemberColors[n%len(MemberColors)]
}
