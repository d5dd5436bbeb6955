package canvas

import (
	"image/color"
	"strconv"
	"strings"
)

// palette holds the named colors offered by the color picker, plus a few
// common CSS names.
var palette = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"pink":    {255, 192, 203, 255},
	"brown":   {165, 42, 42, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
}

// ParseColor resolves a color token: a palette name or a #rgb / #rrggbb hex
// value. Unrecognized tokens resolve to black.
func ParseColor(token string) color.RGBA {
	token = strings.ToLower(strings.TrimSpace(token))
	if c, ok := palette[token]; ok {
		return c
	}
	if c, ok := parseHex(token); ok {
		return c
	}
	return palette["black"]
}

// KnownColor reports whether ParseColor resolves token without falling back.
func KnownColor(token string) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if _, ok := palette[token]; ok {
		return true
	}
	_, ok := parseHex(token)
	return ok
}

func parseHex(s string) (color.RGBA, bool) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	s = s[1:]
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
