package canvas

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		token string
		want  color.RGBA
		known bool
	}{
		{"black", color.RGBA{A: 255}, true},
		{"Red", color.RGBA{R: 255, A: 255}, true},
		{" blue ", color.RGBA{B: 255, A: 255}, true},
		{"#00ff00", color.RGBA{G: 255, A: 255}, true},
		{"#0F0", color.RGBA{G: 255, A: 255}, true},
		{"#123456", color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}, true},
		{"#12345", color.RGBA{A: 255}, false},
		{"#gggggg", color.RGBA{A: 255}, false},
		{"chartreuse-ish", color.RGBA{A: 255}, false},
		{"", color.RGBA{A: 255}, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := ParseColor(tt.token); got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.token, got, tt.want)
			}
			if got := KnownColor(tt.token); got != tt.known {
				t.Errorf("KnownColor(%q) = %v, want %v", tt.token, got, tt.known)
			}
		})
	}
}
