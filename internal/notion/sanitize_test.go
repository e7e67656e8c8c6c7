package notion

import "testing"

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "embedded no-break space", raw: "exam ple.com", want: ""},
		{name: "bare host gets https", raw: "example.com", want: "https://example.com"},
		{name: "https preserved", raw: "https://ok.com/a", want: "https://ok.com/a"},
		{name: "http preserved", raw: "http://legacy.example.com", want: "http://legacy.example.com"},
		{name: "protocol-relative slashes stripped", raw: "//cdn.example.com/img.png", want: "https://cdn.example.com/img.png"},
		{name: "surrounding whitespace trimmed", raw: "  https://ok.com/a  ", want: "https://ok.com/a"},
		{name: "combining accent composed", raw: "https://café.example", want: "https://café.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.raw); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitizeURLDisallowedCodePoints(t *testing.T) {
	points := []rune{'\u202f', '\u200b', '\ufeff', '\u200e', '\u200f', '\u2060', '\u00a0', '\u3000'}

	for _, r := range points {
		raw := "https://example.com/p" + string(r) + "ath"
		if got := SanitizeURL(raw); got != "" {
			t.Errorf("SanitizeURL with U+%04X = %q, want empty", r, got)
		}
	}
}
