package classify

import (
	"testing"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		wantHex string
		wantCSS string
	}{
		{"#ff0000", "#ff0000", "rgba(255, 0, 0, 1)"},
		{"#FF0000", "#ff0000", "rgba(255, 0, 0, 1)"},
		{"#abc", "#aabbcc", "rgba(170, 187, 204, 1)"},
		{"#9e9e9e99", "#9e9e9e99", "rgba(158, 158, 158, 0.6)"},
		{"rgb(0, 128, 255)", "#0080ff", "rgba(0, 128, 255, 1)"},
		{"rgba(158, 158, 158, 0.6)", "#9e9e9e99", "rgba(158, 158, 158, 0.6)"},
		{" rgba(1,2,3,0) ", "#01020300", "rgba(1, 2, 3, 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q) error = %v", tt.in, err)
			}
			if got := c.Hex(); got != tt.wantHex {
				t.Errorf("Hex() = %q, want %q", got, tt.wantHex)
			}
			if got := c.CSS(); got != tt.wantCSS {
				t.Errorf("CSS() = %q, want %q", got, tt.wantCSS)
			}
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "red", "#12", "#gggggg", "#ff0000zz", "rgba(1,2)", "rgba(300,0,0,1)", "rgba(1,2,3,2)", "rgba(1,2,3"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseColor(in)
			if !errors.Is(err, errors.ErrCodeInvalidColor) {
				t.Errorf("ParseColor(%q) error = %v, want %s", in, err, errors.ErrCodeInvalidColor)
			}
		})
	}
}

func TestColorText(t *testing.T) {
	orig := MustParseColor("#fd8d3c")
	text, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}

	var back Color
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if back.Hex() != orig.Hex() {
		t.Errorf("text round trip = %s, want %s", back.Hex(), orig.Hex())
	}
	if err := back.UnmarshalText([]byte("nope")); err == nil {
		t.Error("UnmarshalText(nope) should fail")
	}
}

func TestColorHelpers(t *testing.T) {
	var zero Color
	if !zero.IsZero() {
		t.Error("zero Color IsZero() = false")
	}
	c := MustParseColor("#000000").WithAlpha(2)
	if c.Alpha != 1 {
		t.Errorf("WithAlpha clamps to 1, got %v", c.Alpha)
	}
	if c.String() != "#000000" {
		t.Errorf("String() = %q", c.String())
	}
}
