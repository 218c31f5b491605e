package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "lst", false},
		{"valid with space", "Hexagons 2021", false},
		{"valid with dash", "summer-2022", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("layer", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAttributeKey(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"s_mean_21", false},
		{"mean", false},
		{"_x", false},

		{"", true},
		{"21_mean", true},
		{"s mean", true},
		{"s-mean", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateAttributeKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAttributeKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLayer) {
				t.Errorf("ValidateAttributeKey(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidLayer)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "data/Hexagons_Summer.geojson", false},
		{"absolute", "/srv/data/hexagons.geojson", false},

		{"empty", "", true},
		{"traversal", "../secret", true},
		{"backslash", "data\\file", true},
		{"null byte", "data\x00", true},
		{"too long", strings.Repeat("a", 600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateResolution(t *testing.T) {
	for _, res := range []int{0, 7, 15} {
		if err := ValidateResolution(res); err != nil {
			t.Errorf("ValidateResolution(%d) = %v, want nil", res, err)
		}
	}
	for _, res := range []int{-1, 16} {
		if err := ValidateResolution(res); err == nil {
			t.Errorf("ValidateResolution(%d) = nil, want error", res)
		}
	}
}
