package config

import (
	"testing"
)

// TestParseHexColor_ValidInputs verifies that ParseHexColor correctly parses
// various valid hex colour formats, catching case sensitivity issues,
// prefix handling, and byte ordering bugs.
func TestParseHexColor_ValidInputs(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		wantR uint8
		wantG uint8
		wantB uint8
	}{
		{
			name:  "FF0000 (uppercase red, no hash)",
			input: "FF0000",
			wantR: 255,
			wantG: 0,
			wantB: 0,
		},
		{
			name:  "#00ff00 (lowercase green, with hash)",
			input: "#00ff00",
			wantR: 0,
			wantG: 255,
			wantB: 0,
		},
		{
			name:  "#0000FF (blue, with hash)",
			input: "#0000FF",
			wantR: 0,
			wantG: 0,
			wantB: 255,
		},
		{
			name:  "FfFfFf (mixed case white)",
			input: "FfFfFf",
			wantR: 255,
			wantG: 255,
			wantB: 255,
		},
		{
			name:  "#F8EdE3 (poster default)",
			input: "#F8EdE3",
			wantR: 0xF8,
			wantG: 0xED,
			wantB: 0xE3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b, err := ParseHexColor(tc.input)
			if err != nil {
				t.Fatalf("ParseHexColor(%q) returned error: %v", tc.input, err)
			}
			if r != tc.wantR || g != tc.wantG || b != tc.wantB {
				t.Errorf("ParseHexColor(%q) = (%d, %d, %d), want (%d, %d, %d)",
					tc.input, r, g, b, tc.wantR, tc.wantG, tc.wantB)
			}
		})
	}
}

// TestParseHexColor_InvalidInputs verifies that malformed colour strings are
// rejected instead of silently producing a wrong colour.
func TestParseHexColor_InvalidInputs(t *testing.T) {
	inputs := []string{"", "#", "FFF", "#FFFF", "GGGGGG", "#12345Z", "1234567"}

	for _, input := range inputs {
		if _, _, _, err := ParseHexColor(input); err == nil {
			t.Errorf("ParseHexColor(%q) succeeded, want error", input)
		}
	}
}
