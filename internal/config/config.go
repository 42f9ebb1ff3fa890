package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Canvas and tile defaults
const (
	TileWidth    = 50
	TileHeight   = 50
	CanvasWidth  = 900
	CanvasHeight = 1600
	HorizonRatio = 0.6 // 0.0 = top of frame, 1.0 = bottom
)

// Video defaults
const (
	FPS             = 30
	DurationSeconds = 180
)

// Replacement rate defaults (tiles per frame for animate, per beat for beats)
const (
	StartReplacementRate = 0.001
	EndReplacementRate   = 2.0
	BeatReplacementRate  = 10.0
)

// Sampling
const (
	// MaxSampleAttempts bounds the retry loop when a source image's
	// zone is smaller than one tile.
	MaxSampleAttempts = 32
)

// Beat detection
const (
	OnsetFFTSize = 2048
	OnsetHopSize = 512
)

// Combine defaults
const (
	GapSeconds = 4
	GapColor   = "#FFFFFF"
)

// Poster appearance
const (
	PosterTextColor = "#F8EDE3"
	PosterFontSize  = 64.0
)

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into RGB components.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: want 6 hex digits", s)
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return uint8(val >> 16), uint8(val >> 8), uint8(val), nil
}
