package mosaic

import "image"

// Zone classifies a canvas slot (or a source crop region) relative to the
// horizon line.
type Zone int

const (
	ZoneSky Zone = iota
	ZoneField
	// ZoneAny places no horizon constraint on the crop. Used by the
	// beat-synchronized pipeline, where sources are whole resized images
	// rather than horizon-aligned crops.
	ZoneAny
)

func (z Zone) String() string {
	switch z {
	case ZoneSky:
		return "sky"
	case ZoneField:
		return "field"
	default:
		return "any"
	}
}

// Slot is a fixed tile position on the canvas. Slots are created once at
// grid-build time and reused read-only as the population replacement
// targets are drawn from.
type Slot struct {
	X, Y int
	Zone Zone
}

// Pool is a set of candidate source images that tiles are cropped from.
// Every member is at least one tile in both dimensions (enforced at load
// time) and the set is never mutated during a run.
type Pool []*image.RGBA
