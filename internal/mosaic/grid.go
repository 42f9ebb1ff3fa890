package mosaic

import (
	"fmt"
	"image"
)

// BuildGrid partitions a canvas into a grid of tile slots, classifies
// each slot against the canvas horizon, and fills the canvas with an
// initial tile per slot sampled from pool. Partial cells at the right and
// bottom edges are dropped: the grid is truncated, not clipped.
//
// A slot is sky only when it ends strictly above the horizon row; a slot
// that touches or straddles the horizon is field. The asymmetry matters
// for reproducibility and must match the replacement path.
func BuildGrid(canvasW, canvasH int, s *Sampler, pool Pool) (*image.RGBA, []Slot, error) {
	canvas := NewCanvas(canvasW, canvasH)
	horizonY := int(float64(canvasH) * s.Horizon)

	var slots []Slot
	for y := 0; y+s.TileH <= canvasH; y += s.TileH {
		for x := 0; x+s.TileW <= canvasW; x += s.TileW {
			zone := ZoneField
			if y+s.TileH < horizonY {
				zone = ZoneSky
			}

			tile, err := s.Sample(pool, zone)
			if err != nil {
				return nil, nil, fmt.Errorf("filling slot (%d,%d): %w", x, y, err)
			}
			WriteTile(canvas, tile, x, y)
			slots = append(slots, Slot{X: x, Y: y, Zone: zone})
		}
	}

	return canvas, slots, nil
}

// BuildFlatGrid is the grid builder for the beat-synchronized pipeline:
// the same truncated grid as BuildGrid, but every slot is ZoneAny, so
// initial fill and replacements draw whole-image tiles with no horizon
// constraint.
func BuildFlatGrid(canvasW, canvasH int, s *Sampler, pool Pool) (*image.RGBA, []Slot, error) {
	canvas := NewCanvas(canvasW, canvasH)

	var slots []Slot
	for y := 0; y+s.TileH <= canvasH; y += s.TileH {
		for x := 0; x+s.TileW <= canvasW; x += s.TileW {
			tile, err := s.Sample(pool, ZoneAny)
			if err != nil {
				return nil, nil, fmt.Errorf("filling slot (%d,%d): %w", x, y, err)
			}
			WriteTile(canvas, tile, x, y)
			slots = append(slots, Slot{X: x, Y: y, Zone: ZoneAny})
		}
	}

	return canvas, slots, nil
}

// BuildStill renders a single consistent mosaic. Unlike the animated
// grid, slots that straddle the horizon get a crossing-aligned crop so
// the source horizon continues through them at the right height; purely
// sky or field slots sample randomly within their zone as usual.
func BuildStill(canvasW, canvasH int, s *Sampler, pool Pool) (*image.RGBA, error) {
	canvas := NewCanvas(canvasW, canvasH)
	horizonY := int(float64(canvasH) * s.Horizon)

	for y := 0; y+s.TileH <= canvasH; y += s.TileH {
		for x := 0; x+s.TileW <= canvasW; x += s.TileW {
			var tile *image.RGBA
			var err error
			switch {
			case y+s.TileH < horizonY:
				tile, err = s.Sample(pool, ZoneSky)
			case y > horizonY:
				tile, err = s.Sample(pool, ZoneField)
			default:
				tile, err = s.SampleCrossing(pool, horizonY-y)
			}
			if err != nil {
				return nil, fmt.Errorf("filling slot (%d,%d): %w", x, y, err)
			}
			WriteTile(canvas, tile, x, y)
		}
	}

	return canvas, nil
}

// NewCanvas allocates an opaque black canvas buffer.
func NewCanvas(w, h int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 0xFF
	}
	return canvas
}

// WriteTile overwrites the canvas region at (x, y) with the tile pixels.
// Tile bounds are assumed to fit inside the canvas; the grid builder only
// emits slots for which that holds.
func WriteTile(canvas, tile *image.RGBA, x, y int) {
	w, h := tile.Bounds().Dx(), tile.Bounds().Dy()
	rowBytes := w * 4
	for row := 0; row < h; row++ {
		so := tile.PixOffset(0, row)
		do := canvas.PixOffset(x, y+row)
		copy(canvas.Pix[do:do+rowBytes], tile.Pix[so:so+rowBytes])
	}
}
