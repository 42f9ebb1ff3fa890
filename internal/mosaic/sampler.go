package mosaic

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/feldhimmel/feldhimmel/internal/config"
)

// ErrRegionUnsatisfiable is returned when no image in a pool can supply a
// valid crop for a requested zone after the bounded retry budget.
var ErrRegionUnsatisfiable = errors.New("no source image can satisfy the requested zone")

// Sampler crops tiles from zone-constrained regions of source images so
// that a consistent horizon line is preserved across tiles. All random
// draws come from the single shared generator, keeping a run reproducible
// for a fixed seed.
type Sampler struct {
	TileW, TileH int
	Horizon      float64 // horizon row as a fraction of image height
	Rng          *rand.Rand
}

// NewSampler creates a sampler for the given tile size and horizon ratio.
func NewSampler(tileW, tileH int, horizon float64, rng *rand.Rand) *Sampler {
	return &Sampler{TileW: tileW, TileH: tileH, Horizon: horizon, Rng: rng}
}

// Sample crops a tile from the zone region of a randomly chosen pool
// image at a uniformly random valid origin. An empty pool yields an
// all-black tile rather than an error, so missing optional assets never
// abort a run. Images whose zone is smaller than one tile are skipped and
// another image is drawn, up to config.MaxSampleAttempts. ZoneAny crops
// from the full image and always succeeds on the first attempt.
func (s *Sampler) Sample(pool Pool, zone Zone) (*image.RGBA, error) {
	if len(pool) == 0 {
		return s.blackTile(), nil
	}

	for attempt := 0; attempt < config.MaxSampleAttempts; attempt++ {
		src := pool[s.Rng.Intn(len(pool))]
		srcW, srcH := src.Bounds().Dx(), src.Bounds().Dy()
		horizonY := int(float64(srcH) * s.Horizon)

		if zone == ZoneAny {
			x := s.Rng.Intn(srcW - s.TileW + 1)
			y := s.Rng.Intn(srcH - s.TileH + 1)
			return s.crop(src, x, y), nil
		}

		var minY, maxY int
		if zone == ZoneSky {
			minY, maxY = 0, max(0, horizonY-s.TileH)
		} else {
			minY, maxY = min(horizonY, srcH-s.TileH), srcH-s.TileH
		}
		if minY >= maxY {
			// This image's zone cannot host a full tile; draw another.
			continue
		}

		x := s.Rng.Intn(srcW - s.TileW + 1)
		y := minY + s.Rng.Intn(maxY-minY+1)
		return s.crop(src, x, y), nil
	}

	return nil, fmt.Errorf("%w: zone %s after %d attempts",
		ErrRegionUnsatisfiable, zone, config.MaxSampleAttempts)
}

// SampleCrossing crops a tile whose source horizon falls horizonInTile
// pixels below the tile's top edge, for slots that straddle the canvas
// horizon in a static mosaic. The vertical origin is fully determined by
// the alignment — the original tooling computed a single-point sample
// range here, so there is deliberately no vertical randomness. When the
// chosen image cannot host the aligned crop, the crop falls back to an
// unconstrained vertical range on the same image.
func (s *Sampler) SampleCrossing(pool Pool, horizonInTile int) (*image.RGBA, error) {
	if len(pool) == 0 {
		return s.blackTile(), nil
	}

	src := pool[s.Rng.Intn(len(pool))]
	srcW, srcH := src.Bounds().Dx(), src.Bounds().Dy()
	horizonY := int(float64(srcH) * s.Horizon)

	x := s.Rng.Intn(srcW - s.TileW + 1)
	y := horizonY - horizonInTile
	if y < 0 || y > srcH-s.TileH {
		y = s.Rng.Intn(srcH - s.TileH + 1)
	}
	return s.crop(src, x, y), nil
}

// crop copies an exact TileW×TileH pixel block out of src. The source is
// never resized.
func (s *Sampler) crop(src *image.RGBA, x, y int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, s.TileW, s.TileH))
	b := src.Bounds()
	rowBytes := s.TileW * 4
	for row := 0; row < s.TileH; row++ {
		so := src.PixOffset(b.Min.X+x, b.Min.Y+y+row)
		do := dst.PixOffset(0, row)
		copy(dst.Pix[do:do+rowBytes], src.Pix[so:so+rowBytes])
	}
	return dst
}

// blackTile returns an opaque all-black tile.
func (s *Sampler) blackTile() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, s.TileW, s.TileH))
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xFF
	}
	return dst
}
