package source

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Segment cuts every image in srcDir into tileW×tileH tiles and writes
// them to outDir as tile_N.png, skipping partial tiles at the edges.
// Returns the number of tiles written. Source images are never resized;
// images smaller than one tile simply contribute nothing.
func Segment(srcDir, outDir string, tileW, tileH int) (int, error) {
	paths, err := imagePaths(srcDir)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	count := 0
	for _, path := range paths {
		img, err := decodeRGBA(path)
		if err != nil {
			continue
		}

		b := img.Bounds()
		for y := b.Min.Y; y+tileH <= b.Max.Y; y += tileH {
			for x := b.Min.X; x+tileW <= b.Max.X; x += tileW {
				tile := img.SubImage(image.Rect(x, y, x+tileW, y+tileH))
				name := filepath.Join(outDir, fmt.Sprintf("tile_%d.png", count))
				if err := writePNG(name, tile); err != nil {
					return count, fmt.Errorf("writing %s: %w", name, err)
				}
				count++
			}
		}
	}

	return count, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
