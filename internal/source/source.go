// Package source loads tile source pools from directories on disk. It is
// pure I/O plumbing: decode, convert to RGBA, filter by minimum size.
package source

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"

	"github.com/feldhimmel/feldhimmel/internal/mosaic"
)

// ErrNoImages is returned when a directory contains no usable images
// after decoding and minimum-size filtering.
var ErrNoImages = errors.New("no usable images in directory")

// Load reads every decodable image in dir and returns them as a pool.
// Images smaller than one tile in either dimension are silently dropped,
// preserving the pool invariant that every member can host at least one
// crop. Undecodable files are skipped, not fatal. Entries are walked in
// sorted order so that a fixed seed reproduces the same run even when
// the filesystem reorders directory listings.
func Load(dir string, tileW, tileH int) (mosaic.Pool, error) {
	paths, err := imagePaths(dir)
	if err != nil {
		return nil, err
	}

	var pool mosaic.Pool
	for _, path := range paths {
		img, err := decodeRGBA(path)
		if err != nil {
			continue
		}
		if img.Bounds().Dx() < tileW || img.Bounds().Dy() < tileH {
			continue
		}
		pool = append(pool, img)
	}

	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoImages, dir)
	}
	return pool, nil
}

// LoadResized reads every decodable image in dir and scales each whole
// image down to exactly one tile, for the mode where a source image is
// the tile rather than a crop donor. BiLinear matches the quality the
// rest of the pipeline uses for scaling.
func LoadResized(dir string, tileW, tileH int) (mosaic.Pool, error) {
	paths, err := imagePaths(dir)
	if err != nil {
		return nil, err
	}

	var pool mosaic.Pool
	for _, path := range paths {
		img, err := decodeRGBA(path)
		if err != nil {
			continue
		}
		dst := image.NewRGBA(image.Rect(0, 0, tileW, tileH))
		xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		pool = append(pool, dst)
	}

	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoImages, dir)
	}
	return pool, nil
}

func imagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func decodeRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	xdraw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return rgba, nil
}
