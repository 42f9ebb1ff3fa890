package source

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestPNG writes a w×h single-colour PNG into dir.
func writeTestPNG(t *testing.T, dir, name string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("creating test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
}

// TestLoad_FiltersBySize verifies that images smaller than one tile in
// either dimension are dropped while valid ones survive, preserving the
// pool invariant the sampler relies on.
func TestLoad_FiltersBySize(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "big.png", 200, 200, color.RGBA{R: 255, A: 255})
	writeTestPNG(t, dir, "narrow.png", 40, 200, color.RGBA{G: 255, A: 255})
	writeTestPNG(t, dir, "short.png", 200, 40, color.RGBA{B: 255, A: 255})

	pool, err := Load(dir, 50, 50)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("pool has %d images, want 1 (undersized images must be dropped)", len(pool))
	}
}

// TestLoad_SkipsUndecodableFiles verifies that junk files in a source
// directory are ignored rather than fatal.
func TestLoad_SkipsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "ok.png", 100, 100, color.RGBA{R: 255, A: 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	pool, err := Load(dir, 50, 50)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("pool has %d images, want 1", len(pool))
	}
}

// TestLoad_EmptyDirectoryIsError verifies the EmptyPool error condition:
// a directory with no usable images must report ErrNoImages so the
// caller can abort before any canvas work begins.
func TestLoad_EmptyDirectoryIsError(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "tiny.png", 10, 10, color.RGBA{R: 255, A: 255})

	_, err := Load(dir, 50, 50)
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("Load = %v, want ErrNoImages", err)
	}
}

// TestLoad_MissingDirectoryIsError verifies the MissingInput condition.
func TestLoad_MissingDirectoryIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), 50, 50); err == nil {
		t.Fatal("Load on a missing directory succeeded, want error")
	}
}

// TestLoadResized_ScalesToTileSize verifies that every pool member comes
// out exactly one tile in size regardless of source dimensions, including
// images smaller than the tile (this mode upscales rather than filters).
func TestLoadResized_ScalesToTileSize(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "big.png", 300, 170, color.RGBA{R: 255, A: 255})
	writeTestPNG(t, dir, "small.png", 20, 20, color.RGBA{G: 255, A: 255})

	pool, err := LoadResized(dir, 50, 50)
	if err != nil {
		t.Fatalf("LoadResized returned error: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("pool has %d images, want 2", len(pool))
	}
	for i, img := range pool {
		if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
			t.Errorf("image %d is %dx%d, want 50x50", i, b.Dx(), b.Dy())
		}
	}
}

// TestSegment_TileCount verifies the truncated segmentation: a 170x120
// image cut into 50x50 tiles yields 3x2 = 6 tiles, and the files land in
// the output directory.
func TestSegment_TileCount(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "tiles")
	writeTestPNG(t, srcDir, "a.png", 170, 120, color.RGBA{R: 255, A: 255})

	count, err := Segment(srcDir, outDir, 50, 50)
	if err != nil {
		t.Fatalf("Segment returned error: %v", err)
	}
	if count != 6 {
		t.Fatalf("Segment wrote %d tiles, want 6", count)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("reading output directory: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("output directory has %d files, want 6", len(entries))
	}

	// Spot-check one tile's dimensions.
	f, err := os.Open(filepath.Join(outDir, "tile_0.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding tile: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
		t.Fatalf("tile is %dx%d, want 50x50", b.Dx(), b.Dy())
	}
}
