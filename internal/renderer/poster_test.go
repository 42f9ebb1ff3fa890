package renderer

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testCanvas(w, h int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 0xFF
	}
	return canvas
}

// TestGeneratePoster_WritesFile verifies the poster lands on disk with
// the canvas dimensions, using the built-in face so the test needs no
// font assets.
func TestGeneratePoster_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poster.png")

	if err := GeneratePoster(testCanvas(320, 240), path, "Wiese bei Nacht", ""); err != nil {
		t.Fatalf("GeneratePoster returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("poster not written: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding poster: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("poster is %dx%d, want 320x240", b.Dx(), b.Dy())
	}
}

// TestGeneratePoster_CaptionChangesPixels verifies that a caption is
// actually drawn: a captioned poster must differ from an uncaptioned one
// over the same canvas.
func TestGeneratePoster_CaptionChangesPixels(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.png")
	captioned := filepath.Join(dir, "captioned.png")

	if err := GeneratePoster(testCanvas(320, 240), plain, "", ""); err != nil {
		t.Fatalf("GeneratePoster returned error: %v", err)
	}
	if err := GeneratePoster(testCanvas(320, 240), captioned, "Mittag", ""); err != nil {
		t.Fatalf("GeneratePoster returned error: %v", err)
	}

	a, err := os.ReadFile(plain)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(captioned)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) == string(b) {
		t.Fatal("captioned poster is identical to the plain one; caption not drawn")
	}
}

// TestGeneratePoster_MissingFontIsError verifies that a bad font path is
// reported instead of silently falling back.
func TestGeneratePoster_MissingFontIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poster.png")
	err := GeneratePoster(testCanvas(100, 100), path, "title", "/nonexistent/font.ttf")
	if err == nil {
		t.Fatal("GeneratePoster with a missing font succeeded, want error")
	}
}
