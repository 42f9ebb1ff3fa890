// Package renderer produces the optional poster image: a captioned copy
// of the final mosaic canvas, saved alongside the video output.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/feldhimmel/feldhimmel/internal/config"
)

// GeneratePoster writes a captioned copy of the canvas to outputPath.
// fontPath may be empty, in which case a built-in bitmap face is used —
// small, but the poster still carries its caption without shipping font
// assets.
func GeneratePoster(canvas *image.RGBA, outputPath, title, fontPath string) error {
	poster := image.NewRGBA(canvas.Bounds())
	draw.Draw(poster, poster.Bounds(), canvas, canvas.Bounds().Min, draw.Src)

	face, err := captionFace(fontPath)
	if err != nil {
		return fmt.Errorf("loading caption font: %w", err)
	}

	if title != "" {
		drawCaption(poster, face, title)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating poster: %w", err)
	}
	if err := png.Encode(f, poster); err != nil {
		f.Close()
		return fmt.Errorf("encoding poster: %w", err)
	}
	return f.Close()
}

func captionFace(fontPath string) (font.Face, error) {
	if fontPath == "" {
		return basicfont.Face7x13, nil
	}
	return LoadFont(fontPath, config.PosterFontSize)
}

// LoadFont loads a TrueType font from a file
func LoadFont(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, err
	}

	f, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, err
	}

	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	return face, nil
}

// drawCaption draws the title centred horizontally in the lower part of
// the poster, where it sits over the field zone rather than the sky.
func drawCaption(img *image.RGBA, face font.Face, title string) {
	r, g, b, err := config.ParseHexColor(config.PosterTextColor)
	if err != nil {
		r, g, b = 255, 255, 255
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: r, G: g, B: b, A: 255}),
		Face: face,
	}

	bounds, _ := d.BoundString(title)
	textWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	x := (width - textWidth) / 2
	y := height - textHeight - height/12

	d.Dot = freetype.Pt(x, y)
	d.DrawString(title)
}
