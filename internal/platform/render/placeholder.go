package render

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	canvasWidth  = 800
	canvasHeight = 600
	gridStep     = 50
)

// PlaceholderRenderer draws a deterministic stand-in background when no
// image model is configured: a light canvas with a reference grid and,
// when a font is available, the prompt stenciled across the top.
type PlaceholderRenderer struct {
	fontFace font.Face
}

// NewPlaceholderRenderer loads the optional TTF font at
// PLACEHOLDER_FONT. Without a font the renderer still works; images
// just carry no caption.
func NewPlaceholderRenderer() (*PlaceholderRenderer, error) {
	r := &PlaceholderRenderer{}

	fontPath := strings.TrimSpace(os.Getenv("PLACEHOLDER_FONT"))
	if fontPath == "" {
		return r, nil
	}

	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read placeholder font: %w", err)
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse placeholder font: %w", err)
	}
	r.fontFace = truetype.NewFace(f, &truetype.Options{Size: 22})
	return r, nil
}

// Render produces a PNG for the given prompt.
func (r *PlaceholderRenderer) Render(prompt string) ([]byte, error) {
	dc := gg.NewContext(canvasWidth, canvasHeight)

	dc.SetColor(color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	dc.Clear()

	dc.SetColor(color.NRGBA{R: 214, G: 220, B: 228, A: 255})
	dc.SetLineWidth(1)
	for x := gridStep; x < canvasWidth; x += gridStep {
		dc.DrawLine(float64(x), 0, float64(x), canvasHeight)
		dc.Stroke()
	}
	for y := gridStep; y < canvasHeight; y += gridStep {
		dc.DrawLine(0, float64(y), canvasWidth, float64(y))
		dc.Stroke()
	}

	dc.SetColor(color.NRGBA{R: 120, G: 130, B: 145, A: 255})
	dc.SetLineWidth(3)
	dc.DrawRectangle(6, 6, canvasWidth-12, canvasHeight-12)
	dc.Stroke()

	if r.fontFace != nil {
		caption := prompt
		if len(caption) > 120 {
			caption = caption[:120]
		}
		dc.SetFontFace(r.fontFace)
		dc.SetColor(color.NRGBA{R: 40, G: 40, B: 40, A: 255})
		dc.DrawStringWrapped(caption, canvasWidth/2, 30, 0.5, 0, canvasWidth-80, 1.4, gg.AlignCenter)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode placeholder png: %w", err)
	}
	return buf.Bytes(), nil
}
