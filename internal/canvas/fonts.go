package canvas

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// pixel heights for the numbered font sizes used by prompts
var sizePixels = map[int]float64{
	2: 14,
	4: 20,
	6: 36,
	7: 36,
	8: 56,
}

// Fonts hands out faces by numbered size. Size 1 and below is the fixed
// 7x13 bitmap font; larger sizes are rendered from a TrueType font.
type Fonts struct {
	ttf   *truetype.Font
	faces map[int]font.Face
}

// NewFonts parses a TrueType font. A nil ttf selects Go Regular.
func NewFonts(ttf []byte) (*Fonts, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("canvas: parse font: %w", err)
	}
	return &Fonts{ttf: f, faces: map[int]font.Face{}}, nil
}

// LoadFonts reads a TrueType file from disk.
func LoadFonts(path string) (*Fonts, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	return NewFonts(b)
}

// Face returns the face for size, creating it on first use.
func (f *Fonts) Face(size int) font.Face {
	if size <= 1 || f == nil || f.ttf == nil {
		return basicfont.Face7x13
	}
	if face, ok := f.faces[size]; ok {
		return face
	}
	px, ok := sizePixels[size]
	if !ok {
		px = float64(size * 5)
	}
	face := truetype.NewFace(f.ttf, &truetype.Options{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	f.faces[size] = face
	return face
}
