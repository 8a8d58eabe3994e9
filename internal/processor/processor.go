package processor

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/aliskhannn/photo-watermark/internal/model"
)

// margin is the distance in pixels kept from the image edges.
const margin = 10

// Processor draws watermark text onto images.
// It is safe for concurrent use: every call builds its own font face and canvas.
type Processor struct {
	font *opentype.Font
}

// New creates a Processor using the embedded Go Regular font.
func New() (*Processor, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return &Processor{font: f}, nil
}

// Watermark decodes the image from src, stamps text on it and returns the
// encoded result in the given format.
func (p *Processor) Watermark(src io.Reader, text string, opts model.WatermarkOptions, format imaging.Format) (*bytes.Buffer, error) {
	// Decode into an image object.
	img, err := Decode(src)
	if err != nil {
		return nil, err
	}

	marked, err := p.Render(img, text, opts)
	if err != nil {
		return nil, err
	}

	// Encode modified image.
	buf := new(bytes.Buffer)
	if err := Encode(buf, marked, format); err != nil {
		return nil, err
	}

	return buf, nil
}

// Render returns a copy of src with text drawn at the position chosen by opts.
// src itself is never modified. The result always has src's dimensions.
func (p *Processor) Render(src image.Image, text string, opts model.WatermarkOptions) (image.Image, error) {
	face, err := p.face(opts.FontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	// Copy the source pixels into a fresh RGBA canvas.
	dc := gg.NewContextForImage(src)
	dc.SetFontFace(face)
	dc.SetColor(opts.Color.RGBA())

	tw, lh := measure(dc, text)
	at := Anchor(opts.Position, dc.Width(), dc.Height(), tw, lh)

	// Baseline of the text sits at the anchor.
	dc.DrawString(text, float64(at.X), float64(at.Y))

	return dc.Image(), nil
}

// Measure returns the rendered width and the line height of text at fontSize.
func (p *Processor) Measure(text string, fontSize int) (width, lineHeight int, err error) {
	face, err := p.face(fontSize)
	if err != nil {
		return 0, 0, err
	}
	defer face.Close()

	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	width, lineHeight = measure(dc, text)

	return width, lineHeight, nil
}

// face builds an anti-aliased face at the given size in points (72 DPI, so 1pt == 1px).
func (p *Processor) face(fontSize int) (font.Face, error) {
	if fontSize <= 0 {
		fontSize = model.DefaultFontSize
	}

	face, err := opentype.NewFace(p.font, &opentype.FaceOptions{
		Size:    float64(fontSize),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load font face: %w", err)
	}

	return face, nil
}

// measure uses the face currently set on dc.
func measure(dc *gg.Context, text string) (width, lineHeight int) {
	w, h := dc.MeasureString(text)
	return int(math.Ceil(w)), int(math.Ceil(h))
}

// Anchor computes where the text baseline starts for the given position.
// The result is not clamped: on small images or long text it may fall
// outside the raster, and the text is clipped.
func Anchor(pos model.Position, imgWidth, imgHeight, textWidth, lineHeight int) image.Point {
	switch pos {
	case model.PositionTopLeft:
		return image.Pt(margin, lineHeight)
	case model.PositionCenter:
		return image.Pt((imgWidth-textWidth)/2, (imgHeight+lineHeight)/2)
	default:
		return image.Pt(imgWidth-textWidth-margin, imgHeight-margin)
	}
}
