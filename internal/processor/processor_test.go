package processor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/photo-watermark/internal/model"
	"github.com/aliskhannn/photo-watermark/internal/testutil"
)

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		name string
		pos  model.Position
		want image.Point
	}{
		{"top-left", model.PositionTopLeft, image.Pt(10, 14)},
		{"center", model.PositionCenter, image.Pt((200-60)/2, (100+14)/2)},
		{"bottom-right", model.PositionBottomRight, image.Pt(200-60-10, 100-10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Anchor(tt.pos, 200, 100, 60, 14)
			if got != tt.want {
				t.Errorf("Anchor = %v, want %v", got, tt.want)
			}
			if again := Anchor(tt.pos, 200, 100, 60, 14); again != got {
				t.Errorf("Anchor not deterministic: %v then %v", got, again)
			}
		})
	}
}

func TestAnchorIsNotClamped(t *testing.T) {
	got := Anchor(model.PositionBottomRight, 20, 5, 80, 14)
	if got != image.Pt(20-80-10, 5-10) {
		t.Fatalf("Anchor = %v, want negative coordinates", got)
	}
}

func TestCenterAnchorAtFontSize20(t *testing.T) {
	p := newProcessor(t)

	const text = "2023-6"
	w, h, err := p.Measure(text, 20)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if w <= 0 || h <= 0 {
		t.Fatalf("Measure = %dx%d, want positive", w, h)
	}

	got := Anchor(model.PositionCenter, 100, 50, w, h)
	want := image.Pt((100-w)/2, (50+h)/2)
	if got != want {
		t.Fatalf("Anchor = %v, want %v", got, want)
	}

	// A larger font must measure wider.
	w12, _, err := p.Measure(text, 12)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if w12 >= w {
		t.Errorf("width at 12pt (%d) should be smaller than at 20pt (%d)", w12, w)
	}
}

func TestRenderKeepsDimensionsAndSource(t *testing.T) {
	p := newProcessor(t)
	src := solid(120, 60, color.RGBA{0, 0, 0, 255})
	before := append([]uint8(nil), src.Pix...)

	opts := model.WatermarkOptions{FontSize: 16, Color: model.ColorWhite, Position: model.PositionCenter}
	out, err := p.Render(src, "2023-06-15", opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 60 {
		t.Fatalf("size = %v, want 120x60", out.Bounds())
	}
	if !bytes.Equal(src.Pix, before) {
		t.Fatal("Render modified the source raster")
	}

	// Some pixel must have been lightened by the white text.
	var drawn bool
	for y := 0; y < 60 && !drawn; y++ {
		for x := 0; x < 120; x++ {
			r, _, _, _ := out.At(x, y).RGBA()
			if r > 0 {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Fatal("no text pixels found")
	}
}

func TestRenderIsRepeatable(t *testing.T) {
	p := newProcessor(t)
	src := testutil.Raster(90, 40)

	for _, pos := range []model.Position{model.PositionTopLeft, model.PositionCenter, model.PositionBottomRight} {
		opts := model.WatermarkOptions{FontSize: 12, Color: model.ColorRed, Position: pos}

		a, err := p.Render(src, "2020-01-01", opts)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		b, err := p.Render(src, "2020-01-01", opts)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		if !bytes.Equal(a.(*image.RGBA).Pix, b.(*image.RGBA).Pix) {
			t.Errorf("%s: repeated renders differ", pos)
		}
	}
}

func TestRenderClipsOnTinyImage(t *testing.T) {
	p := newProcessor(t)

	out, err := p.Render(solid(4, 4, color.White), "2023-06-15", model.DefaultWatermarkOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
}

func TestWatermark(t *testing.T) {
	p := newProcessor(t)
	data := testutil.PNG(t, testutil.Raster(64, 32), nil)

	buf, err := p.Watermark(bytes.NewReader(data), "2023-06-15", model.DefaultWatermarkOptions(), imaging.PNG)
	if err != nil {
		t.Fatalf("Watermark: %v", err)
	}

	img, err := imaging.Decode(buf)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Fatalf("size = %v, want 64x32", img.Bounds())
	}
}

func TestWatermarkDecodeError(t *testing.T) {
	p := newProcessor(t)

	_, err := p.Watermark(strings.NewReader("not an image"), "x", model.DefaultWatermarkOptions(), imaging.JPEG)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name string
		want imaging.Format
	}{
		{"a.png", imaging.PNG},
		{"A.PNG", imaging.PNG},
		{"a.jpg", imaging.JPEG},
		{"a.JPEG", imaging.JPEG},
		{"a.webp", imaging.JPEG},
		{"noext", imaging.JPEG},
	}

	for _, tt := range tests {
		if got := FormatFor(tt.name); got != tt.want {
			t.Errorf("FormatFor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	data := testutil.OversizedPNG(t, 100000, 100000, nil)

	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}

	p := newProcessor(t)
	if _, err := p.Watermark(bytes.NewReader(data), "2023-06-15", model.DefaultWatermarkOptions(), imaging.PNG); !errors.Is(err, ErrDecode) {
		t.Fatalf("Watermark err = %v, want ErrDecode", err)
	}
}

func TestDecodeAcceptsImageUnderCap(t *testing.T) {
	img, err := Decode(bytes.NewReader(testutil.PNG(t, testutil.Raster(300, 200), nil)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 200 {
		t.Fatalf("size = %v", img.Bounds())
	}
}
