package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrDecode is returned when the input bytes are not a decodable image.
var ErrDecode = errors.New("failed to decode image")

// jpegQuality is used for every JPEG output.
const jpegQuality = 95

// MaxPixels caps width*height as declared by the image header. Decoding
// allocates the full raster up front, so larger images are rejected before
// any pixel data is read.
const MaxPixels = 1 << 28

// FormatFor picks the output encoding from a file name: .png encodes as PNG,
// everything else (including .jpg/.jpeg and unknown extensions) as JPEG.
func FormatFor(name string) imaging.Format {
	if strings.EqualFold(filepath.Ext(name), ".png") {
		return imaging.PNG
	}

	return imaging.JPEG
}

// Decode reads an image from r. Failures, including images larger than
// MaxPixels, wrap ErrDecode.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, MaxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return img, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format imaging.Format) error {
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to encode watermarked image: %w", err)
	}

	return nil
}
