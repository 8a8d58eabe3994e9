// Package testutil provides shared test helpers for building images that carry EXIF metadata.
package testutil

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Exif tag IDs written by TIFF.
const (
	tagMake             = 0x010F
	tagDateTime         = 0x0132
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003

	typeASCII = 2
	typeLong  = 4
)

// ExifTags selects the timestamp tags written into an EXIF payload.
// Empty fields are left out; IFD0 always carries a Make tag so the
// payload is a valid EXIF block even without timestamps.
type ExifTags struct {
	DateTimeOriginal string // "2006:01:02 15:04:05", stored in the Exif sub-IFD
	DateTime         string // stored in IFD0
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value uint32 // inline value or offset
}

// TIFF builds a little-endian TIFF structure holding the requested tags,
// the payload format of a JPEG APP1 "Exif" segment and a PNG eXIf chunk.
func TIFF(tags ExifTags) []byte {
	le := binary.LittleEndian
	const maker = "testutil"

	n0 := 1
	if tags.DateTime != "" {
		n0++
	}
	if tags.DateTimeOriginal != "" {
		n0++
	}

	pos := uint32(8 + 2 + 12*n0 + 4)
	var data bytes.Buffer

	addString := func(s string) (uint32, uint32) {
		off := pos + uint32(data.Len())
		data.WriteString(s)
		data.WriteByte(0)
		return off, uint32(len(s) + 1)
	}

	ifd0 := make([]ifdEntry, 0, n0)
	off, cnt := addString(maker)
	ifd0 = append(ifd0, ifdEntry{tagMake, typeASCII, cnt, off})
	if tags.DateTime != "" {
		off, cnt := addString(tags.DateTime)
		ifd0 = append(ifd0, ifdEntry{tagDateTime, typeASCII, cnt, off})
	}

	var exifIFD []byte
	if tags.DateTimeOriginal != "" {
		exifOff := pos + uint32(data.Len())
		strOff := exifOff + 2 + 12 + 4
		ifd0 = append(ifd0, ifdEntry{tagExifIFDPointer, typeLong, 1, exifOff})
		exifIFD = encodeIFD([]ifdEntry{{tagDateTimeOriginal, typeASCII, uint32(len(tags.DateTimeOriginal) + 1), strOff}})
		data.Write(exifIFD)
		data.WriteString(tags.DateTimeOriginal)
		data.WriteByte(0)
	}

	var out bytes.Buffer
	out.WriteString("II")
	_ = binary.Write(&out, le, uint16(42))
	_ = binary.Write(&out, le, uint32(8))
	out.Write(encodeIFD(ifd0))
	out.Write(data.Bytes())

	return out.Bytes()
}

// Entry is a raw IFD entry for building malformed payloads.
type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Value uint32 // inline value or offset into the payload
}

// RawTIFF builds a little-endian TIFF with a single IFD0 holding entries
// verbatim, followed by tail. IFD0 starts at offset 8 and tail at
// 8 + 2 + 12*len(entries) + 4. next is written as IFD0's next-IFD offset.
func RawTIFF(entries []Entry, next uint32, tail []byte) []byte {
	le := binary.LittleEndian

	var out bytes.Buffer
	out.WriteString("II")
	_ = binary.Write(&out, le, uint16(42))
	_ = binary.Write(&out, le, uint32(8))
	_ = binary.Write(&out, le, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&out, le, e)
	}
	_ = binary.Write(&out, le, next)
	out.Write(tail)

	return out.Bytes()
}

func encodeIFD(entries []ifdEntry) []byte {
	le := binary.LittleEndian
	var b bytes.Buffer
	_ = binary.Write(&b, le, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&b, le, e.tag)
		_ = binary.Write(&b, le, e.typ)
		_ = binary.Write(&b, le, e.count)
		_ = binary.Write(&b, le, e.value)
	}
	_ = binary.Write(&b, le, uint32(0)) // no next IFD

	return b.Bytes()
}

// Raster returns a w x h image filled with a horizontal gradient.
func Raster(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w-1, 1)), G: 64, B: 128, A: 255})
		}
	}

	return img
}

// JPEG encodes img and, when exif is non-nil, inserts it as an APP1 segment right after SOI.
func JPEG(t *testing.T, img image.Image, exif []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if exif == nil {
		return buf.Bytes()
	}

	raw := buf.Bytes()
	payload := append([]byte("Exif\x00\x00"), exif...)
	segLen := len(payload) + 2

	var out bytes.Buffer
	out.Write(raw[:2])
	out.Write([]byte{0xFF, 0xE1, byte(segLen >> 8), byte(segLen)})
	out.Write(payload)
	out.Write(raw[2:])

	return out.Bytes()
}

// PNG encodes img and, when exif is non-nil, inserts it as an eXIf chunk right after IHDR.
func PNG(t *testing.T, img image.Image, exif []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if exif == nil {
		return buf.Bytes()
	}

	raw := buf.Bytes()
	const afterIHDR = 8 + 4 + 4 + 13 + 4

	var out bytes.Buffer
	out.Write(raw[:afterIHDR])
	out.Write(pngChunk("eXIf", exif))
	out.Write(raw[afterIHDR:])

	return out.Bytes()
}

// OversizedPNG returns a structurally valid RGBA PNG whose IHDR declares
// width x height while the IDAT holds only 1 KiB of compressed zeros.
// A non-nil exif is added as an eXIf chunk.
func OversizedPNG(t *testing.T, width, height uint32, exif []byte) []byte {
	t.Helper()

	var ihdr bytes.Buffer
	_ = binary.Write(&ihdr, binary.BigEndian, width)
	_ = binary.Write(&ihdr, binary.BigEndian, height)
	ihdr.Write([]byte{8, 6, 0, 0, 0}) // 8-bit RGBA, deflate, no filter, no interlace

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	if _, err := zw.Write(make([]byte, 1024)); err != nil {
		t.Fatalf("compress idat: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compress idat: %v", err)
	}

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	out.Write(pngChunk("IHDR", ihdr.Bytes()))
	if exif != nil {
		out.Write(pngChunk("eXIf", exif))
	}
	out.Write(pngChunk("IDAT", idat.Bytes()))
	out.Write(pngChunk("IEND", nil))

	return out.Bytes()
}

func pngChunk(typ string, data []byte) []byte {
	var chunk bytes.Buffer
	_ = binary.Write(&chunk, binary.BigEndian, uint32(len(data)))
	chunk.WriteString(typ)
	chunk.Write(data)
	crc := crc32.ChecksumIEEE(append([]byte(typ), data...))
	_ = binary.Write(&chunk, binary.BigEndian, crc)

	return chunk.Bytes()
}

// WriteFile writes data to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}
