package metadata

import (
	"bytes"
	"fmt"

	jis "github.com/dsoprea/go-jpeg-image-structure/v2"
	pis "github.com/dsoprea/go-png-image-structure/v2"
)

var (
	jpegSOI    = []byte{0xFF, 0xD8}
	exifHeader = []byte("Exif\x00\x00")
	tiffLE     = []byte("II*\x00")
	tiffBE     = []byte("MM\x00*")
)

// exifPayload returns the TIFF-structured EXIF block of an image file: the
// eXIf chunk body for PNG, the APP1 "Exif" segment body for JPEG, or the file
// itself when it already is a TIFF stream.
func exifPayload(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, ErrNoMetadata
	}

	pmp := pis.NewPngMediaParser()

	switch {
	case pmp.LooksLikeFormat(data):
		return pngPayload(pmp, data)
	case bytes.HasPrefix(data, jpegSOI):
		return jpegPayload(data)
	case bytes.HasPrefix(data, tiffLE), bytes.HasPrefix(data, tiffBE):
		return data, nil
	default:
		return nil, ErrNoMetadata
	}
}

func pngPayload(pmp *pis.PngMediaParser, data []byte) ([]byte, error) {
	mc, err := pmp.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMetadata, err)
	}

	cs, ok := mc.(*pis.ChunkSlice)
	if !ok || cs == nil {
		return nil, ErrNoMetadata
	}

	chunk, err := cs.FindExif()
	if err != nil || chunk == nil {
		return nil, ErrNoMetadata
	}

	return chunk.Data, nil
}

// jpegPayload tolerates a parse error past the EXIF segment: the segments
// read up to that point are still searched.
func jpegPayload(data []byte) ([]byte, error) {
	mc, _ := jis.NewJpegMediaParser().ParseBytes(data)

	sl, ok := mc.(*jis.SegmentList)
	if !ok || sl == nil {
		return nil, ErrNoMetadata
	}

	_, seg, err := sl.FindExif()
	if err != nil || seg == nil {
		return nil, ErrNoMetadata
	}

	payload, ok := bytes.CutPrefix(seg.Data, exifHeader)
	if !ok {
		return nil, ErrNoMetadata
	}

	return payload, nil
}
