package metadata

import (
	"encoding/binary"
	"fmt"
	"math"
)

// typeSizes is the size in bytes of one value of each TIFF field type, indexed by type (1..12).
var typeSizes = [...]uint64{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Tags whose value is the offset of another IFD.
const (
	tagExifIFD    = 0x8769
	tagGPSIFD     = 0x8825
	tagInteropIFD = 0xA005
)

// maxIFDs bounds the number of directories one payload may reference.
const maxIFDs = 32

// validateTIFF walks every IFD reachable from the header, following the IFD
// chain and the Exif, GPS and Interop sub-IFD pointers. It rejects entries
// whose type is unknown or whose value size overflows or runs past the
// payload, and directories that are truncated or referenced twice.
//
// The tag decoder trusts these fields and allocates by count, so a payload
// must pass here before it is decoded.
func validateTIFF(b []byte) error {
	if len(b) < 8 {
		return corruptf("tiff header is %d bytes", len(b))
	}

	var order binary.ByteOrder
	switch string(b[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return corruptf("unknown byte order %q", b[:2])
	}
	if order.Uint16(b[2:4]) != 42 {
		return corruptf("bad tiff magic")
	}

	w := &ifdWalker{b: b, order: order, seen: make(map[uint32]bool)}
	for off := order.Uint32(b[4:8]); off != 0; {
		next, err := w.dir(off)
		if err != nil {
			return err
		}
		off = next
	}

	return nil
}

type ifdWalker struct {
	b     []byte
	order binary.ByteOrder
	seen  map[uint32]bool
}

// dir checks the IFD at off and its sub-IFDs, and returns the next-IFD offset.
func (w *ifdWalker) dir(off uint32) (uint32, error) {
	if w.seen[off] {
		return 0, corruptf("ifd at %d referenced twice", off)
	}
	if len(w.seen) >= maxIFDs {
		return 0, corruptf("more than %d ifds", maxIFDs)
	}
	w.seen[off] = true

	size := uint64(len(w.b))
	start := uint64(off)
	if start+2 > size {
		return 0, corruptf("ifd offset %d past end of %d bytes", off, size)
	}

	n := uint64(w.order.Uint16(w.b[start:]))
	end := start + 2 + 12*n + 4
	if end > size {
		return 0, corruptf("ifd at %d with %d entries is truncated", off, n)
	}

	for i := uint64(0); i < n; i++ {
		e := w.b[start+2+12*i:]
		tag := w.order.Uint16(e[0:])
		typ := w.order.Uint16(e[2:])
		count := w.order.Uint32(e[4:])
		value := w.order.Uint32(e[8:])

		if typ == 0 || int(typ) >= len(typeSizes) {
			return 0, corruptf("tag %#04x has unknown type %d", tag, typ)
		}

		length := typeSizes[typ] * uint64(count)
		if length > math.MaxUint32 {
			return 0, corruptf("tag %#04x value size overflows (%d x %d)", tag, count, typeSizes[typ])
		}
		if length > 4 && uint64(value)+length > size {
			return 0, corruptf("tag %#04x value of %d bytes at %d runs past end", tag, length, value)
		}

		switch tag {
		case tagExifIFD, tagGPSIFD, tagInteropIFD:
			// Sub-IFDs are read as single directories; their next pointer is ignored.
			if _, err := w.dir(value); err != nil {
				return 0, err
			}
		}
	}

	return w.order.Uint32(w.b[end-4:]), nil
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptMetadata, fmt.Sprintf(format, args...))
}
