package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/aliskhannn/photo-watermark/internal/model"
)

// Reasons passed to a DiagnosticFunc. ExtractDate itself never returns them.
var (
	ErrUnreadable      = errors.New("file unreadable")
	ErrNoMetadata      = errors.New("no exif metadata")
	ErrCorruptMetadata = errors.New("corrupt exif metadata")
	ErrNoCaptureTag    = errors.New("no capture timestamp tag")
)

// captureTags are tried in order: the original capture time, then the generic timestamp.
var captureTags = []exif.FieldName{exif.DateTimeOriginal, exif.DateTime}

var timeLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006:01:02",
	"2006-01-02",
}

// DiagnosticFunc receives the reason a file yielded no capture date.
type DiagnosticFunc func(path string, reason error)

// Extractor reads capture dates from embedded EXIF metadata.
type Extractor struct {
	diagnose DiagnosticFunc
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDiagnostics registers fn to be told why a date was absent.
func WithDiagnostics(fn DiagnosticFunc) Option {
	return func(e *Extractor) {
		e.diagnose = fn
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ExtractDate returns the capture date of the image at path.
//
// The boolean is false when the file has no metadata, the metadata is corrupt,
// no timestamp tag is present, or the file cannot be read at all. These cases
// are not errors for the caller; the reason only reaches the diagnostic hook.
func (e *Extractor) ExtractDate(path string) (model.CaptureDate, bool) {
	date, err := e.extract(path)
	if err != nil {
		if e.diagnose != nil {
			e.diagnose(path, err)
		}
		return model.CaptureDate{}, false
	}

	return date, true
}

func (e *Extractor) extract(path string) (date model.CaptureDate, err error) {
	defer func() {
		if r := recover(); r != nil {
			date, err = model.CaptureDate{}, fmt.Errorf("%w: %v", ErrCorruptMetadata, r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return model.CaptureDate{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	payload, err := exifPayload(data)
	if err != nil {
		return model.CaptureDate{}, err
	}
	if err := validateTIFF(payload); err != nil {
		return model.CaptureDate{}, err
	}

	x, err := exif.Decode(bytes.NewReader(payload))
	if x == nil {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return model.CaptureDate{}, ErrNoMetadata
		}
		return model.CaptureDate{}, fmt.Errorf("%w: %v", ErrCorruptMetadata, err)
	}

	// A non-nil x with an error means a sub-IFD failed; the main tags are still usable.
	for _, name := range captureTags {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}

		s, err := tag.StringVal()
		if err != nil {
			continue
		}

		t, ok := parseTime(s)
		if !ok {
			continue
		}

		return model.DateOf(t), nil
	}

	return model.CaptureDate{}, ErrNoCaptureTag
}

// parseTime parses an EXIF timestamp. Only the date part is kept by callers.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
