package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aliskhannn/photo-watermark/internal/model"
)

func TestPrinter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := New(&out, &errOut)

	p.OnStart(3, "/photos/photos_watermark")
	p.OnResult(model.Rendered("/photos/a.jpg", "/photos/photos_watermark/a.jpg"))
	p.OnResult(model.Skipped("/photos/b.png", "no capture date"))
	p.OnResult(model.Failed("/photos/c.jpg", "failed to decode image"))
	p.OnDone(model.Summary{Total: 3, Rendered: 1, Skipped: 1, Failed: 1})

	wantOut := strings.Join([]string{
		"found 3 image file(s), writing to /photos/photos_watermark",
		"rendered: a.jpg -> /photos/photos_watermark/a.jpg",
		"skipped: b.png (no capture date)",
		"done: 3 found, 1 rendered, 1 skipped, 1 failed",
		"",
	}, "\n")
	if out.String() != wantOut {
		t.Errorf("stdout =\n%s\nwant\n%s", out.String(), wantOut)
	}
	if errOut.String() != "failed: c.jpg (failed to decode image)\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestPrinterError(t *testing.T) {
	var out, errOut bytes.Buffer
	New(&out, &errOut).Error(errors.New("cannot create output directory"))

	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
	if errOut.String() != "error: cannot create output directory\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}
