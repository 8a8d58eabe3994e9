package model

import (
	"testing"
	"time"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"top-left", PositionTopLeft},
		{"TOP-LEFT", PositionTopLeft},
		{"center", PositionCenter},
		{" Center ", PositionCenter},
		{"bottom-right", PositionBottomRight},
		{"", PositionBottomRight},
		{"middle", PositionBottomRight},
	}

	for _, tt := range tests {
		if got := ParsePosition(tt.in); got != tt.want {
			t.Errorf("ParsePosition(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPositionString(t *testing.T) {
	for _, p := range []Position{PositionTopLeft, PositionCenter, PositionBottomRight} {
		if got := ParsePosition(p.String()); got != p {
			t.Errorf("ParsePosition(%q) = %v, want %v", p.String(), got, p)
		}
	}
	if got := Position(42).String(); got != "bottom-right" {
		t.Errorf("unknown position String() = %q, want bottom-right", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"black", ColorBlack},
		{"Red", ColorRed},
		{"GREEN", ColorGreen},
		{"blue", ColorBlue},
		{"white", ColorWhite},
		{"purple", ColorWhite},
		{"", ColorWhite},
	}

	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColorRGBA(t *testing.T) {
	if got := ColorRed.RGBA(); got.R != 255 || got.G != 0 || got.B != 0 || got.A != 255 {
		t.Errorf("red = %+v", got)
	}
	if got := Color("teal").RGBA(); got != ColorWhite.RGBA() {
		t.Errorf("unknown color = %+v, want white", got)
	}
}

func TestDefaultWatermarkOptions(t *testing.T) {
	opts := DefaultWatermarkOptions()
	if opts.FontSize != 12 || opts.Color != ColorWhite || opts.Position != PositionBottomRight {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestCaptureDateTruncatesTime(t *testing.T) {
	d := DateOf(time.Date(2023, time.June, 15, 10, 0, 0, 0, time.UTC))
	if got := d.String(); got != "2023-06-15" {
		t.Fatalf("String() = %q, want 2023-06-15", got)
	}
	if d != DateOf(time.Date(2023, time.June, 15, 23, 59, 59, 0, time.UTC)) {
		t.Fatal("dates on the same day should be equal")
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		Rendered("a.jpg", "out/a.jpg"),
		Skipped("b.png", "no capture date"),
		Failed("c.jpg", "decode"),
		Rendered("d.jpg", "out/d.jpg"),
	}

	s := Summarize(results)
	if s.Total != 4 || s.Rendered != 2 || s.Skipped != 1 || s.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Rendered+s.Skipped+s.Failed != s.Total {
		t.Fatal("counts do not add up")
	}
}
