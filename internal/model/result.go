package model

import (
	"fmt"
	"time"
)

// CaptureDate is the calendar date a photo was taken. It carries no time of day.
type CaptureDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) CaptureDate {
	return CaptureDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// String formats the date as YYYY-MM-DD, the text stamped onto the image.
func (d CaptureDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Status is the outcome of processing one file.
type Status string

const (
	StatusRendered Status = "rendered"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Result is the per-file outcome of a batch.
type Result struct {
	Path       string // input file
	Status     Status // rendered / skipped / failed
	OutputPath string // set only when rendered
	Reason     string // set when skipped or failed
}

// Rendered builds a successful result.
func Rendered(path, outputPath string) Result {
	return Result{Path: path, Status: StatusRendered, OutputPath: outputPath}
}

// Skipped builds a result for a file that had nothing to stamp.
func Skipped(path, reason string) Result {
	return Result{Path: path, Status: StatusSkipped, Reason: reason}
}

// Failed builds a result for a file whose processing returned an error.
func Failed(path, reason string) Result {
	return Result{Path: path, Status: StatusFailed, Reason: reason}
}

// Summary holds the aggregate counts of a batch.
type Summary struct {
	Total    int
	Rendered int
	Skipped  int
	Failed   int
}

// Summarize counts results by status. The counts do not depend on the order of results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusRendered:
			s.Rendered++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}

	return s
}
