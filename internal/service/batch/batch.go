package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/retry"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/photo-watermark/internal/model"
	"github.com/aliskhannn/photo-watermark/internal/processor"
	"github.com/aliskhannn/photo-watermark/internal/storage/file"
)

// ErrOutputDir is returned when the shared output directory cannot be created.
// It is the only per-batch failure; everything else is recorded per file.
var ErrOutputDir = errors.New("cannot create output directory")

// Reasons recorded on skipped and failed results.
const (
	ReasonNoCaptureDate = "no capture date"
	ReasonCanceled      = "canceled"
)

// extractor defines the interface for reading a capture date from an image file.
type extractor interface {
	ExtractDate(path string) (model.CaptureDate, bool)
}

// renderer defines the interface for decoding, stamping and re-encoding an image.
type renderer interface {
	Watermark(src io.Reader, text string, opts model.WatermarkOptions, format imaging.Format) (*bytes.Buffer, error)
}

// mirror defines the interface for an optional remote copy of every rendered output.
type mirror interface {
	Save(ctx context.Context, prefix, filename string, data []byte) (string, error)
}

// Observer receives batch progress. Implementations must be safe for
// concurrent use: OnResult may be called from several workers at once.
type Observer interface {
	// OnStart is called once candidates are known and the output directory exists.
	OnStart(total int, outputDir string)
	// OnResult is called once per file.
	OnResult(res model.Result)
	// OnDone is called with the aggregate counts after the last file.
	OnDone(sum model.Summary)
}

// Processor stamps capture dates onto one image or onto every image in a directory.
type Processor struct {
	extractor extractor
	renderer  renderer
	mirror    mirror
	observer  Observer
	strategy  retry.Strategy
	workers   int
	logger    zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithMirror uploads every rendered output to m as well.
func WithMirror(m mirror) Option {
	return func(p *Processor) { p.mirror = m }
}

// WithObserver reports progress to o.
func WithObserver(o Observer) Option {
	return func(p *Processor) { p.observer = o }
}

// WithWorkers processes up to n files at once. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(p *Processor) { p.workers = n }
}

// WithRetry sets the retry policy for output writes.
func WithRetry(s retry.Strategy) Option {
	return func(p *Processor) { p.strategy = s }
}

// WithLogger sets the structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// New creates a new Processor with the given extractor and renderer.
func New(e extractor, r renderer, opts ...Option) *Processor {
	p := &Processor{
		extractor: e,
		renderer:  r,
		strategy:  retry.Strategy{Attempts: 1},
		workers:   1,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = 1
	}

	return p
}

// ProcessOne stamps a single file. The output directory is derived from the
// file's parent and is only created when the file has a capture date.
//
// The returned error is non-nil only when the output directory cannot be
// created; the result then records the failure too.
func (p *Processor) ProcessOne(ctx context.Context, path string, opts model.WatermarkOptions) (model.Result, error) {
	log := p.runLogger()

	date, ok := p.extractor.ExtractDate(path)
	if !ok {
		res := model.Skipped(path, ReasonNoCaptureDate)
		p.record(log, res)
		p.done(log, []model.Result{res})
		return res, nil
	}

	store := file.NewStorage(OutputDirFor(filepath.Dir(path)), p.strategy)
	if err := store.EnsureDir(); err != nil {
		log.Error().Err(err).Str("dir", store.Dir()).Msg("failed to create output directory")
		res := model.Failed(path, ErrOutputDir.Error())
		p.record(log, res)
		p.done(log, []model.Result{res})
		return res, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	res := p.safeRender(ctx, log, store, path, date, opts)
	p.record(log, res)
	p.done(log, []model.Result{res})

	return res, nil
}

// ProcessAll stamps every image directly inside dir. The output directory is
// created once before any file is touched; if that fails nothing is processed.
// Per-file failures never stop the batch. Results follow the candidate order
// regardless of how many workers ran.
func (p *Processor) ProcessAll(ctx context.Context, dir string, opts model.WatermarkOptions) ([]model.Result, error) {
	log := p.runLogger()

	candidates, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	store := file.NewStorage(OutputDirFor(dir), p.strategy)
	if err := store.EnsureDir(); err != nil {
		log.Error().Err(err).Str("dir", store.Dir()).Msg("failed to create output directory")
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	log.Info().
		Str("dir", dir).
		Str("output_dir", store.Dir()).
		Int("candidates", len(candidates)).
		Int("workers", p.workers).
		Msg("starting batch")

	if p.observer != nil {
		p.observer.OnStart(len(candidates), store.Dir())
	}

	results := make([]model.Result, len(candidates))

	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, path := range candidates {
		// Stop dispatching on cancellation; files not started are recorded as failed.
		if ctx.Err() != nil {
			results[i] = model.Failed(path, ReasonCanceled)
			p.record(log, results[i])
			continue
		}

		i, path := i, path
		g.Go(func() error {
			// The slot may have freed up only after cancellation.
			res := model.Failed(path, ReasonCanceled)
			if ctx.Err() == nil {
				res = p.processFile(ctx, log, store, path, opts)
			}
			results[i] = res
			p.record(log, res)
			return nil
		})
	}

	_ = g.Wait()

	p.done(log, results)

	return results, nil
}

// processFile runs extract -> render -> write for one file inside an existing output directory.
func (p *Processor) processFile(ctx context.Context, log zerolog.Logger, store *file.Storage, path string, opts model.WatermarkOptions) model.Result {
	date, ok := p.extractor.ExtractDate(path)
	if !ok {
		return model.Skipped(path, ReasonNoCaptureDate)
	}

	return p.safeRender(ctx, log, store, path, date, opts)
}

// safeRender converts a panic from a codec into a failed result so one file cannot abort the batch.
func (p *Processor) safeRender(ctx context.Context, log zerolog.Logger, store *file.Storage, path string, date model.CaptureDate, opts model.WatermarkOptions) (res model.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("file", path).Interface("panic", r).Msg("recovered while rendering")
			res = model.Failed(path, fmt.Sprintf("panic: %v", r))
		}
	}()

	return p.render(ctx, store, path, date, opts)
}

func (p *Processor) render(ctx context.Context, store *file.Storage, path string, date model.CaptureDate, opts model.WatermarkOptions) model.Result {
	name := filepath.Base(path)

	// Load the original image.
	src, err := os.Open(path)
	if err != nil {
		return model.Failed(path, fmt.Sprintf("failed to open image: %v", err))
	}
	defer src.Close()

	// Stamp the date and encode in the format the file name implies.
	buf, err := p.renderer.Watermark(src, date.String(), opts, processor.FormatFor(name))
	if err != nil {
		return model.Failed(path, err.Error())
	}

	// Save watermarked version next to the others.
	dst, err := store.Save(name, buf.Bytes())
	if err != nil {
		return model.Failed(path, err.Error())
	}

	if p.mirror != nil {
		if _, err := p.mirror.Save(ctx, filepath.Base(store.Dir()), name, buf.Bytes()); err != nil {
			return model.Failed(path, err.Error())
		}
	}

	return model.Rendered(path, dst)
}

func (p *Processor) runLogger() zerolog.Logger {
	return p.logger.With().Str("run_id", uuid.NewString()).Logger()
}

func (p *Processor) record(log zerolog.Logger, res model.Result) {
	var ev *zerolog.Event
	switch res.Status {
	case model.StatusRendered:
		ev = log.Info().Str("output", res.OutputPath)
	case model.StatusSkipped:
		ev = log.Info().Str("reason", res.Reason)
	default:
		ev = log.Warn().Str("reason", res.Reason)
	}
	ev.Str("file", res.Path).Str("status", string(res.Status)).Msg("file processed")

	if p.observer != nil {
		p.observer.OnResult(res)
	}
}

func (p *Processor) done(log zerolog.Logger, results []model.Result) {
	sum := model.Summarize(results)

	log.Info().
		Int("total", sum.Total).
		Int("rendered", sum.Rendered).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("batch finished")

	if p.observer != nil {
		p.observer.OnDone(sum)
	}
}
