package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/photo-watermark/internal/model"
)

// Config holds the main configuration for the application.
type Config struct {
	Watermark Watermark `mapstructure:"watermark"`
	Batch     Batch     `mapstructure:"batch"`
	Retry     Retry     `mapstructure:"retry"`
	Storage   Storage   `mapstructure:"storage"`
	Log       Log       `mapstructure:"log"`

	// Path is the positional argument: an image file or a directory of images.
	Path string `mapstructure:"-"`
}

// Watermark holds the text style and placement.
// Color and Position are free-form; unknown values fall back to the defaults.
type Watermark struct {
	FontSize int    `mapstructure:"font_size"` // points, >= 1
	Color    string `mapstructure:"color"`     // black | white | red | green | blue
	Position string `mapstructure:"position"`  // top-left | center | bottom-right
}

// Batch holds batch execution settings.
type Batch struct {
	Workers int `mapstructure:"workers"` // files processed at once
}

// Retry defines retry policy configuration for output writes.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Storage holds configuration for the optional remote mirror.
type Storage struct {
	S3 S3 `mapstructure:"s3"`
}

// S3 holds configuration for an S3-compatible (MinIO) bucket.
type S3 struct {
	Enabled    bool   `mapstructure:"enabled"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Log holds logging settings.
type Log struct {
	Verbose bool `mapstructure:"verbose"`
}

// Options converts the watermark settings into render options.
func (w Watermark) Options() model.WatermarkOptions {
	return model.WatermarkOptions{
		FontSize: w.FontSize,
		Color:    model.ParseColor(w.Color),
		Position: model.ParsePosition(w.Position),
	}
}

// Strategy converts the retry settings into a retry strategy.
func (r Retry) Strategy() retry.Strategy {
	return retry.Strategy{
		Attempts: r.Attempts,
		Delay:    r.Delay,
		Backoff:  r.Backoff,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Watermark.Validate(); err != nil {
		return err
	}
	if err := c.Batch.Validate(); err != nil {
		return err
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	return c.Storage.S3.Validate()
}

// Validate validates the watermark configuration.
func (w *Watermark) Validate() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.FontSize, validation.Required, validation.Min(1)),
	)
}

// Validate validates the batch configuration.
func (b *Batch) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Workers, validation.Required, validation.Min(1)),
	)
}

// Validate validates the retry configuration.
func (r *Retry) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Attempts, validation.Required, validation.Min(1)),
	)
}

// Validate validates the S3 mirror configuration. Nothing is required while it is disabled.
func (s *S3) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Endpoint, validation.When(s.Enabled, validation.Required)),
		validation.Field(&s.BucketName, validation.When(s.Enabled, validation.Required)),
	)
}
