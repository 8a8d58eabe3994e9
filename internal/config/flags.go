package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aliskhannn/photo-watermark/internal/model"
)

const (
	appName   = "photo-watermark"
	envPrefix = "PHOTOWM"
)

// ErrHelp is returned by Parse when the help text should be printed instead of running.
var ErrHelp = errors.New("help requested")

// UsageError reports bad or missing command-line arguments.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return "usage error: " + e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// flag name -> viper key
var flagKeys = map[string]string{
	"font-size": "watermark.font_size",
	"color":     "watermark.color",
	"position":  "watermark.position",
	"workers":   "batch.workers",
	"verbose":   "log.verbose",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("watermark.font_size", model.DefaultFontSize)
	v.SetDefault("watermark.color", string(model.ColorWhite))
	v.SetDefault("watermark.position", model.PositionBottomRight.String())
	v.SetDefault("batch.workers", 1)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", "100ms")
	v.SetDefault("retry.backoff", 2.0)
	v.SetDefault("storage.s3.enabled", false)
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.bucket_name", "")
	v.SetDefault("storage.s3.use_ssl", false)
	v.SetDefault("log.verbose", false)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.Int("font-size", model.DefaultFontSize, "font size of the date text")
	fs.String("color", string(model.ColorWhite), "text color: black, white, red, green, blue")
	fs.String("position", model.PositionBottomRight.String(), "text position: top-left, center, bottom-right")
	fs.Int("workers", 1, "number of files processed at once")
	fs.String("config", "", "optional YAML config file")
	fs.Bool("verbose", false, "log metadata diagnostics")
	fs.BoolP("help", "h", false, "show this help")

	return fs
}

// Parse builds the configuration from command-line arguments (without the
// program name). Precedence: flags > PHOTOWM_* environment > config file > defaults.
//
// It returns ErrHelp when there are no arguments or --help was given, and a
// *UsageError for unknown flags, malformed values or a wrong number of paths.
func Parse(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, ErrHelp
	}

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, &UsageError{Err: err}
	}

	if help, _ := fs.GetBool("help"); help {
		return nil, ErrHelp
	}

	switch fs.NArg() {
	case 0:
		return nil, usageErrorf("an image file or directory path is required")
	case 1:
	default:
		return nil, usageErrorf("only one image path may be given, got %d", fs.NArg())
	}

	v := viper.New()
	setDefaults(v)

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, usageErrorf("failed to read config %s: %v", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, usageErrorf("failed to unmarshal config: %v", err)
	}
	cfg.Path = fs.Arg(0)

	if err := cfg.Validate(); err != nil {
		return nil, &UsageError{Err: err}
	}

	return &cfg, nil
}

// PrintHelp writes the usage text to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `Stamp each photo's capture date (from EXIF) onto a copy of the image.

Usage: %[1]s [options] <image path>

Arguments:
  <image path>             an image file, or a directory of .jpg/.jpeg/.png files

Options:
%[2]s
Positions:
  top-left                 top-left corner
  center                   centered
  bottom-right             bottom-right corner (default)

Output goes to <dir>/<dir name>_watermark, where <dir> is the given directory
or the directory holding the given file. Originals are never modified.

Environment:
  %[3]s_WATERMARK_FONT_SIZE, %[3]s_WATERMARK_COLOR, %[3]s_WATERMARK_POSITION,
  %[3]s_BATCH_WORKERS, %[3]s_STORAGE_S3_ENABLED, ... mirror the config file keys.

Examples:
  %[1]s image.jpg
  %[1]s --font-size 16 --color black --position center /path/to/images/
`, appName, newFlagSet().FlagUsages(), envPrefix)
}
