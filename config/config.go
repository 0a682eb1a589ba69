// Package config holds the triangle's settings and parses them from the
// command line.
package config

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Config struct {
	Title         string
	Width, Height int

	// FramesInFlight is the number of frames the CPU may record ahead of
	// the GPU.
	FramesInFlight int
	Validation     bool

	// ShaderDir holds vert.spv and frag.spv.
	ShaderDir         string
	// PipelineCachePath is where pipeline cache data persists between runs.
	// Empty disables persistence.
	PipelineCachePath string

	LogLevel   string
	// ClearColor is the RGBA color the frame is cleared to.
	ClearColor mgl32.Vec4
}

func Default() Config {
	return Config{
		Title:          "Vulkan triangle",
		Width:          800,
		Height:         600,
		FramesInFlight: 2,
		Validation:     true,
		ShaderDir:      "shaders",
		LogLevel:       "info",
		ClearColor:     mgl32.Vec4{0, 0, 0, 1},
	}
}

// Parse returns Default overridden by args, which exclude the program name.
// Usage and flag errors are printed to stderr.
func Parse(args []string) (Config, error) {
	return parse(args, os.Stderr)
}

func parse(args []string, output io.Writer) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("triangle", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Title, "title", cfg.Title, "window title")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "initial window width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "initial window height")
	fs.IntVar(&cfg.FramesInFlight, "frames", cfg.FramesInFlight, "frames in flight")
	fs.BoolVar(&cfg.Validation, "validation", cfg.Validation, "enable the Khronos validation layer")
	fs.StringVar(&cfg.ShaderDir, "shaders", cfg.ShaderDir, "directory holding vert.spv and frag.spv")
	fs.StringVar(&cfg.PipelineCachePath, "pipeline-cache", cfg.PipelineCachePath, "pipeline cache file (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.Var((*colorValue)(&cfg.ClearColor), "clear", "clear color as r,g,b,a in [0,1] or a color name")

	err := fs.Parse(args)
	if err != nil {
		return cfg, errors.Wrap(err, "parsing flags")
	}
	if fs.NArg() > 0 {
		return cfg, errors.Newf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.FramesInFlight < 1 {
		return errors.Newf("frames in flight must be at least 1, got %d", c.FramesInFlight)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return errors.Newf("clear color component %d = %g is outside [0,1]", i, v)
		}
	}
	return nil
}

// Level is LogLevel as an slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return 0, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return level, nil
}

type colorValue mgl32.Vec4

func (v *colorValue) String() string {
	if v == nil {
		return ""
	}
	parts := make([]string, len(v))
	for i, c := range v {
		parts[i] = strconv.FormatFloat(float64(c), 'g', -1, 32)
	}
	return strings.Join(parts, ",")
}

// Set accepts either four comma-separated components or an X11 color name,
// which is opaque.
func (v *colorValue) Set(s string) error {
	if c, ok := math32.IsColorName(strings.ToLower(strings.TrimSpace(s))); ok {
		*v = colorValue{c.R, c.G, c.B, 1}
		return nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != len(v) {
		return errors.Newf("want a color name or 4 comma-separated components, got %q", s)
	}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return err
		}
		v[i] = float32(f)
	}
	return nil
}
