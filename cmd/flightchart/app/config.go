package app

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        ImageFormat
	FontPath      string
	Series        []string
	Verbose       bool
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

// LogLevel returns the logging level the flags selected.
func (c *Config) LogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		Series: defaultSeries(),
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, series string
	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&c.FontPath, "font", "", "Path to a TTF font file for annotations")
	flag.StringVar(&series, "series", strings.Join(defaultSeries(), ","), "Comma-separated telemetry series to chart")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as scales and the info bar")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.Series, err = parseSeries(series); err == nil && !c.NoAnnotations && c.FontPath == "" {
		err = errors.New("font file is required for annotations (use -font, or -no-annotations)")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}

func parseSeries(s string) ([]string, error) {
	var names []string
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seriesExtractors[name]; !ok {
			return nil, fmt.Errorf("unknown telemetry series: %s", name)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.New("at least one telemetry series is required")
	}
	return names, nil
}
