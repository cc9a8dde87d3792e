package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tsawler/pdfimages/analyze"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Thresholds analyze.Thresholds
	Jobs       int
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Jobs      int    `short:"j" default:"4" env:"PDFIMAGES_JOBS" help:"Documents processed concurrently"`
	LogLevel  string `default:"warn" enum:"debug,info,warn,error" env:"PDFIMAGES_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat string `default:"text" enum:"text,json" env:"PDFIMAGES_LOG_FORMAT" help:"Log format (text, json)"`

	Thresholds ThresholdFlags `embed:""`

	Extract  ExtractCmd  `cmd:"" help:"List and describe the images of PDF files"`
	Save     SaveCmd     `cmd:"" help:"Save the images of PDF files to a directory"`
	Classify ClassifyCmd `cmd:"" help:"Describe and classify standalone image files"`
}

// ThresholdFlags overrides the description and classification heuristics.
type ThresholdFlags struct {
	SmallArea       int     `default:"50000" env:"PDFIMAGES_SMALL_AREA" help:"Pixel area below which an image is small"`
	MediumArea      int     `default:"500000" env:"PDFIMAGES_MEDIUM_AREA" help:"Pixel area below which an image is medium"`
	LandscapeRatio  float64 `default:"1.3" env:"PDFIMAGES_LANDSCAPE_RATIO" help:"Width/height ratio above which an image is landscape"`
	PortraitRatio   float64 `default:"0.7" env:"PDFIMAGES_PORTRAIT_RATIO" help:"Width/height ratio below which an image is portrait"`
	PaletteCap      int     `default:"256" env:"PDFIMAGES_PALETTE_CAP" help:"Most colors counted before a palette is complex"`
	ChartGrayLevels int     `default:"10" env:"PDFIMAGES_CHART_GRAY_LEVELS" help:"Gray levels below which an image looks like a chart"`
	ContrastRatio   float64 `default:"0.7" env:"PDFIMAGES_CONTRAST_RATIO" help:"Dark plus light pixel share above which content is chart/diagram/text"`
	DarkLimit       int     `default:"85" env:"PDFIMAGES_DARK_LIMIT" help:"First gray level that is not counted as dark"`
	LightStart      int     `default:"170" env:"PDFIMAGES_LIGHT_START" help:"First gray level counted as light"`
}

// thresholds copies the flags over the defaults. Every flag has a default,
// so a zero here was asked for and is kept.
func (f ThresholdFlags) thresholds() analyze.Thresholds {
	th := analyze.DefaultThresholds()
	th.SmallArea = f.SmallArea
	th.MediumArea = f.MediumArea
	th.LandscapeRatio = f.LandscapeRatio
	th.PortraitRatio = f.PortraitRatio
	th.PaletteCap = f.PaletteCap
	th.ChartGrayLevels = f.ChartGrayLevels
	th.ContrastRatio = f.ContrastRatio
	th.DarkLimit = f.DarkLimit
	th.LightStart = f.LightStart
	return th
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Files    []string `arg:"" name:"pdf" help:"PDF files to read"`
	Format   string   `short:"f" default:"text" enum:"text,json" help:"Output format (text, json)"`
	Classify bool     `short:"c" help:"Classify image content"`
	Pages    []int    `short:"p" help:"Comma-separated 1-based pages to read (default: all)"`
}

// SaveCmd is the "save" subcommand.
type SaveCmd struct {
	Files []string `arg:"" name:"pdf" help:"PDF files to read"`
	Out   string   `short:"o" required:"" help:"Output directory"`
	Index bool     `help:"Also write an index.html gallery"`
	Pages []int    `short:"p" help:"Comma-separated 1-based pages to read (default: all)"`
}

// ClassifyCmd is the "classify" subcommand.
type ClassifyCmd struct {
	Files []string `arg:"" name:"image" help:"Image files (jpeg, png, gif, tiff, bmp, webp)"`
}

// newLogger builds the stderr logger for the given level and format.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
