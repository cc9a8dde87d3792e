package pdfimages

import (
	"log/slog"

	"github.com/tsawler/pdfimages/analyze"
)

// Option configures Extract and Persist.
type Option func(*options)

// options holds configuration for image extraction.
type options struct {
	// Page selection (1-indexed); nil means all pages
	pages []int

	thresholds analyze.Thresholds
	classify   bool
	logger     *slog.Logger
}

// defaultOptions returns the default extraction options.
func defaultOptions() options {
	return options{
		thresholds: analyze.DefaultThresholds(),
		logger:     slog.New(slog.DiscardHandler),
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// clone creates a deep copy of options.
func (o options) clone() options {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}

// WithPages restricts extraction to the given 1-based page numbers. Numbers
// outside the document are ignored.
func WithPages(pages ...int) Option {
	return func(o *options) {
		o.pages = append(o.pages, pages...)
	}
}

// WithThresholds overrides the description and classification thresholds.
// Zero fields keep their defaults.
func WithThresholds(th analyze.Thresholds) Option {
	return func(o *options) {
		o.thresholds = th.WithDefaults()
	}
}

// WithClassification fills ImageRecord.ContentType.
func WithClassification() Option {
	return func(o *options) {
		o.classify = true
	}
}

// WithLogger sets the logger for skipped pages and images. By default
// nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
