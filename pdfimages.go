// Package pdfimages extracts embedded raster images from PDF files,
// describes them with simple heuristics and saves them to disk.
//
// Basic usage:
//
//	records, err := pdfimages.Extract("report.pdf")
//	if err != nil {
//	    // the document could not be read
//	}
//	for _, rec := range records {
//	    if rec.Failure != nil {
//	        log.Println(rec.Failure.Error)
//	        continue
//	    }
//	    fmt.Println(rec.Image.Page, rec.Image.Description)
//	}
//
// With the fluent API:
//
//	records, err := pdfimages.Open("report.pdf").
//	    Pages(1, 2).
//	    Classify().
//	    Images()
//
//	saved, err := pdfimages.Open("report.pdf").Save("out")
//
// Every call opens the document, works through it and closes it again; no
// state is shared between calls, so separate documents may be processed
// concurrently.
package pdfimages

import (
	"log/slog"

	"github.com/tsawler/pdfimages/analyze"
)

// Extractor provides a fluent interface for extracting images from a PDF.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	filename string
	options  options
}

// Open returns an Extractor for the PDF at filename. The file is not read
// until a terminal operation such as Images or Save is called.
//
// Example:
//
//	records, err := pdfimages.Open("document.pdf").Images()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// clone creates a copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		options:  e.options.clone(),
	}
}

// Pages specifies which pages to extract from (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	records, err := pdfimages.Open("doc.pdf").Pages(1, 3, 5).Images()
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to extract (1-indexed, inclusive).
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// Thresholds overrides the description and classification heuristics.
// Zero fields keep their defaults.
func (e *Extractor) Thresholds(th analyze.Thresholds) *Extractor {
	newExt := e.clone()
	newExt.options.thresholds = th.WithDefaults()
	return newExt
}

// Classify fills ImageRecord.ContentType in the results of Images.
func (e *Extractor) Classify() *Extractor {
	newExt := e.clone()
	newExt.options.classify = true
	return newExt
}

// Logger sets the logger used for skipped pages and images.
func (e *Extractor) Logger(logger *slog.Logger) *Extractor {
	newExt := e.clone()
	if logger != nil {
		newExt.options.logger = logger
	}
	return newExt
}

// Images extracts the configured pages. See Extract.
func (e *Extractor) Images() ([]Record, error) {
	return extract(e.filename, e.options)
}

// Save writes the images of the configured pages into dir. See Persist.
func (e *Extractor) Save(dir string) ([]SavedImage, error) {
	return persist(e.filename, dir, e.options)
}

// PageCount returns the number of pages in the document.
func (e *Extractor) PageCount() (int, error) {
	doc, err := openDocument(e.filename, defaultOptions())
	if err != nil {
		return 0, err
	}
	defer doc.close()
	return len(doc.pages), nil
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	records := pdfimages.Must(pdfimages.Open("document.pdf").Images())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
