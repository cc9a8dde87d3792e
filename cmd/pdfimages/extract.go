package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tsawler/pdfimages"
)

// documentResult is the outcome of extracting one document.
type documentResult struct {
	Document string             `json:"document"`
	Images   []pdfimages.Record `json:"images"`
	Summary  pdfimages.Summary  `json:"summary"`
	Error    string             `json:"error,omitempty"`
	err      error
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	opts := []pdfimages.Option{
		pdfimages.WithPages(c.Pages...),
		pdfimages.WithThresholds(deps.Thresholds),
		pdfimages.WithLogger(deps.Logger),
	}
	if c.Classify {
		opts = append(opts, pdfimages.WithClassification())
	}

	results := forEachDocument(deps.Ctx, deps.Jobs, c.Files, func(_ context.Context, path string) documentResult {
		deps.Logger.Debug("extracting", "path", path)
		records, err := pdfimages.Extract(path, opts...)
		res := documentResult{
			Document: path,
			Images:   records,
			Summary:  pdfimages.Summarize(records),
			err:      err,
		}
		if res.Images == nil {
			res.Images = []pdfimages.Record{}
		}
		if err != nil {
			res.Error = err.Error()
		}
		return res
	})

	var failed int
	enc := json.NewEncoder(deps.Stdout)
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "%s: %s\n", res.Document, res.err)
		}

		if c.Format == "json" {
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}
		if res.err == nil {
			if err := writeText(deps, res); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}

	return documentsFailed(failed, len(results))
}

// writeText prints a report for one document followed by its failures.
func writeText(deps *Dependencies, res documentResult) error {
	fmt.Fprintf(deps.Stdout, "%s: %d images, %d failures\n\n", res.Document, res.Summary.Images, res.Summary.Failures)
	if err := pdfimages.WriteReport(deps.Stdout, res.Images); err != nil {
		return err
	}
	for _, rec := range res.Images {
		if rec.Failure != nil {
			fmt.Fprintf(deps.Stdout, "Page %d, image %d: %s\n", rec.Failure.Page, rec.Failure.Index, rec.Failure.Error)
		}
	}
	return nil
}

// documentsFailed returns an error when any document could not be read.
func documentsFailed(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d documents failed", failed, total)
}
