package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tsawler/pdfimages"
	"github.com/tsawler/pdfimages/analyze"
)

// classifyResult is the analysis of one image file.
type classifyResult struct {
	path     string
	analysis analyze.Analysis
	err      error
}

// Run executes the classify command.
func (c *ClassifyCmd) Run(deps *Dependencies) error {
	results := forEachDocument(deps.Ctx, deps.Jobs, c.Files, func(_ context.Context, path string) classifyResult {
		data, err := os.ReadFile(path)
		if err != nil {
			return classifyResult{path: path, err: err}
		}
		img, f, err := pdfimages.DecodeImage(data)
		if err != nil {
			return classifyResult{path: path, err: fmt.Errorf("failed to decode image: %w", err)}
		}
		deps.Logger.Debug("decoded image", "path", path, "format", f)
		return classifyResult{path: path, analysis: analyze.Analyze(img, deps.Thresholds)}
	})

	var failed int
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "%s: %s\n", res.path, res.err)
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s: %s\n", res.path, res.analysis)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(results))
	}
	return nil
}
