package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tsawler/pdfimages"
	"github.com/tsawler/pdfimages/gallery"
)

// saveResult is the outcome of saving one document.
type saveResult struct {
	document string
	saved    []pdfimages.SavedImage
	records  []pdfimages.Record
	err      error
}

// Run executes the save command.
func (c *SaveCmd) Run(deps *Dependencies) error {
	results := forEachDocument(deps.Ctx, deps.Jobs, c.Files, func(_ context.Context, path string) saveResult {
		ext := pdfimages.Open(path).
			Pages(c.Pages...).
			Thresholds(deps.Thresholds).
			Logger(deps.Logger)

		saved, err := ext.Save(c.Out)
		res := saveResult{document: path, saved: saved, err: err}
		if err != nil || !c.Index {
			return res
		}

		// Descriptions for the gallery come from a separate extraction pass.
		res.records, err = ext.Images()
		if err != nil {
			deps.Logger.Warn("no descriptions for gallery", "path", path, "error", err)
		}
		return res
	})

	var failed int
	var entries []gallery.Entry
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "%s: %s\n", res.document, res.err)
			continue
		}
		for _, s := range res.saved {
			fmt.Fprintln(deps.Stdout, s.Path)
		}
		entries = append(entries, galleryEntries(res, len(c.Files) > 1)...)
	}

	if c.Index {
		path, err := gallery.Write(c.Out, galleryTitle(c.Files), entries)
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, path)
	}

	return documentsFailed(failed, len(results))
}

// galleryEntries joins saved files with the descriptions of the matching
// image records.
func galleryEntries(res saveResult, showDocument bool) []gallery.Entry {
	type key struct{ page, index int }
	described := make(map[key]*pdfimages.ImageRecord)
	for _, rec := range res.records {
		if rec.Image != nil {
			described[key{rec.Image.Page, rec.Image.Index}] = rec.Image
		}
	}

	entries := make([]gallery.Entry, 0, len(res.saved))
	for _, s := range res.saved {
		e := gallery.Entry{
			Path:     s.Path,
			Page:     s.Page,
			Index:    s.Index,
			Format:   s.Format,
			FileSize: s.FileSize,
		}
		if showDocument {
			e.Document = filepath.Base(res.document)
		}
		if img, ok := described[key{s.Page, s.Index}]; ok {
			e.Width = img.Width
			e.Height = img.Height
			e.Description = img.Description
		}
		entries = append(entries, e)
	}
	return entries
}

func galleryTitle(files []string) string {
	if len(files) == 1 {
		return "Images from " + filepath.Base(files[0])
	}
	return "Extracted images"
}
