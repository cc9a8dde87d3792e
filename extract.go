package pdfimages

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/tsawler/pdfimages/analyze"
	"github.com/tsawler/pdfimages/format"
	"github.com/tsawler/pdfimages/pages"
	"github.com/tsawler/pdfimages/reader"
)

// Extract lists every image on the selected pages of the PDF at path, in
// page order and then in resource order within a page. Each entry yields an
// ImageRecord, or an ErrorRecord when its bytes cannot be fetched or
// decoded; one bad image never stops the others.
//
// The error is a *DocumentError, returned only when the document itself
// cannot be read.
func Extract(path string, opts ...Option) ([]Record, error) {
	return extract(path, newOptions(opts))
}

// Persist writes the raw bytes of every image on the selected pages into
// outputDir as <stem>_page<N>_img<M>.<ext>, creating the directory when
// needed, and returns the paths written. Images that cannot be fetched or
// written are logged and skipped.
//
// A *DocumentError is returned when the document cannot be read.
func Persist(path, outputDir string, opts ...Option) ([]string, error) {
	saved, err := persist(path, outputDir, newOptions(opts))
	paths := make([]string, len(saved))
	for i, s := range saved {
		paths[i] = s.Path
	}
	return paths, err
}

// SavedImage describes one file written by Persist.
type SavedImage struct {
	Path      string `json:"path"`
	Page      int    `json:"page"`
	Index     int    `json:"index"`
	Format    string `json:"format"`
	FileSize  int    `json:"file_size"`
	SourceRef string `json:"source_ref"`
}

// imageEntry is one image found while walking a document.
type imageEntry struct {
	page  int // 1-based
	index int // 1-based within the page
	ref   reader.ImageRef
}

// document is an open PDF with its selected pages.
type document struct {
	r     *reader.Reader
	pages []*pages.Page
}

// openDocument opens path and loads its page tree. The caller closes the
// reader.
func openDocument(path string, o options) (*document, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, &DocumentError{Path: path, Err: err}
	}

	all, err := r.Pages()
	if err != nil {
		r.Close()
		return nil, &DocumentError{Path: path, Err: err}
	}
	if r.Rebuilt() {
		o.logger.Warn("cross-reference table rebuilt", "path", path)
	}

	return &document{r: r, pages: selectPages(all, o.pages)}, nil
}

// selectPages keeps the requested 1-based page numbers in document order.
// Numbers outside the document are ignored.
func selectPages(all []*pages.Page, wanted []int) []*pages.Page {
	if len(wanted) == 0 {
		return all
	}

	keep := make(map[int]bool, len(wanted))
	for _, n := range wanted {
		keep[n] = true
	}

	selected := make([]*pages.Page, 0, len(wanted))
	for _, p := range all {
		if keep[p.Number()] {
			selected = append(selected, p)
		}
	}
	return selected
}

// walk calls fn for each image entry of the selected pages. A page whose
// resources cannot be read contributes no entries.
func (d *document) walk(o options, fn func(imageEntry)) {
	for _, page := range d.pages {
		refs, err := d.r.PageImageRefs(page)
		if err != nil {
			o.logger.Warn("skipping page", "page", page.Number(), "error", err)
			continue
		}
		for i, ref := range refs {
			fn(imageEntry{page: page.Number(), index: i + 1, ref: ref})
		}
	}
}

func (d *document) close() {
	d.r.Close()
}

func extract(path string, o options) ([]Record, error) {
	doc, err := openDocument(path, o)
	if err != nil {
		return nil, err
	}
	defer doc.close()

	records := make([]Record, 0)
	doc.walk(o, func(e imageEntry) {
		rec, err := recovered(func() (*ImageRecord, error) { return buildRecord(doc.r, e, o) })
		if err != nil {
			o.logger.Warn("image extraction failed",
				"page", e.page, "index", e.index, "ref", e.ref.SourceRef(), "error", err)
			records = append(records, Record{Failure: newErrorRecord(e.page, e.index, err)})
			return
		}
		records = append(records, Record{Image: rec})
	})

	return records, nil
}

// recovered calls fn and turns a panic into an error, so that a malformed
// image cannot take the rest of the document down with it.
func recovered[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return fn()
}

// buildRecord fetches, decodes and describes one image.
func buildRecord(r *reader.Reader, e imageEntry, o options) (*ImageRecord, error) {
	raw, err := r.RawImage(e.ref)
	if err != nil {
		return nil, err
	}
	if !raw.Format.Decodable() {
		return nil, fmt.Errorf("%s: %w", raw.Ext(), format.ErrUnsupported)
	}

	img, _, err := DecodeImage(raw.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw.Ext(), err)
	}

	b := img.Bounds()
	rec := &ImageRecord{
		Page:             e.page,
		Index:            e.index,
		Format:           raw.Ext(),
		Width:            b.Dx(),
		Height:           b.Dy(),
		FileSize:         len(raw.Data),
		Description:      analyze.Describe(img, b.Dx(), b.Dy(), o.thresholds),
		SourceRef:        e.ref.SourceRef(),
		Name:             e.ref.Name,
		ColorSpace:       raw.ColorSpace,
		BitsPerComponent: raw.BitsPerComponent,
		Checksum:         fmt.Sprintf("%016x", xxhash.Sum64(raw.Data)),
	}
	if o.classify {
		rec.ContentType = analyze.ClassifyContent(img, o.thresholds).String()
	}

	return rec, nil
}

func persist(path, outputDir string, o options) ([]SavedImage, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	doc, err := openDocument(path, o)
	if err != nil {
		return nil, err
	}
	defer doc.close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var saved []SavedImage
	doc.walk(o, func(e imageEntry) {
		raw, err := recovered(func() (*reader.RawImage, error) { return doc.r.RawImage(e.ref) })
		if err != nil {
			o.logger.Warn("skipping image", "page", e.page, "index", e.index, "error", err)
			return
		}

		filename := fmt.Sprintf("%s_page%d_img%d.%s", stem, e.page, e.index, raw.Ext())
		target := filepath.Join(outputDir, filename)
		if err := os.WriteFile(target, raw.Data, 0o644); err != nil {
			o.logger.Warn("failed to write image", "path", target, "error", err)
			return
		}
		o.logger.Debug("saved image", "path", target, "bytes", len(raw.Data))

		saved = append(saved, SavedImage{
			Path:      target,
			Page:      e.page,
			Index:     e.index,
			Format:    raw.Ext(),
			FileSize:  len(raw.Data),
			SourceRef: e.ref.SourceRef(),
		})
	})

	return saved, nil
}
