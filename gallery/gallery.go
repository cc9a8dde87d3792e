// Package gallery writes an HTML index for a directory of extracted images.
package gallery

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IndexFile is the name of the page written by Write.
const IndexFile = "index.html"

// Entry is one image shown in the gallery.
type Entry struct {
	Path        string // file path, absolute or relative to the gallery directory
	Document    string // source document, shown in the page heading when set
	Page        int
	Index       int
	Format      string
	Width       int
	Height      int
	FileSize    int
	Description string
}

// Write renders index.html into dir with one figure per entry, grouped under
// a heading per document page in the order given. It returns the path of the
// page.
func Write(dir string, title string, entries []Entry) (string, error) {
	doc := render(dir, title, entries)

	path := filepath.Join(dir, IndexFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create gallery: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := html.Render(w, doc); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to render gallery: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write gallery: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write gallery: %w", err)
	}

	return path, nil
}

const stylesheet = `body{font-family:sans-serif;margin:2em}
figure{display:inline-block;margin:1em;max-width:320px;vertical-align:top}
img{max-width:100%;border:1px solid #ccc}
figcaption{font-size:0.85em;color:#444}`

// render builds the document tree.
func render(dir, title string, entries []Entry) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(withText(element(atom.Title), title))
	head.AppendChild(withText(element(atom.Style), stylesheet))
	root.AppendChild(head)

	body := element(atom.Body)
	body.AppendChild(withText(element(atom.H1), title))
	root.AppendChild(body)

	if len(entries) == 0 {
		body.AppendChild(withText(element(atom.P), "No images."))
		return doc
	}

	var section *html.Node
	var last Entry
	for _, e := range entries {
		if section == nil || e.Page != last.Page || e.Document != last.Document {
			section = pageSection(e)
			body.AppendChild(section)
		}
		section.AppendChild(figure(dir, e))
		last = e
	}

	return doc
}

// pageSection starts the group of figures for the page of e. Sections of a
// single-document gallery get a page-N anchor.
func pageSection(e Entry) *html.Node {
	if e.Document != "" {
		section := element(atom.Section)
		section.AppendChild(withText(element(atom.H2), fmt.Sprintf("%s, page %d", e.Document, e.Page)))
		return section
	}

	section := element(atom.Section, attr("id", "page-"+strconv.Itoa(e.Page)))
	section.AppendChild(withText(element(atom.H2), fmt.Sprintf("Page %d", e.Page)))
	return section
}

func figure(dir string, e Entry) *html.Node {
	src := (&url.URL{Path: relativePath(dir, e.Path)}).String()
	alt := e.Description
	if alt == "" {
		alt = fmt.Sprintf("Page %d image %d", e.Page, e.Index)
	}

	fig := element(atom.Figure)
	link := element(atom.A, attr("href", src))
	link.AppendChild(element(atom.Img, attr("src", src), attr("alt", alt), attr("loading", "lazy")))
	fig.AppendChild(link)

	caption := element(atom.Figcaption)
	caption.AppendChild(withText(element(atom.Strong), fmt.Sprintf("Page %d, image %d", e.Page, e.Index)))
	caption.AppendChild(text(" " + details(e)))
	if e.Description != "" {
		caption.AppendChild(element(atom.Br))
		caption.AppendChild(text(e.Description))
	}
	fig.AppendChild(caption)

	return fig
}

// details formats the format, pixel size and byte size of an entry.
func details(e Entry) string {
	s := e.Format
	if e.Width > 0 && e.Height > 0 {
		s += fmt.Sprintf(", %dx%d", e.Width, e.Height)
	}
	if e.FileSize > 0 {
		s += ", " + byteSize(e.FileSize)
	}
	return s
}

func byteSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// relativePath returns path relative to dir with forward slashes, or the
// base name when no relative form exists.
func relativePath(dir, path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}
