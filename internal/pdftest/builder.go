// Package pdftest builds small PDF documents for tests. Objects are added in
// order and the cross-reference table is computed when the document is
// serialized, so offsets are always exact.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Builder accumulates numbered objects.
type Builder struct {
	objects map[int][]byte
	next    int
}

// New returns an empty builder. Object numbers start at 1.
func New() *Builder {
	return &Builder{objects: make(map[int][]byte), next: 1}
}

// Reserve allocates an object number to be filled in later with Set.
func (b *Builder) Reserve() int {
	n := b.next
	b.next++
	return n
}

// Set stores the body of object n, the text between "n 0 obj" and "endobj".
func (b *Builder) Set(n int, body string) {
	b.objects[n] = []byte(body)
}

// Add stores a new object and returns its number.
func (b *Builder) Add(body string) int {
	n := b.Reserve()
	b.Set(n, body)
	return n
}

// AddStream stores a stream object. dict is the dictionary content without
// the << >> delimiters or /Length.
func (b *Builder) AddStream(dict string, data []byte) int {
	n := b.Reserve()
	b.SetStream(n, dict, data)
	return n
}

// SetStream stores a stream object under a reserved number.
func (b *Builder) SetStream(n int, dict string, data []byte) {
	var body bytes.Buffer
	fmt.Fprintf(&body, "<< %s /Length %d >>\nstream\n", dict, len(data))
	body.Write(data)
	body.WriteString("\nendstream")
	b.objects[n] = body.Bytes()
}

// AddImage stores an image XObject with the given extra dictionary entries.
func (b *Builder) AddImage(width, height int, dict string, data []byte) int {
	return b.AddStream(fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d %s", width, height, dict), data)
}

// AddGrayImage stores an 8-bit DeviceGray image compressed with FlateDecode.
func (b *Builder) AddGrayImage(width, height int, pix []byte) int {
	return b.AddImage(width, height, "/ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode", Deflate(pix))
}

// AddJPEGImage stores JPEG data as a DCTDecode image.
func (b *Builder) AddJPEGImage(width, height int, jpegData []byte) int {
	return b.AddImage(width, height, "/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode", jpegData)
}

// Page lists the XObject resources of one page by name.
type Page map[string]int

// Pages adds a page tree with one page per argument and a catalog, and
// returns the catalog's object number.
func (b *Builder) Pages(pages ...Page) int {
	tree := b.Reserve()

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		kid := b.Add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /XObject %s >> >>", tree, XObjectDict(p)))
		kids = append(kids, fmt.Sprintf("%d 0 R", kid))
	}

	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	return b.Add(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
}

// XObjectDict renders an XObject resource dictionary with names sorted.
func XObjectDict(p Page) string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("<<")
	for _, name := range names {
		fmt.Fprintf(&sb, " /%s %d 0 R", name, p[name])
	}
	sb.WriteString(" >>")
	return sb.String()
}

// Bytes serializes the document with a classic xref table and a trailer
// whose /Root is root.
func (b *Builder) Bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	size := b.next
	offsets := make([]int, size)
	for n := 1; n < size; n++ {
		body, ok := b.objects[n]
		if !ok {
			continue
		}
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", n)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n < size; n++ {
		if _, ok := b.objects[n]; !ok {
			buf.WriteString("0000000000 65535 f \n")
			continue
		}
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, root, xref)

	return buf.Bytes()
}

// WriteFile writes the document to name inside a fresh temporary directory
// and returns the path.
func (b *Builder) WriteFile(t testing.TB, name string, root int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, b.Bytes(root), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Deflate compresses data with zlib, as FlateDecode expects.
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}
