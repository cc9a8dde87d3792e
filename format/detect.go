// Package format identifies raster image formats, either from the PDF filter
// that encodes an image stream or from the leading bytes of encoded data.
package format

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
)

// ErrUnsupported is returned when a format is recognized but cannot be
// decoded to pixels by this module.
var ErrUnsupported = errors.New("unsupported image format")

// Format represents a raster image encoding.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// JPEG is baseline or progressive JPEG (PDF DCTDecode).
	JPEG
	// PNG is used for images re-encoded from raw PDF samples.
	PNG
	// JPX is JPEG 2000 (PDF JPXDecode).
	JPX
	// JBIG2 is a JBIG2 embedded stream (PDF JBIG2Decode).
	JBIG2
	TIFF
	GIF
	BMP
	WEBP
)

type descriptor struct {
	name      string
	ext       string   // canonical extension tag
	aliases   []string // other file extensions
	filters   []string // PDF codec filters
	magic     [][]byte
	decodable bool
}

var descriptors = map[Format]descriptor{
	JPEG: {
		name: "JPEG", ext: "jpeg", aliases: []string{"jpg", "jpe"},
		filters:   []string{"DCTDecode", "DCT"},
		magic:     [][]byte{{0xFF, 0xD8, 0xFF}},
		decodable: true,
	},
	PNG: {
		name: "PNG", ext: "png",
		magic:     [][]byte{[]byte("\x89PNG\r\n\x1a\n")},
		decodable: true,
	},
	JPX: {
		name: "JPX", ext: "jpx", aliases: []string{"jp2", "j2k"},
		filters: []string{"JPXDecode"},
		// JP2 signature box, or a bare codestream starting SOC SIZ
		magic: [][]byte{{0x00, 0x00, 0x00, 0x0C, 'j', 'P', ' ', ' '}, {0xFF, 0x4F, 0xFF, 0x51}},
	},
	JBIG2: {
		name: "JBIG2", ext: "jb2", aliases: []string{"jbig2"},
		filters: []string{"JBIG2Decode"},
		magic:   [][]byte{[]byte("\x97JB2\r\n\x1a\n")},
	},
	TIFF: {
		name: "TIFF", ext: "tiff", aliases: []string{"tif"},
		magic:     [][]byte{[]byte("II*\x00"), []byte("MM\x00*")},
		decodable: true,
	},
	GIF: {
		name: "GIF", ext: "gif",
		magic:     [][]byte{[]byte("GIF87a"), []byte("GIF89a")},
		decodable: true,
	},
	BMP:  {name: "BMP", ext: "bmp", magic: [][]byte{[]byte("BM")}, decodable: true},
	WEBP: {name: "WEBP", ext: "webp", decodable: true},
}

// detectOrder is the order DetectFromMagic tries signatures in. BMP goes
// last since its two-byte signature is the weakest.
var detectOrder = []Format{JPEG, PNG, JPX, JBIG2, TIFF, GIF, WEBP, BMP}

// String returns the string representation of the format.
func (f Format) String() string {
	if d, ok := descriptors[f]; ok {
		return d.name
	}
	return "Unknown"
}

// Extension returns the file extension tag for the format, without a dot:
// "jpeg", "png", "jpx", "jb2" and so on. Unknown formats get "bin".
func (f Format) Extension() string {
	if d, ok := descriptors[f]; ok {
		return d.ext
	}
	return "bin"
}

// Decodable reports whether the standard image registry, with the
// golang.org/x/image decoders, can decode the format.
func (f Format) Decodable() bool {
	return descriptors[f].decodable
}

// FromFilter maps a PDF image codec filter name to a format. Filters that
// leave raw samples return Unknown.
func FromFilter(filter string) Format {
	for f, d := range descriptors {
		if slices.Contains(d.filters, filter) {
			return f
		}
	}
	return Unknown
}

// Detect determines the format from a filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return Unknown
	}
	for f, d := range descriptors {
		if d.ext == ext || slices.Contains(d.aliases, ext) {
			return f
		}
	}
	return Unknown
}

// DetectFromMagic checks leading bytes to determine the format. JBIG2
// streams embedded in PDFs carry no file header, so they are only
// recognized through FromFilter.
func DetectFromMagic(data []byte) Format {
	// WebP is a RIFF container with a form type at offset 8
	if len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP" {
		return WEBP
	}
	for _, f := range detectOrder {
		for _, sig := range descriptors[f].magic {
			if bytes.HasPrefix(data, sig) {
				return f
			}
		}
	}
	return Unknown
}
