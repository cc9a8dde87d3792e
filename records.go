package pdfimages

import (
	"encoding/json"
	"fmt"
)

// ErrorPrefix starts the message of every ErrorRecord.
const ErrorPrefix = "Failed to extract image: "

// ImageRecord describes one successfully extracted image.
type ImageRecord struct {
	Page             int    `json:"page"`  // 1-based page number
	Index            int    `json:"index"` // 1-based position on the page
	Format           string `json:"format"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	FileSize         int    `json:"file_size"` // length of the encoded bytes
	Description      string `json:"description"`
	SourceRef        string `json:"source_ref"`
	Name             string `json:"name"`
	ColorSpace       string `json:"color_space,omitempty"`
	BitsPerComponent int    `json:"bits_per_component,omitempty"`
	Checksum         string `json:"checksum"` // xxhash64 of the encoded bytes, hex
	ContentType      string `json:"content_type,omitempty"`
}

// Size returns the pixel dimensions as "WxH".
func (r ImageRecord) Size() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ErrorRecord marks an image entry that could not be extracted.
type ErrorRecord struct {
	Page  int    `json:"page"`
	Index int    `json:"index"`
	Error string `json:"error"`
}

func newErrorRecord(page, index int, err error) *ErrorRecord {
	return &ErrorRecord{
		Page:  page,
		Index: index,
		Error: ErrorPrefix + err.Error(),
	}
}

// RecordKind tells which half of a Record is set.
type RecordKind int

const (
	// KindImage marks a Record holding an ImageRecord.
	KindImage RecordKind = iota
	// KindError marks a Record holding an ErrorRecord.
	KindError
)

// String returns the kind name.
func (k RecordKind) String() string {
	if k == KindError {
		return "error"
	}
	return "image"
}

// Record is the result for one discovered image entry. Exactly one of Image
// and Failure is non-nil.
type Record struct {
	Image   *ImageRecord
	Failure *ErrorRecord
}

// Kind reports whether the record holds an image or a failure.
func (r Record) Kind() RecordKind {
	if r.Failure != nil {
		return KindError
	}
	return KindImage
}

// Position returns the record's 1-based page and index.
func (r Record) Position() (page, index int) {
	if r.Failure != nil {
		return r.Failure.Page, r.Failure.Index
	}
	if r.Image != nil {
		return r.Image.Page, r.Image.Index
	}
	return 0, 0
}

// MarshalJSON encodes whichever half of the record is set.
func (r Record) MarshalJSON() ([]byte, error) {
	switch {
	case r.Failure != nil:
		return json.Marshal(r.Failure)
	case r.Image != nil:
		return json.Marshal(r.Image)
	default:
		return []byte("null"), nil
	}
}

// DocumentError is returned when a document cannot be opened or its page
// tree cannot be read.
type DocumentError struct {
	Path string
	Err  error
}

// Error returns "image extraction failed: <reason>".
func (e *DocumentError) Error() string {
	return "image extraction failed: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *DocumentError) Unwrap() error {
	return e.Err
}
