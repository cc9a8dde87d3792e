package pdfimages

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ByPage groups the image records by page number. Failures are left out.
func ByPage(records []Record) map[int][]ImageRecord {
	grouped := make(map[int][]ImageRecord)
	for _, rec := range records {
		if rec.Image == nil {
			continue
		}
		grouped[rec.Image.Page] = append(grouped[rec.Image.Page], *rec.Image)
	}
	return grouped
}

// Summary counts the outcome of an extraction.
type Summary struct {
	Images   int `json:"images"`
	Failures int `json:"failures"`
	Pages    int `json:"pages"` // pages with at least one record
}

// Summarize counts records by kind and the pages they come from.
func Summarize(records []Record) Summary {
	var s Summary
	seen := make(map[int]bool)
	for _, rec := range records {
		switch rec.Kind() {
		case KindImage:
			s.Images++
		case KindError:
			s.Failures++
		}
		page, _ := rec.Position()
		if !seen[page] {
			seen[page] = true
			s.Pages++
		}
	}
	return s
}

// WriteReport writes a plain text report of the image records, one section
// per page:
//
//	PAGE 1
//	--------------------
//
//	EXTRACTED IMAGES:
//	~~~~~~~~~~~~~~~~
//	Image 1:
//	  Size: 640x480
//	  Format: jpeg
//	  Description: Medium landscape ...
func WriteReport(w io.Writer, records []Record) error {
	grouped := ByPage(records)

	pageNums := make([]int, 0, len(grouped))
	for page := range grouped {
		pageNums = append(pageNums, page)
	}
	sort.Ints(pageNums)

	bw := bufio.NewWriter(w)
	for _, page := range pageNums {
		fmt.Fprintf(bw, "PAGE %d\n", page)
		fmt.Fprintf(bw, "%s\n\n", strings.Repeat("-", 20))
		fmt.Fprintln(bw, "EXTRACTED IMAGES:")
		fmt.Fprintln(bw, strings.Repeat("~", 16))
		for i, img := range grouped[page] {
			fmt.Fprintf(bw, "Image %d:\n", i+1)
			fmt.Fprintf(bw, "  Size: %s\n", img.Size())
			fmt.Fprintf(bw, "  Format: %s\n", img.Format)
			if img.Description != "" {
				fmt.Fprintf(bw, "  Description: %s\n", img.Description)
			}
			if img.ContentType != "" {
				fmt.Fprintf(bw, "  Content: %s\n", img.ContentType)
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}
