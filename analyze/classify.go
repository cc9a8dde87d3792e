package analyze

import (
	"fmt"
	"image"
)

// ContentType is the coarse content class of an image.
type ContentType string

const (
	// ContentChart marks images dominated by near-black and near-white
	// pixels, typical of text, line art and diagrams.
	ContentChart ContentType = "chart/diagram/text"
	// ContentPhoto marks images with a broad midtone distribution.
	ContentPhoto ContentType = "photograph/illustration"
	// ContentUnknown is returned when the image cannot be analyzed.
	ContentUnknown ContentType = "unknown"
)

// String returns the content type label.
func (c ContentType) String() string {
	return string(c)
}

// Histogram counts pixels per 8-bit gray level.
type Histogram [256]int

// Total returns the number of pixels counted.
func (h *Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Band sums the counts of levels in [lo, hi).
func (h *Histogram) Band(lo, hi int) int {
	lo = max(lo, 0)
	hi = min(hi, len(h))
	sum := 0
	for i := lo; i < hi; i++ {
		sum += h[i]
	}
	return sum
}

// GrayHistogram converts img to grayscale and counts pixels per level.
func GrayHistogram(img image.Image) (*Histogram, error) {
	gray, err := ToGray(img)
	if err != nil {
		return nil, err
	}

	var hist Histogram
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y):gray.PixOffset(b.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}
	return &hist, nil
}

// ClassifyHistogram applies the contrast rule to a histogram: when the
// share of pixels below th.DarkLimit or at or above th.LightStart exceeds
// th.ContrastRatio the content is a chart, otherwise a photograph.
func ClassifyHistogram(hist *Histogram, th Thresholds) ContentType {
	if hist == nil {
		return ContentUnknown
	}
	th = th.WithDefaults()

	total := hist.Total()
	if total == 0 {
		return ContentUnknown
	}

	dark := hist.Band(0, th.DarkLimit)
	light := hist.Band(th.LightStart, len(hist))
	contrastRatio := float64(dark+light) / float64(total)

	if contrastRatio > th.ContrastRatio {
		return ContentChart
	}
	return ContentPhoto
}

// ClassifyContent classifies img by its grayscale contrast. It returns
// ContentUnknown instead of failing.
func ClassifyContent(img image.Image, th Thresholds) (ct ContentType) {
	defer func() {
		if recover() != nil {
			ct = ContentUnknown
		}
	}()

	hist, err := GrayHistogram(img)
	if err != nil {
		return ContentUnknown
	}
	return ClassifyHistogram(hist, th)
}

// Analysis bundles the description and content class of one image.
type Analysis struct {
	Description string
	Content     ContentType
}

// Analyze describes img and classifies its content in one call.
func Analyze(img image.Image, th Thresholds) Analysis {
	var width, height int
	if img != nil {
		b := img.Bounds()
		width, height = b.Dx(), b.Dy()
	}
	return Analysis{
		Description: Describe(img, width, height, th),
		Content:     ClassifyContent(img, th),
	}
}

// String formats the analysis on one line.
func (a Analysis) String() string {
	return fmt.Sprintf("%s [%s]", a.Description, a.Content)
}
