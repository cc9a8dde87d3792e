package analyze

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Content hints appended to descriptions.
const (
	HintChart = "possibly a chart, diagram, or logo"
	HintPhoto = "photographic or complex image"
)

// FailurePrefix starts every description produced when analysis fails.
const FailurePrefix = "Image analysis failed: "

var titleCaser = cases.Title(language.English)

// SizeCategory classifies a pixel count as "small", "medium" or "large".
func SizeCategory(width, height int, th Thresholds) string {
	th = th.WithDefaults()
	totalPixels := width * height
	switch {
	case totalPixels < th.SmallArea:
		return "small"
	case totalPixels < th.MediumArea:
		return "medium"
	default:
		return "large"
	}
}

// Orientation classifies an aspect ratio as "landscape", "portrait" or
// "square". height must be positive.
func Orientation(width, height int, th Thresholds) string {
	th = th.WithDefaults()
	aspectRatio := float64(width) / float64(height)
	switch {
	case aspectRatio > th.LandscapeRatio:
		return "landscape"
	case aspectRatio < th.PortraitRatio:
		return "portrait"
	default:
		return "square"
	}
}

// Describe returns a one-line description of img, whose pixel dimensions
// are width by height:
//
//	<Size> <orientation> <hint> (<w>x<h> pixels) <color phrase>
//
// The hint is left out when the grayscale pass fails. Any other failure
// yields "Image analysis failed: <reason>".
func Describe(img image.Image, width, height int, th Thresholds) (desc string) {
	defer func() {
		if r := recover(); r != nil {
			desc = fmt.Sprintf("%s%v", FailurePrefix, r)
		}
	}()

	if img == nil {
		return FailurePrefix + "no image data"
	}
	if width <= 0 || height <= 0 {
		return fmt.Sprintf("%sinvalid dimensions %dx%d", FailurePrefix, width, height)
	}
	th = th.WithDefaults()

	parts := []string{
		titleCaser.String(SizeCategory(width, height, th)),
		Orientation(width, height, th),
	}

	if levels, ok := grayLevels(img, th.PaletteCap); ok {
		if levels < th.ChartGrayLevels {
			parts = append(parts, HintChart)
		} else {
			parts = append(parts, HintPhoto)
		}
	}

	parts = append(parts, fmt.Sprintf("(%dx%d pixels)", width, height))

	if n, ok := CountColors(img, th.PaletteCap); ok {
		parts = append(parts, fmt.Sprintf("with %d dominant colors", n))
	} else {
		parts = append(parts, "with complex color palette")
	}

	return strings.Join(parts, " ")
}

// CountColors counts the distinct colors of img. It reports false when the
// count exceeds limit or the image cannot be sampled.
func CountColors(img image.Image, limit int) (n int, ok bool) {
	defer func() {
		if recover() != nil {
			n, ok = 0, false
		}
	}()

	if img == nil {
		return 0, false
	}
	b := img.Bounds()
	if b.Empty() {
		return 0, false
	}

	if gray, isGray := img.(*image.Gray); isGray {
		return countGray(gray, limit)
	}

	seen := make(map[uint64]struct{}, limit+1)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			seen[colorKey(img.At(x, y))] = struct{}{}
			if len(seen) > limit {
				return 0, false
			}
		}
	}
	return len(seen), true
}

func colorKey(c color.Color) uint64 {
	r, g, b, a := c.RGBA()
	return uint64(r)<<48 | uint64(g)<<32 | uint64(b)<<16 | uint64(a)
}

func countGray(gray *image.Gray, limit int) (int, bool) {
	var levels [256]bool
	n := 0
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y):gray.PixOffset(b.Max.X, y)]
		for _, v := range row {
			if !levels[v] {
				levels[v] = true
				n++
				if n > limit {
					return 0, false
				}
			}
		}
	}
	return n, true
}

// grayLevels converts img to grayscale and counts its distinct levels.
func grayLevels(img image.Image, limit int) (n int, ok bool) {
	defer func() {
		if recover() != nil {
			n, ok = 0, false
		}
	}()

	gray, err := ToGray(img)
	if err != nil {
		return 0, false
	}
	return countGray(gray, limit)
}

// ToGray converts img to 8-bit grayscale using the luma weights of
// color.GrayModel.
func ToGray(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("no image data")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if gray, ok := img.(*image.Gray); ok {
		return gray, nil
	}

	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray, nil
}
