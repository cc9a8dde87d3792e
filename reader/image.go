package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Sanity limits on image geometry. PDF allows at most 32 colorants.
const (
	maxDimension  = 1 << 20
	maxComponents = 32
)

// PageImage holds the decoded samples of a PDF image XObject together with
// the attributes needed to turn them into pixels.
type PageImage struct {
	Name             string // XObject name (e.g., "Im1")
	Width            int
	Height           int
	ColorSpace       string // DeviceGray, DeviceRGB, DeviceCMYK, Indexed, ICCBased, ...
	Components       int    // samples per pixel; derived from ColorSpace when zero
	BitsPerComponent int
	Palette          color.Palette // Indexed color spaces only
	Invert           bool          // single-component samples run from white to black
	Data             []byte        // Decoded sample data
	Filter           string        // Original filter (for format detection)
}

// ToPNG converts the decoded sample data to PNG format.
func (img *PageImage) ToPNG() ([]byte, error) {
	goImg, err := img.Image()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, goImg); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// Image converts the decoded sample data to an image.Image. Gray samples
// give an *image.Gray, Indexed samples an *image.Paletted and RGB or CMYK
// samples an *image.RGBA.
func (img *PageImage) Image() (image.Image, error) {
	if img.Width <= 0 || img.Height <= 0 || img.Width > maxDimension || img.Height > maxDimension {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", img.Width, img.Height)
	}
	switch img.BitsPerComponent {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", img.BitsPerComponent)
	}

	comps := img.components()
	if img.Palette != nil {
		comps = 1
	}
	// Check the length before allocating; dimensions come from the file
	stride, err := img.stride(comps)
	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, img.Width, img.Height)
	bpc := img.BitsPerComponent

	if img.Palette != nil {
		if len(img.Palette) == 0 {
			return nil, fmt.Errorf("empty palette")
		}
		out := image.NewPaletted(rect, img.Palette)
		last := len(img.Palette) - 1
		img.walk(stride, 1, func(x, y int, s []int) {
			out.SetColorIndex(x, y, uint8(min(s[0], last)))
		})
		return out, nil
	}

	switch comps {
	case 1:
		out := image.NewGray(rect)
		img.walk(stride, 1, func(x, y int, s []int) {
			v := scaleTo8(s[0], bpc)
			if img.Invert {
				v = 255 - v
			}
			out.SetGray(x, y, color.Gray{Y: v})
		})
		return out, nil
	case 3, 4:
		out := image.NewRGBA(rect)
		img.walk(stride, comps, func(x, y int, s []int) {
			r, g, b := scaleTo8(s[0], bpc), scaleTo8(s[1], bpc), scaleTo8(s[2], bpc)
			if comps == 4 {
				r, g, b = color.CMYKToRGB(r, g, b, scaleTo8(s[3], bpc))
			}
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		})
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported color space %s with %d components", img.ColorSpace, comps)
	}
}

func (img *PageImage) components() int {
	if img.Components > 0 {
		return img.Components
	}
	switch img.ColorSpace {
	case "DeviceRGB", "CalRGB", "Lab":
		return 3
	case "DeviceCMYK":
		return 4
	default:
		return 1
	}
}

// stride returns the length of one row. Rows are packed most significant
// bit first and padded to a whole byte. Dimensions are bounded by
// maxDimension and comps by maxComponents, so the row length cannot
// overflow; the row count is checked by division.
func (img *PageImage) stride(comps int) (int, error) {
	if comps < 1 || comps > maxComponents {
		return 0, fmt.Errorf("unsupported color space %s with %d components", img.ColorSpace, comps)
	}
	stride := (img.Width*comps*img.BitsPerComponent + 7) / 8
	if len(img.Data)/stride < img.Height {
		return 0, fmt.Errorf("insufficient data: got %d bytes for %d rows of %d", len(img.Data), img.Height, stride)
	}
	return stride, nil
}

// walk calls fn with the raw samples of every pixel in row-major order.
// The slice passed to fn is reused between calls.
func (img *PageImage) walk(stride, comps int, fn func(x, y int, s []int)) {
	bpc := img.BitsPerComponent
	px := make([]int, comps)
	for y := range img.Height {
		row := img.Data[y*stride : (y+1)*stride]
		for x := range img.Width {
			for c := range px {
				px[c] = sampleAt(row, x*comps+c, bpc)
			}
			fn(x, y, px)
		}
	}
}

// sampleAt returns sample i of a row packed at bpc bits per sample.
func sampleAt(row []byte, i, bpc int) int {
	switch bpc {
	case 8:
		return int(row[i])
	case 16:
		return int(row[2*i])<<8 | int(row[2*i+1])
	}
	bit := i * bpc
	shift := 8 - bpc - bit%8
	return int(row[bit/8]>>shift) & (1<<bpc - 1)
}

// scaleTo8 maps a bpc-bit sample onto 0-255.
func scaleTo8(v, bpc int) uint8 {
	switch bpc {
	case 8:
		return uint8(v)
	case 16:
		return uint8(v >> 8)
	}
	return uint8(v * 255 / (1<<bpc - 1))
}
