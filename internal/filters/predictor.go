package filters

import "fmt"

// unpredict reverses the Predictor of p. Flate and LZW share it.
func unpredict(data []byte, p Params) ([]byte, error) {
	switch {
	case p.Predictor <= 1:
		return data, nil
	case p.Predictor == 2:
		return tiffUnpredict(data, p)
	case p.Predictor >= 10 && p.Predictor <= 15:
		return pngUnpredict(data, p)
	default:
		return nil, fmt.Errorf("unsupported predictor: %d", p.Predictor)
	}
}

// Limits on predictor parameters. PDF allows at most 32 colorants.
const (
	maxColors  = 32
	maxColumns = 1 << 24
)

// layout returns the bytes per pixel (at least 1) and bytes per row of the
// predicted samples.
func layout(p Params) (bpp, stride int, err error) {
	colors := orDefault(p.Colors, 1)
	bpc := orDefault(p.BitsPerComponent, 8)
	columns := orDefault(p.Columns, 1)

	if colors < 1 || colors > maxColors {
		return 0, 0, fmt.Errorf("predictor /Colors %d out of range", p.Colors)
	}
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return 0, 0, fmt.Errorf("predictor /BitsPerComponent %d not supported", p.BitsPerComponent)
	}
	if columns < 1 || columns > maxColumns {
		return 0, 0, fmt.Errorf("predictor /Columns %d out of range", p.Columns)
	}

	bitsPerPixel := colors * bpc
	return max(1, (bitsPerPixel+7)/8), (columns*bitsPerPixel + 7) / 8, nil
}

// pngUnpredict undoes PNG row filtering. Each row carries its own filter
// type byte, so predictors 10 to 15 decode alike. A trailing partial row is
// dropped.
func pngUnpredict(data []byte, p Params) ([]byte, error) {
	bpp, stride, err := layout(p)
	if err != nil {
		return nil, err
	}
	rowLen := stride + 1
	rows := len(data) / rowLen

	out := make([]byte, rows*stride)
	prev := make([]byte, stride)
	for r := 0; r < rows; r++ {
		filter := data[r*rowLen]
		cur := out[r*stride : (r+1)*stride]
		copy(cur, data[r*rowLen+1:(r+1)*rowLen])

		switch filter {
		case 0:
		case 1:
			for i := bpp; i < stride; i++ {
				cur[i] += cur[i-bpp]
			}
		case 2:
			for i := range cur {
				cur[i] += prev[i]
			}
		case 3:
			for i := range cur {
				var left int
				if i >= bpp {
					left = int(cur[i-bpp])
				}
				cur[i] += byte((left + int(prev[i])) / 2)
			}
		case 4:
			for i := range cur {
				var left, upLeft byte
				if i >= bpp {
					left, upLeft = cur[i-bpp], prev[i-bpp]
				}
				cur[i] += paeth(left, prev[i], upLeft)
			}
		default:
			return nil, fmt.Errorf("row %d: unknown PNG filter type %d", r, filter)
		}
		prev = cur
	}

	return out, nil
}

// paeth picks whichever of left, up and upper-left is closest to
// left + up - upLeft, preferring them in that order on ties.
func paeth(left, up, upLeft byte) byte {
	p := int(left) + int(up) - int(upLeft)
	pa, pb, pc := absInt(p-int(left)), absInt(p-int(up)), absInt(p-int(upLeft))
	switch {
	case pa <= pb && pa <= pc:
		return left
	case pb <= pc:
		return up
	default:
		return upLeft
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// tiffUnpredict undoes TIFF predictor 2 (horizontal differencing) for 8 and
// 16 bit samples.
func tiffUnpredict(data []byte, p Params) ([]byte, error) {
	_, stride, err := layout(p)
	if err != nil {
		return nil, err
	}
	colors := orDefault(p.Colors, 1)
	bpc := orDefault(p.BitsPerComponent, 8)

	out := make([]byte, len(data)-len(data)%stride)
	copy(out, data)

	for start := 0; start < len(out); start += stride {
		row := out[start : start+stride]
		switch bpc {
		case 8:
			for i := colors; i < len(row); i++ {
				row[i] += row[i-colors]
			}
		case 16:
			step := 2 * colors
			for i := step; i+1 < len(row); i += 2 {
				v := uint16(row[i])<<8 | uint16(row[i+1])
				left := uint16(row[i-step])<<8 | uint16(row[i-step+1])
				v += left
				row[i], row[i+1] = byte(v>>8), byte(v)
			}
		default:
			return nil, fmt.Errorf("TIFF predictor with %d bits per component not supported", bpc)
		}
	}

	return out, nil
}
