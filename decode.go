package pdfimages

import (
	"bytes"
	"fmt"
	"image"

	// Decoders for the formats images are extracted as, plus the
	// x/image formats accepted by DecodeImage.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/pdfimages/format"
)

// DecodeImage decodes encoded image bytes with the registered decoders.
// JPEG 2000 and JBIG2 data is reported as format.ErrUnsupported.
func DecodeImage(data []byte) (image.Image, format.Format, error) {
	f := format.DetectFromMagic(data)
	if f != format.Unknown && !f.Decodable() {
		return nil, f, fmt.Errorf("%s: %w", f.Extension(), format.ErrUnsupported)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, f, err
	}
	return img, f, nil
}
