package filters

import (
	"bytes"
	stdlzw "compress/lzw"
	"fmt"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// LZWDecode decompresses LZW data and reverses any predictor.
//
// With EarlyChange 1, the PDF default, the code width grows one entry
// early. TIFF's LZW has the same quirk, so golang.org/x/image/tiff/lzw
// reads it. EarlyChange 0 is the plain variant of compress/lzw.
func LZWDecode(data []byte, p Params) ([]byte, error) {
	var rc io.ReadCloser
	if p.EarlyChange == 0 {
		rc = stdlzw.NewReader(bytes.NewReader(data), stdlzw.MSB, 8)
	} else {
		rc = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	}
	defer rc.Close()

	decoded, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("lzw decompression failed: %w", err)
	}

	return unpredict(decoded, p)
}
