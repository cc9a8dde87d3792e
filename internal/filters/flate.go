package filters

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and reverses any predictor. Streams with a
// missing or broken zlib header are retried as raw deflate, and a stream
// cut short keeps whatever was inflated before the break.
func FlateDecode(data []byte, p Params) ([]byte, error) {
	out, err := inflate(data)
	if err != nil {
		return nil, err
	}
	return unpredict(out, p)
}

func inflate(data []byte) ([]byte, error) {
	var rc io.ReadCloser
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		rc = flate.NewReader(bytes.NewReader(data))
	} else {
		rc = zr
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		truncated := errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, zlib.ErrChecksum)
		if truncated && len(out) > 0 {
			return out, nil
		}
		return nil, fmt.Errorf("flate decompression failed: %w", err)
	}
	return out, nil
}
