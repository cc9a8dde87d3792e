package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes Group 3 one-dimensional (K = 0) and Group 4
// (K < 0) fax data into rows of 1-bit pixels, MSB first, where 0 is black
// unless BlackIs1 is set. Columns defaults to 1728; without Rows the height
// is taken from the data.
func CCITTFaxDecode(data []byte, p Params) ([]byte, error) {
	sf := ccitt.Group3
	switch {
	case p.K < 0:
		sf = ccitt.Group4
	case p.K > 0:
		return nil, fmt.Errorf("CCITT mixed 1-D/2-D coding (K=%d) not supported", p.K)
	}

	columns := orDefault(p.Columns, 1728)
	if columns < 1 || columns > maxColumns {
		return nil, fmt.Errorf("CCITT /Columns %d out of range", p.Columns)
	}

	rows := p.Rows
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}

	opts := &ccitt.Options{Align: p.EncodedByteAlign, Invert: p.BlackIs1}
	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, opts)

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ccitt: %w", err)
	}
	return out, nil
}
