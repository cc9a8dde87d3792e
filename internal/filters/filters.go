package filters

import (
	"errors"
	"fmt"
)

// ErrUnknownFilter is returned by Decode for filter names it does not know.
var ErrUnknownFilter = errors.New("unknown filter")

// Params holds the /DecodeParms entries understood by the filters. Zero
// fields mean the entry was absent and each filter applies its own default,
// except EarlyChange, whose absent value is 1: start from DefaultParams when
// translating a dictionary.
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
	EarlyChange      int

	// CCITTFaxDecode
	K                int
	Rows             int
	BlackIs1         bool
	EncodedByteAlign bool
}

// DefaultParams returns the parameters of a stream without /DecodeParms.
func DefaultParams() Params {
	return Params{EarlyChange: 1}
}

type decodeFunc func(data []byte, p Params) ([]byte, error)

func withoutParams(fn func([]byte) ([]byte, error)) decodeFunc {
	return func(data []byte, _ Params) ([]byte, error) {
		return fn(data)
	}
}

// decoders maps full and abbreviated (inline image) filter names.
var decoders = map[string]decodeFunc{
	"FlateDecode":     FlateDecode,
	"Fl":              FlateDecode,
	"LZWDecode":       LZWDecode,
	"LZW":             LZWDecode,
	"ASCIIHexDecode":  withoutParams(ASCIIHexDecode),
	"AHx":             withoutParams(ASCIIHexDecode),
	"ASCII85Decode":   withoutParams(ASCII85Decode),
	"A85":             withoutParams(ASCII85Decode),
	"RunLengthDecode": withoutParams(RunLengthDecode),
	"RL":              withoutParams(RunLengthDecode),
	"CCITTFaxDecode":  CCITTFaxDecode,
	"CCF":             CCITTFaxDecode,
}

// Decode applies the named filter to data. Image codec filters (see Codec)
// return data unchanged.
func Decode(name string, data []byte, p Params) ([]byte, error) {
	if Codec(name) != "" {
		return data, nil
	}
	if name == "Crypt" {
		return nil, fmt.Errorf("Crypt filter not supported")
	}

	fn, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	return fn(data, p)
}

// Codec returns the canonical name of an image codec filter, or "" for a
// general purpose filter. Codec output is left to an image decoder.
func Codec(name string) string {
	switch name {
	case "DCTDecode", "DCT":
		return "DCTDecode"
	case "JPXDecode":
		return "JPXDecode"
	case "JBIG2Decode":
		return "JBIG2Decode"
	}
	return ""
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
