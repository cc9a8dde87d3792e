// Package filters implements the PDF stream filters that precede image
// samples: FlateDecode and LZWDecode (with TIFF and PNG predictors),
// ASCIIHexDecode, ASCII85Decode, RunLengthDecode and CCITTFaxDecode.
//
// Most callers go through Decode, which takes the filter name as it
// appears in /Filter, abbreviated inline image names included:
//
//	p := filters.DefaultParams()
//	p.Predictor, p.Columns, p.Colors = 12, 100, 3
//	decoded, err := filters.Decode("FlateDecode", data, p)
//
// The image codecs DCTDecode, JPXDecode and JBIG2Decode are not decoded
// here. Decode passes them through and Codec names them, so callers can
// hand the payload to an image decoder as is.
package filters
