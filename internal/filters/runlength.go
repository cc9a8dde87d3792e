package filters

import "fmt"

// RunLengthDecode decodes RunLengthDecode data.
//
// Each run starts with a length byte L. For L in 0..127 the next L+1 bytes are
// copied literally; for L in 129..255 the next byte is repeated 257-L times;
// L == 128 marks end of data.
func RunLengthDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)

	for i := 0; i < len(data); {
		length := int(data[i])
		i++

		switch {
		case length == 128:
			return out, nil
		case length < 128:
			end := i + length + 1
			if end > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes truncated at offset %d", length+1, i)
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("repeat run truncated at offset %d", i)
			}
			b := data[i]
			for n := 0; n < 257-length; n++ {
				out = append(out, b)
			}
			i++
		}
	}

	// Missing EOD marker is tolerated
	return out, nil
}
