package filters

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/ascii85"
	"errors"
	"fmt"
	"testing"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		input   []byte
		want    []byte
		wantErr error
	}{
		{name: "hex", filter: "ASCIIHexDecode", input: []byte("414243>"), want: []byte("ABC")},
		{name: "hex abbreviated", filter: "AHx", input: []byte("41>"), want: []byte("A")},
		{name: "run length abbreviated", filter: "RL", input: []byte{254, 'z', 128}, want: []byte("zzz")},
		{name: "dct passes through", filter: "DCTDecode", input: []byte{0xFF, 0xD8}, want: []byte{0xFF, 0xD8}},
		{name: "jpx passes through", filter: "JPXDecode", input: []byte("jp2"), want: []byte("jp2")},
		{name: "unknown", filter: "BrotliDecode", input: []byte("x"), wantErr: ErrUnknownFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.filter, tt.input, DefaultParams())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%s) failed: %v", tt.filter, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeCrypt(t *testing.T) {
	if _, err := Decode("Crypt", []byte("x"), DefaultParams()); err == nil {
		t.Fatal("expected an error for Crypt")
	}
}

func TestCodec(t *testing.T) {
	tests := map[string]string{
		"DCTDecode":   "DCTDecode",
		"DCT":         "DCTDecode",
		"JPXDecode":   "JPXDecode",
		"JBIG2Decode": "JBIG2Decode",
		"FlateDecode": "",
		"Fl":          "",
	}
	for name, want := range tests {
		if got := Codec(name); got != want {
			t.Errorf("Codec(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestFlateDecode(t *testing.T) {
	original := bytes.Repeat([]byte("image row "), 50)

	got, err := FlateDecode(deflate(t, original), Params{})
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Error("decoded data doesn't match original")
	}
}

func TestFlateDecodeRawDeflate(t *testing.T) {
	original := []byte("no zlib header here")

	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	w.Write(original)
	w.Close()

	got, err := FlateDecode(buf.Bytes(), Params{})
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Errorf("got %q, want %q", got, original)
	}
}

func TestFlateDecodeTruncated(t *testing.T) {
	original := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 4096)
	encoded := deflate(t, original)

	// Drop the Adler-32 trailer; the deflate data itself is complete
	got, err := FlateDecode(encoded[:len(encoded)-4], Params{})
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Errorf("got %d bytes, want %d", len(got), len(original))
	}
}

func TestFlateDecodeGarbage(t *testing.T) {
	if _, err := FlateDecode([]byte{0xFF, 0xFF, 0xFF, 0xFF}, Params{}); err == nil {
		t.Fatal("expected an error for invalid deflate data")
	}
}

func TestFlateDecodePNGPredictor(t *testing.T) {
	// Rows filtered with None/Sub, Up, Average and Paeth
	rows := []byte{
		1, 1, 1, 1,
		2, 1, 1, 1,
		3, 0, 0, 0,
		4, 1, 1, 1,
	}
	want := []byte{1, 2, 3, 2, 3, 4, 1, 2, 3, 2, 3, 4}

	got, err := FlateDecode(deflate(t, rows), Params{Predictor: 12, Columns: 3})
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPNGUnpredict(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		input  []byte
		want   []byte
	}{
		{
			name:   "rgb sub",
			params: Params{Predictor: 11, Colors: 3, Columns: 2},
			input:  []byte{1, 10, 20, 30, 1, 2, 3},
			want:   []byte{10, 20, 30, 11, 22, 33},
		},
		{
			name:   "one bit rows",
			params: Params{Predictor: 15, BitsPerComponent: 1, Columns: 16},
			input:  []byte{0, 0xF0, 0x0F, 2, 0x01, 0x01},
			want:   []byte{0xF0, 0x0F, 0xF1, 0x10},
		},
		{
			name:   "partial row dropped",
			params: Params{Predictor: 10, Columns: 2},
			input:  []byte{0, 7, 8, 0, 9},
			want:   []byte{7, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unpredict(tt.input, tt.params)
			if err != nil {
				t.Fatalf("unpredict failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPNGUnpredictBadFilterType(t *testing.T) {
	if _, err := unpredict([]byte{9, 1, 2}, Params{Predictor: 10, Columns: 2}); err == nil {
		t.Fatal("expected an error for filter type 9")
	}
}

func TestTIFFUnpredict(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		input  []byte
		want   []byte
	}{
		{
			name:   "8 bit gray",
			params: Params{Predictor: 2, Columns: 4},
			input:  []byte{1, 1, 1, 1, 5, 0, 0, 0},
			want:   []byte{1, 2, 3, 4, 5, 5, 5, 5},
		},
		{
			name:   "8 bit rgb",
			params: Params{Predictor: 2, Colors: 3, Columns: 2},
			input:  []byte{10, 20, 30, 1, 1, 1},
			want:   []byte{10, 20, 30, 11, 21, 31},
		},
		{
			name:   "16 bit gray",
			params: Params{Predictor: 2, BitsPerComponent: 16, Columns: 2},
			input:  []byte{0x00, 0x01, 0x01, 0x00},
			want:   []byte{0x00, 0x01, 0x01, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unpredict(tt.input, tt.params)
			if err != nil {
				t.Fatalf("unpredict failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnpredictUnsupported(t *testing.T) {
	if _, err := unpredict([]byte{1}, Params{Predictor: 7}); err == nil {
		t.Error("expected an error for predictor 7")
	}
	if _, err := unpredict([]byte{1, 2}, Params{Predictor: 2, BitsPerComponent: 4, Columns: 4}); err == nil {
		t.Error("expected an error for a 4 bit TIFF predictor")
	}
}

func TestUnpredictBadParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"negative columns", Params{Columns: -9}},
		{"huge columns", Params{Columns: 1 << 30}},
		{"negative colors", Params{Colors: -1, Columns: 4}},
		{"too many colors", Params{Colors: 33, Columns: 4}},
		{"odd bits per component", Params{BitsPerComponent: 3, Columns: 4}},
		{"negative bits per component", Params{BitsPerComponent: -8, Columns: 4}},
	}

	data := make([]byte, 64)
	for _, tt := range tests {
		for _, predictor := range []int{2, 12} {
			p := tt.params
			p.Predictor = predictor
			t.Run(fmt.Sprintf("%s/predictor %d", tt.name, predictor), func(t *testing.T) {
				if _, err := unpredict(data, p); err == nil {
					t.Error("expected an error")
				}
			})
		}
	}
}

func TestFlateDecodeBadColumns(t *testing.T) {
	encoded := deflate(t, make([]byte, 32))
	if _, err := FlateDecode(encoded, Params{Predictor: 12, Columns: -9}); err == nil {
		t.Fatal("expected an error for negative /Columns")
	}
}

func TestASCIIHexDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "mixed case with spaces", input: "48 65 6C\n6c6F>", want: []byte("Hello")},
		{name: "odd digit count", input: "7>", want: []byte{0x70}},
		{name: "data after marker ignored", input: "41>zz", want: []byte("A")},
		{name: "no marker", input: "4142", want: []byte("AB")},
		{name: "empty", input: ">", want: []byte{}},
		{name: "invalid digit", input: "4G>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCIIHexDecode([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ASCIIHexDecode failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestASCII85Decode(t *testing.T) {
	original := []byte("Man is distinguished, not only by his reason")
	encoded := make([]byte, ascii85.MaxEncodedLen(len(original)))
	encoded = encoded[:ascii85.Encode(encoded, original)]

	tests := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{name: "with markers", input: append(append([]byte("<~"), encoded...), "~>"...), want: original},
		{name: "end marker only", input: append(append([]byte{}, encoded...), "~>"...), want: original},
		{name: "zero group", input: []byte("z~>"), want: []byte{0, 0, 0, 0}},
		{name: "empty", input: []byte("~>"), want: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCII85Decode(tt.input)
			if err != nil {
				t.Fatalf("ASCII85Decode failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestASCII85DecodeInvalid(t *testing.T) {
	if _, err := ASCII85Decode([]byte("ab{de~>")); err == nil {
		t.Fatal("expected an error for a character outside the base-85 alphabet")
	}
}

func TestCCITTFaxDecodeUnsupported(t *testing.T) {
	if _, err := CCITTFaxDecode([]byte{0}, Params{K: -1, Columns: -8}); err == nil {
		t.Error("expected an error for negative /Columns")
	}
	if _, err := CCITTFaxDecode([]byte{0}, Params{K: 1, Columns: 8}); err == nil {
		t.Fatal("expected an error for K > 0")
	}
}
