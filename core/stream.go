package core

import (
	"fmt"

	"github.com/tsawler/pdfimages/internal/filters"
)

// filterStage is one step of a stream's filter pipeline.
type filterStage struct {
	name   string
	params filters.Params
}

// Decode applies every filter of the stream. Image codec filters leave
// their input unchanged.
func (s *Stream) Decode() ([]byte, error) {
	data, _, err := s.decode(false)
	return data, err
}

// DecodeImage applies the stream's filters up to the first image codec
// filter and returns the still-encoded payload with the canonical codec
// name ("DCTDecode", "JPXDecode" or "JBIG2Decode"). Without a codec filter
// the data is fully decoded samples and codec is empty.
func (s *Stream) DecodeImage() (data []byte, codec string, err error) {
	return s.decode(true)
}

func (s *Stream) decode(stopAtCodec bool) ([]byte, string, error) {
	stages, err := s.pipeline()
	if err != nil {
		return nil, "", err
	}

	data := s.Data
	for i, stage := range stages {
		if c := filters.Codec(stage.name); c != "" && stopAtCodec {
			return data, c, nil
		}
		if data, err = filters.Decode(stage.name, data, stage.params); err != nil {
			if len(stages) == 1 {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("filter %d (%s) failed: %w", i, stage.name, err)
		}
	}
	return data, "", nil
}

// Filters returns the stream's filter names in decoding order.
func (s *Stream) Filters() ([]string, error) {
	stages, err := s.pipeline()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(stages))
	for i, stage := range stages {
		names[i] = stage.name
	}
	return names, nil
}

// pipeline pairs /Filter with /DecodeParms (or its abbreviation /DP). Parameters are either parallel to the filter
// array or a single dictionary for all filters.
func (s *Stream) pipeline() ([]filterStage, error) {
	filter := s.Dict.Get("Filter")
	params := s.Dict.Get("DecodeParms")
	if params == nil {
		params = s.Dict.Get("DP")
	}

	var names Array
	switch f := filter.(type) {
	case nil, Null:
		return nil, nil
	case Name:
		names = Array{f}
	case Array:
		names = f
	default:
		return nil, fmt.Errorf("invalid Filter type: %T", filter)
	}

	stages := make([]filterStage, len(names))
	for i, obj := range names {
		name, ok := obj.(Name)
		if !ok {
			return nil, fmt.Errorf("filter %d is not a name: %T", i, obj)
		}

		p := params
		if arr, ok := params.(Array); ok {
			p = nil
			if i < len(arr) {
				p = arr[i]
			}
		}
		stages[i] = filterStage{name: string(name), params: decodeParams(p)}
	}
	return stages, nil
}

// decodeParams translates a /DecodeParms dictionary. Anything else yields
// the defaults.
func decodeParams(obj Object) filters.Params {
	p := filters.DefaultParams()
	d, ok := obj.(Dict)
	if !ok {
		return p
	}

	ints := map[string]*int{
		"Predictor":        &p.Predictor,
		"Colors":           &p.Colors,
		"BitsPerComponent": &p.BitsPerComponent,
		"Columns":          &p.Columns,
		"EarlyChange":      &p.EarlyChange,
		"K":                &p.K,
		"Rows":             &p.Rows,
	}
	for key, dst := range ints {
		if v, ok := d.GetInt(key); ok {
			*dst = int(v)
		}
	}
	if v, ok := d.GetBool("BlackIs1"); ok {
		p.BlackIs1 = bool(v)
	}
	if v, ok := d.GetBool("EncodedByteAlign"); ok {
		p.EncodedByteAlign = bool(v)
	}
	return p
}
