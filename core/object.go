package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object is a PDF value: Null, Bool, Int, Real, String, Name, Array, Dict,
// *Stream or IndirectRef. String renders the value in PDF syntax.
type Object interface {
	String() string
}

type (
	// Null is the PDF null object. Missing references resolve to it.
	Null struct{}

	Bool bool
	Int  int64
	Real float64

	// String holds the decoded bytes of a literal or hexadecimal string.
	String string

	// Name is a name without its leading slash, #xx escapes decoded.
	Name string

	Array []Object

	// Dict maps keys (names without the slash) to values.
	Dict map[string]Object
)

// IndirectRef is an "N G R" reference to an object in the xref table.
type IndirectRef struct {
	Number     int
	Generation int
}

// IndirectObject is an "N G obj ... endobj" definition.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}

// Stream is a dictionary followed by raw, still encoded, bytes.
type Stream struct {
	Dict Dict
	Data []byte

	decoded []byte
}

// keyword is a bare token: obj, endobj, stream, R, true/false/null before
// conversion, or one of the delimiters [ ] << >>.
type keyword string

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (r Real) String() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

func (s String) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func (n Name) String() string { return "/" + string(n) }

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = str(obj)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// String renders the dictionary with its keys sorted.
func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteString("<<")
	for i, key := range d.Keys() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("/" + key + " " + str(d[key]))
	}
	sb.WriteString(">>")
	return sb.String()
}

func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

func (s *Stream) String() string {
	return fmt.Sprintf("%s stream[%d bytes]", s.Dict, len(s.Data))
}

func (k keyword) String() string { return string(k) }

func str(obj Object) string {
	if obj == nil {
		return "null"
	}
	return obj.String()
}

// Decoded returns the fully decoded stream data, decoding on first use.
func (s *Stream) Decoded() ([]byte, error) {
	if s.decoded == nil {
		data, err := s.Decode()
		if err != nil {
			return nil, err
		}
		s.decoded = data
	}
	return s.decoded, nil
}

// lookup returns d[key] as a T, reporting whether it was present with that
// type.
func lookup[T Object](d Dict, key string) (T, bool) {
	v, ok := d[key].(T)
	return v, ok
}

// Get returns the value for key, or nil.
func (d Dict) Get(key string) Object { return d[key] }

// Has reports whether key is present, even with a null value.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d Dict) GetName(key string) (Name, bool)       { return lookup[Name](d, key) }
func (d Dict) GetInt(key string) (Int, bool)         { return lookup[Int](d, key) }
func (d Dict) GetReal(key string) (Real, bool)       { return lookup[Real](d, key) }
func (d Dict) GetBool(key string) (Bool, bool)       { return lookup[Bool](d, key) }
func (d Dict) GetString(key string) (String, bool)   { return lookup[String](d, key) }
func (d Dict) GetArray(key string) (Array, bool)     { return lookup[Array](d, key) }
func (d Dict) GetDict(key string) (Dict, bool)       { return lookup[Dict](d, key) }
func (d Dict) GetStream(key string) (*Stream, bool)  { return lookup[*Stream](d, key) }
func (d Dict) GetRef(key string) (IndirectRef, bool) { return lookup[IndirectRef](d, key) }

// Number returns an Int or Real value as a float64.
func (d Dict) Number(key string) (float64, bool) {
	switch v := d[key].(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// Keys returns the keys in sorted order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
