package core

import (
	"reflect"
	"testing"
)

func TestObjectString(t *testing.T) {
	tests := []struct {
		obj  Object
		want string
	}{
		{Null{}, "null"},
		{Bool(true), "true"},
		{Int(-7), "-7"},
		{Real(0.5), "0.5"},
		{Real(3), "3"},
		{String(`a(b)\`), `(a\(b\)\\)`},
		{String("two\nlines"), `(two\nlines)`},
		{Name("Type"), "/Type"},
		{IndirectRef{Number: 3, Generation: 1}, "3 1 R"},
		{Array{Int(1), Name("X"), nil}, "[1 /X null]"},
		{Dict{"B": Array{Real(2.5)}, "A": Int(1)}, "<</A 1 /B [2.5]>>"},
		{&Stream{Dict: Dict{"Length": Int(3)}, Data: []byte("abc")}, "<</Length 3>> stream[3 bytes]"},
	}

	for _, tt := range tests {
		if got := tt.obj.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.obj, got, tt.want)
		}
	}
}

func TestDictGetters(t *testing.T) {
	stream := &Stream{Dict: Dict{}}
	d := Dict{
		"Name":   Name("N"),
		"Int":    Int(4),
		"Real":   Real(1.5),
		"Bool":   Bool(true),
		"String": String("s"),
		"Array":  Array{Int(1)},
		"Dict":   Dict{"K": Null{}},
		"Stream": stream,
		"Ref":    IndirectRef{Number: 9},
		"Null":   Null{},
	}

	if v, ok := d.GetName("Name"); !ok || v != "N" {
		t.Errorf("GetName = %v, %v", v, ok)
	}
	if v, ok := d.GetInt("Int"); !ok || v != 4 {
		t.Errorf("GetInt = %v, %v", v, ok)
	}
	if v, ok := d.GetReal("Real"); !ok || v != 1.5 {
		t.Errorf("GetReal = %v, %v", v, ok)
	}
	if v, ok := d.GetBool("Bool"); !ok || !bool(v) {
		t.Errorf("GetBool = %v, %v", v, ok)
	}
	if v, ok := d.GetString("String"); !ok || v != "s" {
		t.Errorf("GetString = %v, %v", v, ok)
	}
	if v, ok := d.GetArray("Array"); !ok || len(v) != 1 {
		t.Errorf("GetArray = %v, %v", v, ok)
	}
	if v, ok := d.GetDict("Dict"); !ok || !v.Has("K") {
		t.Errorf("GetDict = %v, %v", v, ok)
	}
	if v, ok := d.GetStream("Stream"); !ok || v != stream {
		t.Errorf("GetStream = %v, %v", v, ok)
	}
	if v, ok := d.GetRef("Ref"); !ok || v.Number != 9 {
		t.Errorf("GetRef = %v, %v", v, ok)
	}

	// Wrong type and missing keys
	if _, ok := d.GetInt("Real"); ok {
		t.Error("GetInt should not accept a Real")
	}
	if _, ok := d.GetName("Missing"); ok {
		t.Error("GetName should report a missing key")
	}
	if d.Get("Missing") != nil {
		t.Error("Get should return nil for a missing key")
	}
	if !d.Has("Null") || d.Has("Missing") {
		t.Error("Has should see null values but not missing keys")
	}
}

func TestDictNumber(t *testing.T) {
	d := Dict{"I": Int(2), "R": Real(0.25), "N": Name("x")}

	if v, ok := d.Number("I"); !ok || v != 2 {
		t.Errorf("Number(I) = %v, %v", v, ok)
	}
	if v, ok := d.Number("R"); !ok || v != 0.25 {
		t.Errorf("Number(R) = %v, %v", v, ok)
	}
	if _, ok := d.Number("N"); ok {
		t.Error("Number should reject a name")
	}
}

func TestDictKeysSorted(t *testing.T) {
	d := Dict{"Width": Int(1), "BitsPerComponent": Int(8), "Height": Int(1)}
	want := []string{"BitsPerComponent", "Height", "Width"}
	if got := d.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}

func TestStreamDecodedCaches(t *testing.T) {
	s := &Stream{Dict: Dict{"Filter": Name("ASCIIHexDecode")}, Data: []byte("6869>")}

	first, err := s.Decoded()
	if err != nil {
		t.Fatalf("Decoded failed: %v", err)
	}
	s.Data = []byte("2121>")
	second, _ := s.Decoded()

	if string(first) != "hi" || string(second) != "hi" {
		t.Errorf("Decoded = %q then %q, want hi twice", first, second)
	}
}
