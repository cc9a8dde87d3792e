package core

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// packObjects lays objects out the way an /ObjStm stream stores them.
func packObjects(nums []int, objs []string) *Stream {
	var header, body strings.Builder
	for i, obj := range objs {
		fmt.Fprintf(&header, "%d %d ", nums[i], body.Len())
		body.WriteString(obj + " ")
	}
	return &Stream{
		Dict: Dict{
			"Type":  Name("ObjStm"),
			"N":     Int(len(objs)),
			"First": Int(header.Len()),
		},
		Data: []byte(header.String() + body.String()),
	}
}

func TestObjectStream(t *testing.T) {
	stm, err := NewObjectStream(packObjects([]int{10, 11, 12}, []string{"(a)", "<< /K 1 0 R >>", "[1 2]"}))
	if err != nil {
		t.Fatalf("NewObjectStream failed: %v", err)
	}

	if stm.Len() != 3 {
		t.Errorf("Len = %d, want 3", stm.Len())
	}
	if got := stm.Numbers(); !reflect.DeepEqual(got, []int{10, 11, 12}) {
		t.Errorf("Numbers = %v", got)
	}

	obj, num, err := stm.ObjectAt(1)
	if err != nil {
		t.Fatalf("ObjectAt failed: %v", err)
	}
	if num != 11 || !reflect.DeepEqual(obj, Dict{"K": IndirectRef{Number: 1}}) {
		t.Errorf("ObjectAt(1) = %v (%d)", obj, num)
	}

	obj, err = stm.Lookup(12)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !reflect.DeepEqual(obj, Array{Int(1), Int(2)}) {
		t.Errorf("Lookup(12) = %v", obj)
	}

	if _, err := stm.Lookup(13); err == nil {
		t.Error("expected an error for an object not in the stream")
	}
	if _, _, err := stm.ObjectAt(3); err == nil {
		t.Error("expected an error for an index out of range")
	}
}

func TestObjectStreamCompressed(t *testing.T) {
	s := packObjects([]int{4}, []string{"/Packed"})
	s.Data = deflate(t, s.Data)
	s.Dict["Filter"] = Name("FlateDecode")

	stm, err := NewObjectStream(s)
	if err != nil {
		t.Fatalf("NewObjectStream failed: %v", err)
	}
	if obj, _ := stm.Lookup(4); obj != Name("Packed") {
		t.Errorf("Lookup(4) = %v", obj)
	}
}

func TestObjectStreamInvalid(t *testing.T) {
	tests := map[string]func(s *Stream){
		"wrong type":       func(s *Stream) { s.Dict["Type"] = Name("XRef") },
		"missing N":        func(s *Stream) { delete(s.Dict, "N") },
		"missing First":    func(s *Stream) { delete(s.Dict, "First") },
		"First past data":  func(s *Stream) { s.Dict["First"] = Int(1000) },
		"header too short": func(s *Stream) { s.Dict["N"] = Int(5) },
	}

	for name, mutate := range tests {
		s := packObjects([]int{1, 2}, []string{"1", "2"})
		mutate(s)
		if _, err := NewObjectStream(s); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
