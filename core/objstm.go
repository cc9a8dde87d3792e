package core

import "fmt"

// ObjectStream gives access to the objects packed into an /ObjStm stream.
type ObjectStream struct {
	data    []byte
	first   int
	nums    []int
	offsets []int
	cache   map[int]Object
}

// NewObjectStream decodes s and reads its header of N object number and
// offset pairs.
func NewObjectStream(s *Stream) (*ObjectStream, error) {
	if t, ok := s.Dict.GetName("Type"); ok && t != "ObjStm" {
		return nil, fmt.Errorf("stream type is /%s, not /ObjStm", t)
	}
	n, ok := s.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream missing /N")
	}
	first, ok := s.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream missing /First")
	}

	data, err := s.Decoded()
	if err != nil {
		return nil, fmt.Errorf("failed to decode object stream: %w", err)
	}
	if int(first) > len(data) {
		return nil, fmt.Errorf("/First %d beyond %d bytes of data", first, len(data))
	}

	stm := &ObjectStream{
		data:    data,
		first:   int(first),
		nums:    make([]int, 0, n),
		offsets: make([]int, 0, n),
		cache:   make(map[int]Object),
	}

	lex := NewLexer(data[:first])
	for i := 0; i < int(n); i++ {
		num, err1 := lex.Next()
		off, err2 := lex.Next()
		numInt, ok1 := num.(Int)
		offInt, ok2 := off.(Int)
		if err1 != nil || err2 != nil || !ok1 || !ok2 || offInt < 0 {
			return nil, fmt.Errorf("object stream header truncated at entry %d of %d", i, n)
		}
		stm.nums = append(stm.nums, int(numInt))
		stm.offsets = append(stm.offsets, int(offInt))
	}

	return stm, nil
}

// Len returns the number of objects in the stream.
func (o *ObjectStream) Len() int { return len(o.nums) }

// Numbers returns the object numbers in stream order.
func (o *ObjectStream) Numbers() []int {
	return append([]int(nil), o.nums...)
}

// ObjectAt parses the object at index i and returns it with its number.
func (o *ObjectStream) ObjectAt(i int) (Object, int, error) {
	if i < 0 || i >= len(o.nums) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", i, len(o.nums))
	}
	if obj, ok := o.cache[i]; ok {
		return obj, o.nums[i], nil
	}

	start := o.first + o.offsets[i]
	if start >= len(o.data) {
		return nil, 0, fmt.Errorf("object %d offset %d beyond stream data", o.nums[i], start)
	}

	obj, err := NewParser(o.data[start:]).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object %d: %w", o.nums[i], err)
	}
	o.cache[i] = obj
	return obj, o.nums[i], nil
}

// Lookup finds an object by number.
func (o *ObjectStream) Lookup(num int) (Object, error) {
	for i, n := range o.nums {
		if n == num {
			obj, _, err := o.ObjectAt(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in stream", num)
}
