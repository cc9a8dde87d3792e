package core

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// XRefEntryType tells where an object is stored.
type XRefEntryType int

const (
	XRefEntryFree XRefEntryType = iota
	XRefEntryUncompressed
	XRefEntryCompressed
)

// XRefEntry locates one object. For compressed entries Offset holds the
// object stream's number and Generation the index within that stream.
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64
	Generation int
}

// InUse reports whether the entry points at an object.
func (e XRefEntry) InUse() bool { return e.Type != XRefEntryFree }

// XRefTable is the merged cross-reference data of a document.
type XRefTable struct {
	Entries map[int]XRefEntry
	Trailer Dict
}

// NewXRefTable returns an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: make(map[int]XRefEntry)}
}

// Get returns the entry for object num.
func (t *XRefTable) Get(num int) (XRefEntry, bool) {
	e, ok := t.Entries[num]
	return e, ok
}

// Set stores the entry for object num, replacing any previous one.
func (t *XRefTable) Set(num int, e XRefEntry) { t.Entries[num] = e }

// Size returns the number of entries.
func (t *XRefTable) Size() int { return len(t.Entries) }

// addOlder copies entries of an older section that t does not define yet.
// With freeToo, entries t marks free are replaced as well.
func (t *XRefTable) addOlder(older *XRefTable, freeToo bool) {
	for num, e := range older.Entries {
		cur, ok := t.Entries[num]
		if !ok || (freeToo && !cur.InUse()) {
			t.Entries[num] = e
		}
	}
}

// FindStartXRef returns the offset recorded after the last "startxref".
func FindStartXRef(data []byte) (int64, error) {
	idx := bytes.LastIndex(data, []byte("startxref"))
	if idx < 0 {
		return 0, errors.New("startxref not found")
	}

	tok, err := NewLexer(data[idx+len("startxref"):]).Next()
	off, ok := tok.(Int)
	if err != nil || !ok || off < 0 || int64(off) >= int64(len(data)) {
		return 0, fmt.Errorf("invalid startxref offset")
	}
	return int64(off), nil
}

// ParseXRef reads the cross-reference sections of data, newest first,
// following /Prev links. Newer entries win over older ones and the trailer
// is the newest one. A hybrid file's /XRefStm entries fill the gaps of the
// table section that names them.
func ParseXRef(data []byte) (*XRefTable, error) {
	off, err := FindStartXRef(data)
	if err != nil {
		return nil, err
	}

	table := NewXRefTable()
	seen := make(map[int64]bool)
	for {
		if seen[off] {
			break
		}
		seen[off] = true

		section, err := parseXRefSection(data, off)
		if err != nil {
			return nil, fmt.Errorf("xref section at offset %d: %w", off, err)
		}

		if stm, ok := section.Trailer.GetInt("XRefStm"); ok && !seen[int64(stm)] {
			seen[int64(stm)] = true
			if hybrid, err := parseXRefStream(data, int64(stm)); err == nil {
				section.addOlder(hybrid, true)
			}
		}

		table.addOlder(section, false)
		if table.Trailer == nil {
			table.Trailer = section.Trailer
		}

		prev, ok := section.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		off = int64(prev)
	}

	return table, nil
}

// parseXRefSection reads either an "xref" table or a cross-reference stream
// at off.
func parseXRefSection(data []byte, off int64) (*XRefTable, error) {
	if off < 0 || off >= int64(len(data)) {
		return nil, fmt.Errorf("offset outside file")
	}

	pos := int(off)
	for pos < len(data) && isWhite(data[pos]) {
		pos++
	}
	if bytes.HasPrefix(data[pos:], []byte("xref")) {
		return parseXRefTable(data, pos+len("xref"))
	}
	return parseXRefStream(data, off)
}

// parseXRefTable reads subsections of fixed-format entries up to the
// trailer dictionary. Entries are read by fields, so writers that get the
// 20-byte line layout wrong still parse.
func parseXRefTable(data []byte, pos int) (*XRefTable, error) {
	section := NewXRefTable()

	for {
		line, next := nextLine(data, pos)
		if line == "" && next >= len(data) {
			return nil, errors.New("missing trailer")
		}
		if strings.HasPrefix(line, "trailer") {
			pos += bytes.Index(data[pos:next], []byte("trailer")) + len("trailer")
			break
		}
		pos = next
		if line == "" {
			continue
		}

		header := strings.Fields(line)
		if len(header) != 2 {
			return nil, fmt.Errorf("malformed subsection header %q", line)
		}
		first, err1 := strconv.Atoi(header[0])
		count, err2 := strconv.Atoi(header[1])
		if err1 != nil || err2 != nil || first < 0 || count < 0 {
			return nil, fmt.Errorf("malformed subsection header %q", line)
		}

		for i := 0; i < count; i++ {
			line, pos = nextLine(data, pos)
			if line == "" {
				if pos >= len(data) {
					return nil, errors.New("truncated xref subsection")
				}
				i--
				continue
			}

			f := strings.Fields(line)
			if len(f) < 3 {
				return nil, fmt.Errorf("malformed xref entry %q", line)
			}
			offset, err1 := strconv.ParseInt(f[0], 10, 64)
			gen, err2 := strconv.Atoi(f[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("malformed xref entry %q", line)
			}

			e := XRefEntry{Type: XRefEntryFree, Offset: offset, Generation: gen}
			if f[2] == "n" {
				e.Type = XRefEntryUncompressed
			}
			if _, dup := section.Entries[first+i]; !dup {
				section.Entries[first+i] = e
			}
		}
	}

	trailer, err := NewParser(data[pos:]).ParseObject()
	if err != nil {
		return nil, fmt.Errorf("trailer: %w", err)
	}
	dict, ok := trailer.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is %s, not a dictionary", trailer)
	}
	section.Trailer = dict
	return section, nil
}

// nextLine returns the trimmed line starting at pos and the offset after
// its CR, LF or CRLF terminator.
func nextLine(data []byte, pos int) (string, int) {
	end := pos
	for end < len(data) && data[end] != '\r' && data[end] != '\n' {
		end++
	}
	next := end
	if next < len(data) && data[next] == '\r' {
		next++
	}
	if next < len(data) && data[next] == '\n' {
		next++
	}
	return strings.TrimSpace(string(data[pos:end])), next
}

// parseXRefStream reads a cross-reference stream object at off.
func parseXRefStream(data []byte, off int64) (*XRefTable, error) {
	if off < 0 || off >= int64(len(data)) {
		return nil, fmt.Errorf("offset outside file")
	}

	ind, err := NewParser(data[off:]).ParseIndirectObject()
	if err != nil {
		return nil, err
	}
	stream, ok := ind.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object %d is not a stream", ind.Ref.Number)
	}
	if t, ok := stream.Dict.GetName("Type"); ok && t != "XRef" {
		return nil, fmt.Errorf("stream type is /%s, not /XRef", t)
	}

	widths, err := xrefWidths(stream.Dict)
	if err != nil {
		return nil, err
	}
	ranges, err := xrefRanges(stream.Dict)
	if err != nil {
		return nil, err
	}

	rows, err := stream.Decoded()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}

	section := NewXRefTable()
	section.Trailer = stream.Dict
	rowLen := widths[0] + widths[1] + widths[2]
	pos := 0
	for _, r := range ranges {
		for num := r[0]; num < r[0]+r[1]; num++ {
			if pos+rowLen > len(rows) {
				return section, nil
			}
			row := rows[pos : pos+rowLen]
			pos += rowLen

			typ := int64(1)
			if widths[0] > 0 {
				typ = field(row[:widths[0]])
			}
			f2 := field(row[widths[0] : widths[0]+widths[1]])
			f3 := field(row[widths[0]+widths[1]:])

			var e XRefEntry
			switch typ {
			case 0:
				e = XRefEntry{Type: XRefEntryFree, Offset: f2, Generation: int(f3)}
			case 1:
				e = XRefEntry{Type: XRefEntryUncompressed, Offset: f2, Generation: int(f3)}
			case 2:
				e = XRefEntry{Type: XRefEntryCompressed, Offset: f2, Generation: int(f3)}
			default:
				// Unknown types are references to the null object
				continue
			}
			if _, dup := section.Entries[num]; !dup {
				section.Entries[num] = e
			}
		}
	}

	return section, nil
}

func xrefWidths(dict Dict) ([3]int, error) {
	var w [3]int
	arr, ok := dict.GetArray("W")
	if !ok || len(arr) < 3 {
		return w, errors.New("xref stream missing /W")
	}
	for i := range w {
		v, ok := arr[i].(Int)
		if !ok || v < 0 || v > 8 {
			return w, fmt.Errorf("invalid /W entry %s", arr[i])
		}
		w[i] = int(v)
	}
	return w, nil
}

// xrefRanges returns the (first, count) pairs of /Index, defaulting to
// [0 Size].
func xrefRanges(dict Dict) ([][2]int, error) {
	size, ok := dict.GetInt("Size")
	if !ok {
		return nil, errors.New("xref stream missing /Size")
	}

	index, ok := dict.GetArray("Index")
	if !ok {
		return [][2]int{{0, int(size)}}, nil
	}

	ranges := make([][2]int, 0, len(index)/2)
	for i := 0; i+1 < len(index); i += 2 {
		first, ok1 := index[i].(Int)
		count, ok2 := index[i+1].(Int)
		if !ok1 || !ok2 || first < 0 || count < 0 {
			return nil, errors.New("invalid /Index")
		}
		ranges = append(ranges, [2]int{int(first), int(count)})
	}
	return ranges, nil
}

// field reads a big-endian unsigned integer.
func field(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}
