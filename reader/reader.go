package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/tsawler/pdfimages/core"
	"github.com/tsawler/pdfimages/pages"
)

// ErrNotPDF is returned when the input does not start with a %PDF- header.
var ErrNotPDF = errors.New("not a PDF file")

// ErrClosed is returned by object lookups after Close.
var ErrClosed = errors.New("reader is closed")

// PDFVersion is the version from the %PDF-x.y header.
type PDFVersion struct {
	Major int
	Minor int
}

func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader is an open PDF document. The whole file is held in memory, so a
// Reader has no file handle and Close only releases the buffer.
//
// A Reader is not safe for concurrent use; open one Reader per goroutine.
type Reader struct {
	data       []byte
	size       int64
	xref       *core.XRefTable
	version    PDFVersion
	objects    map[int]core.Object
	objStreams map[int]*core.ObjectStream
	loading    map[int]bool
	pageTree   *pages.Tree
	rebuilt    bool
}

var _ pages.Resolver = (*Reader)(nil)

var (
	versionPattern   = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)
	objHeaderPattern = regexp.MustCompile(`(?m)(\d+)\s+(\d+)\s+obj\b`)
)

// headerSearchLimit is how far into the file the %PDF- marker may appear.
// Some producers prepend junk before it.
const headerSearchLimit = 1024

// Open reads filename and parses its header and cross-reference data.
func Open(filename string) (*Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return NewReaderBytes(data)
}

// NewReader reads all of src and parses it as a PDF document.
func NewReader(src io.Reader) (*Reader, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return NewReaderBytes(data)
}

// NewReaderAt reads size bytes of src and parses them as a PDF document.
func NewReaderAt(src io.ReaderAt, size int64) (*Reader, error) {
	return NewReader(io.NewSectionReader(src, 0, size))
}

// NewReaderBytes parses data as a PDF document. The Reader keeps data; the
// caller must not modify it afterwards.
func NewReaderBytes(data []byte) (*Reader, error) {
	r := &Reader{
		data:       data,
		size:       int64(len(data)),
		objects:    make(map[int]core.Object),
		objStreams: make(map[int]*core.ObjectStream),
		loading:    make(map[int]bool),
	}

	version, err := parseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	r.version = version

	table, err := loadXRef(data)
	if err != nil {
		// Damaged cross-reference data is common; fall back to scanning
		rebuilt, rebuildErr := r.rebuildXRef()
		if rebuildErr != nil {
			return nil, fmt.Errorf("failed to load xref: %w", err)
		}
		table = rebuilt
		r.rebuilt = true
	}
	r.xref = table

	return r, nil
}

// Close releases the document data. Later lookups fail with ErrClosed.
// Close may be called more than once.
func (r *Reader) Close() error {
	r.data = nil
	r.objects = nil
	r.objStreams = nil
	r.pageTree = nil
	return nil
}

// parseHeader finds the %PDF-x.y marker near the start of data.
func parseHeader(data []byte) (PDFVersion, error) {
	head := data[:min(len(data), headerSearchLimit)]

	m := versionPattern.FindSubmatch(head)
	if m == nil {
		return PDFVersion{}, ErrNotPDF
	}

	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

func loadXRef(data []byte) (*core.XRefTable, error) {
	table, err := core.ParseXRef(data)
	if err != nil {
		return nil, err
	}
	if !table.Trailer.Has("Root") {
		return nil, errors.New("trailer missing /Root entry")
	}
	return table, nil
}

// rebuildXRef reconstructs a cross-reference table by scanning the whole
// file for "N G obj" headers. Later definitions win, as with incremental
// updates. The trailer is the last "trailer" dictionary in the file, or a
// synthesized one pointing at the first catalog found.
func (r *Reader) rebuildXRef() (*core.XRefTable, error) {
	table := core.NewXRefTable()
	for _, m := range objHeaderPattern.FindAllSubmatchIndex(r.data, -1) {
		num, err1 := strconv.Atoi(string(r.data[m[2]:m[3]]))
		gen, err2 := strconv.Atoi(string(r.data[m[4]:m[5]]))
		if err1 != nil || err2 != nil {
			continue
		}
		table.Set(num, core.XRefEntry{
			Type:       core.XRefEntryUncompressed,
			Offset:     int64(m[0]),
			Generation: gen,
		})
	}
	if table.Size() == 0 {
		return nil, errors.New("no objects found")
	}

	if idx := bytes.LastIndex(r.data, []byte("trailer")); idx >= 0 {
		obj, err := core.NewParser(r.data[idx+len("trailer"):]).ParseObject()
		if dict, ok := obj.(core.Dict); err == nil && ok && dict.Has("Root") {
			table.Trailer = dict
			return table, nil
		}
	}

	// No usable trailer; look for the catalog among the objects found
	r.xref = table
	defer func() {
		r.xref = nil
		r.objects = make(map[int]core.Object)
	}()
	for num := range table.Entries {
		obj, err := r.GetObject(num)
		if err != nil {
			continue
		}
		if dict, ok := obj.(core.Dict); ok {
			if typ, _ := dict.GetName("Type"); typ == "Catalog" {
				table.Trailer = core.Dict{"Root": core.IndirectRef{Number: num}}
				return table, nil
			}
		}
	}

	return nil, errors.New("no document catalog found")
}

// Version returns the header version.
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the newest trailer dictionary.
func (r *Reader) Trailer() core.Dict {
	return r.xref.Trailer
}

// Rebuilt reports whether the cross-reference table had to be
// reconstructed by scanning the file.
func (r *Reader) Rebuilt() bool {
	return r.rebuilt
}

// FileSize returns the size of the document in bytes.
func (r *Reader) FileSize() int64 {
	return r.size
}

// GetObject loads an object by number. Loaded objects are cached. Free
// entries resolve to null.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if r.data == nil {
		return nil, ErrClosed
	}
	if obj, ok := r.objects[objNum]; ok {
		return obj, nil
	}

	entry, ok := r.xref.Get(objNum)
	if !ok {
		return nil, fmt.Errorf("object %d not found in xref table", objNum)
	}
	if !entry.InUse() {
		return core.Null{}, nil
	}

	if r.loading[objNum] {
		return nil, fmt.Errorf("object %d refers to itself", objNum)
	}
	r.loading[objNum] = true
	defer delete(r.loading, objNum)

	var obj core.Object
	var err error
	if entry.Type == core.XRefEntryCompressed {
		obj, err = r.loadCompressed(objNum, entry)
	} else {
		obj, err = r.loadAt(objNum, entry.Offset)
	}
	if err != nil {
		return nil, err
	}

	r.objects[objNum] = obj
	return obj, nil
}

// loadAt parses the indirect object stored at offset.
func (r *Reader) loadAt(objNum int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= r.size {
		return nil, fmt.Errorf("object %d offset %d outside file", objNum, offset)
	}

	parser := core.NewParser(r.data[offset:])
	parser.SetReferenceResolver(r)

	ind, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}
	if ind.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, ind.Ref.Number)
	}

	return ind.Object, nil
}

// loadCompressed extracts an object stored inside an object stream.
func (r *Reader) loadCompressed(objNum int, entry core.XRefEntry) (core.Object, error) {
	stmNum := int(entry.Offset)

	stm, ok := r.objStreams[stmNum]
	if !ok {
		obj, err := r.GetObject(stmNum)
		if err != nil {
			return nil, fmt.Errorf("failed to load object stream %d: %w", stmNum, err)
		}
		stream, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("object stream %d is %T", stmNum, obj)
		}
		if stm, err = core.NewObjectStream(stream); err != nil {
			return nil, fmt.Errorf("invalid object stream %d: %w", stmNum, err)
		}
		r.objStreams[stmNum] = stm
	}

	if obj, num, err := stm.ObjectAt(entry.Generation); err == nil && num == objNum {
		return obj, nil
	}

	// Index disagrees with the stream header; search by number instead
	obj, err := stm.Lookup(objNum)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", stmNum, err)
	}
	return obj, nil
}

// ResolveReference loads the object ref points at.
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve follows obj if it is an indirect reference and returns any other
// object unchanged.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.ResolveReference(ref)
	}
	return obj, nil
}

// GetCatalog returns the document catalog named by the trailer's /Root.
func (r *Reader) GetCatalog() (core.Dict, error) {
	root := r.xref.Trailer.Get("Root")
	if root == nil {
		return nil, errors.New("trailer missing /Root entry")
	}

	obj, err := r.Resolve(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}

	catalog, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is not a dictionary: %T", obj)
	}
	return catalog, nil
}

// PageCount returns the number of pages reachable from the page tree.
func (r *Reader) PageCount() (int, error) {
	if err := r.ensurePageTree(); err != nil {
		return 0, err
	}
	return r.pageTree.Len(), nil
}

// GetPage returns the page at the given index (0-based).
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.Page(index)
}

// Pages returns all pages in document order.
func (r *Reader) Pages() ([]*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.Pages(), nil
}

func (r *Reader) ensurePageTree() error {
	if r.pageTree != nil {
		return nil
	}

	catalog, err := r.GetCatalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}

	root, err := pages.Root(catalog, r)
	if err != nil {
		return err
	}

	tree, err := pages.Load(root, r)
	if err != nil {
		return err
	}
	r.pageTree = tree
	return nil
}
