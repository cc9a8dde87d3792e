package reader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/pdfimages/core"
	"github.com/tsawler/pdfimages/format"
	"github.com/tsawler/pdfimages/pages"
)

// ErrNotImage is returned when an XObject entry is not an image stream.
var ErrNotImage = errors.New("XObject is not an image")

// maxFormDepth bounds descent into nested Form XObjects.
const maxFormDepth = 16

// ImageRef identifies one image XObject reachable from a page.
type ImageRef struct {
	// Name is the XObject resource name. Images reached through Form
	// XObjects carry the form path, e.g. "Fm1/Im2".
	Name string

	// Ref is the indirect reference of the image stream. It is the zero
	// value when the stream is stored directly in the resource dictionary.
	Ref core.IndirectRef

	stream    *core.Stream
	resources core.Dict
	err       error
}

// Direct reports whether the image stream has no indirect object of its own.
func (ref ImageRef) Direct() bool {
	return ref.Ref.Number == 0
}

// SourceRef returns "N G R" for indirect images and the resource name for
// direct ones.
func (ref ImageRef) SourceRef() string {
	if ref.Direct() {
		return ref.Name
	}
	return ref.Ref.String()
}

// Err returns the error met while resolving the entry, if any.
func (ref ImageRef) Err() error {
	return ref.err
}

// PageImageRefs lists the image XObjects of a page in natural name order,
// descending into Form XObjects. An object referenced more than once on the
// page is listed once. Entries that cannot be resolved are still listed and
// report the failure through Err.
func (r *Reader) PageImageRefs(page *pages.Page) ([]ImageRef, error) {
	resources, err := page.Resources()
	if err != nil {
		return nil, err
	}

	w := &xobjectWalker{r: r, seen: make(map[int]bool)}
	if err := w.walk(resources, "", 0); err != nil {
		return nil, err
	}
	return w.refs, nil
}

// xobjectWalker collects image entries from a resource dictionary and the
// forms it names. seen holds every object visited on the page, which also
// stops forms that draw themselves.
type xobjectWalker struct {
	r    *Reader
	seen map[int]bool
	refs []ImageRef
}

func (w *xobjectWalker) walk(resources core.Dict, prefix string, depth int) error {
	xobjectObj := resources.Get("XObject")
	if xobjectObj == nil {
		return nil
	}

	xobjectResolved, err := w.r.Resolve(xobjectObj)
	if err != nil {
		return fmt.Errorf("failed to resolve XObject dictionary: %w", err)
	}

	xobjects, ok := xobjectResolved.(core.Dict)
	if !ok {
		return nil
	}

	names := xobjects.Keys()
	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })

	for _, name := range names {
		entry := ImageRef{Name: prefix + name, resources: resources}

		obj := xobjects.Get(name)
		if ref, ok := obj.(core.IndirectRef); ok {
			if w.seen[ref.Number] {
				continue
			}
			w.seen[ref.Number] = true
			entry.Ref = ref
		}

		resolved, err := w.r.Resolve(obj)
		if err != nil {
			entry.err = fmt.Errorf("failed to resolve %s: %w", entry.Name, err)
			w.refs = append(w.refs, entry)
			continue
		}

		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}

		subtype, _ := stream.Dict.GetName("Subtype")
		switch subtype {
		case "Image":
			entry.stream = stream
			w.refs = append(w.refs, entry)

		case "Form":
			if depth >= maxFormDepth {
				continue
			}
			formResources := resources
			if res, err := w.r.Resolve(stream.Dict.Get("Resources")); err == nil {
				if d, ok := res.(core.Dict); ok {
					formResources = d
				}
			}
			if err := w.walk(formResources, entry.Name+"/", depth+1); err != nil {
				entry.err = err
				w.refs = append(w.refs, entry)
			}
		}
	}

	return nil
}

// naturalLess orders names so that embedded numbers compare by value,
// putting "Im2" before "Im10".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ad, bd := isDigit(a[0]), isDigit(b[0])
		switch {
		case ad && bd:
			an, arest := splitDigits(a)
			bn, brest := splitDigits(b)
			at, bt := strings.TrimLeft(an, "0"), strings.TrimLeft(bn, "0")
			if len(at) != len(bt) {
				return len(at) < len(bt)
			}
			if at != bt {
				return at < bt
			}
			if len(an) != len(bn) {
				return len(an) < len(bn)
			}
			a, b = arest, brest
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// RawImage is an image's encoded bytes as they would be written to disk.
type RawImage struct {
	Data             []byte
	Format           format.Format
	Width            int
	Height           int
	ColorSpace       string
	BitsPerComponent int
}

// Ext returns the file extension for the image, without a dot.
func (img *RawImage) Ext() string {
	return img.Format.Extension()
}

// RawImage returns the encoded bytes of an image. DCT, JPX and JBIG2 data
// is returned as stored, after any generic filters that precede the codec.
// Other images are decoded to samples and re-encoded as PNG.
func (r *Reader) RawImage(ref ImageRef) (*RawImage, error) {
	if ref.err != nil {
		return nil, ref.err
	}
	if ref.stream == nil {
		return nil, ErrNotImage
	}

	dict := ref.stream.Dict
	data, codec, err := ref.stream.DecodeImage()
	if err != nil {
		return nil, fmt.Errorf("failed to decode image stream: %w", err)
	}

	if codec != "" {
		if len(data) == 0 {
			return nil, fmt.Errorf("empty %s stream", codec)
		}
		width, _ := r.intEntry(dict, "Width")
		height, _ := r.intEntry(dict, "Height")
		bpc, _ := r.intEntry(dict, "BitsPerComponent")
		cs, _ := r.colorSpace(dict.Get("ColorSpace"), ref.resources, 0)
		return &RawImage{
			Data:             data,
			Format:           format.FromFilter(codec),
			Width:            width,
			Height:           height,
			ColorSpace:       cs.name,
			BitsPerComponent: bpc,
		}, nil
	}

	img, err := r.pageImage(ref.Name, ref.stream, data, ref.resources)
	if err != nil {
		return nil, err
	}

	png, err := img.ToPNG()
	if err != nil {
		return nil, err
	}

	return &RawImage{
		Data:             png,
		Format:           format.PNG,
		Width:            img.Width,
		Height:           img.Height,
		ColorSpace:       img.ColorSpace,
		BitsPerComponent: img.BitsPerComponent,
	}, nil
}

// DecodePageImage decodes an image's samples without encoding them. Images
// compressed with DCT, JPX or JBIG2 are rejected with format.ErrUnsupported.
func (r *Reader) DecodePageImage(ref ImageRef) (*PageImage, error) {
	if ref.err != nil {
		return nil, ref.err
	}
	if ref.stream == nil {
		return nil, ErrNotImage
	}

	data, codec, err := ref.stream.DecodeImage()
	if err != nil {
		return nil, fmt.Errorf("failed to decode image stream: %w", err)
	}
	if codec != "" {
		return nil, fmt.Errorf("%s: %w", codec, format.ErrUnsupported)
	}

	return r.pageImage(ref.Name, ref.stream, data, ref.resources)
}

// pageImage collects the attributes of an image dictionary around its
// decoded samples.
func (r *Reader) pageImage(name string, stream *core.Stream, data []byte, resources core.Dict) (*PageImage, error) {
	dict := stream.Dict
	width, err := r.intEntry(dict, "Width")
	if err != nil {
		return nil, err
	}
	height, err := r.intEntry(dict, "Height")
	if err != nil {
		return nil, err
	}

	img := &PageImage{
		Name:   name,
		Width:  width,
		Height: height,
		Data:   data,
	}
	if filters, err := stream.Filters(); err == nil && len(filters) > 0 {
		img.Filter = filters[len(filters)-1]
	}

	if mask, _ := dict.GetBool("ImageMask"); mask {
		img.ColorSpace = "DeviceGray"
		img.Components = 1
		img.BitsPerComponent = 1
	} else {
		bpc, err := r.intEntry(dict, "BitsPerComponent")
		if err != nil {
			bpc = 8
		}
		img.BitsPerComponent = bpc

		cs, err := r.colorSpace(dict.Get("ColorSpace"), resources, 0)
		if err != nil {
			return nil, err
		}
		img.ColorSpace = cs.name
		img.Components = cs.components
		img.Palette = cs.palette
		img.Invert = cs.subtractive
	}

	// A /Decode of [1 0] flips single-component samples
	if img.Palette == nil && img.Components == 1 {
		if decode, ok := dict.GetArray("Decode"); ok && len(decode) >= 2 {
			if number(decode[0]) > number(decode[1]) {
				img.Invert = !img.Invert
			}
		}
	}

	return img, nil
}

// intEntry reads a non-negative integer entry, following an indirect
// reference if needed.
func (r *Reader) intEntry(dict core.Dict, key string) (int, error) {
	obj := dict.Get(key)
	if obj == nil {
		return 0, fmt.Errorf("image missing /%s", key)
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve /%s: %w", key, err)
	}
	switch v := resolved.(type) {
	case core.Int:
		if v < 0 {
			return 0, fmt.Errorf("negative /%s: %d", key, v)
		}
		return int(v), nil
	case core.Real:
		if v < 0 {
			return 0, fmt.Errorf("negative /%s: %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("invalid /%s type: %T", key, resolved)
	}
}

func number(obj core.Object) float64 {
	switch v := obj.(type) {
	case core.Int:
		return float64(v)
	case core.Real:
		return float64(v)
	}
	return 0
}
