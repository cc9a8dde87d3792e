package reader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"
	"testing"

	"github.com/tsawler/pdfimages/core"
	"github.com/tsawler/pdfimages/format"
	"github.com/tsawler/pdfimages/internal/pdftest"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg.Encode failed: %v", err)
	}
	return buf.Bytes()
}

// firstPageRefs opens a built document and lists the images on page 1.
func firstPageRefs(t *testing.T, b *pdftest.Builder, root int) (*Reader, []ImageRef) {
	t.Helper()

	reader := openBuilt(t, b, root)
	page, err := reader.GetPage(0)
	if err != nil {
		t.Fatalf("failed to get page: %v", err)
	}
	refs, err := reader.PageImageRefs(page)
	if err != nil {
		t.Fatalf("PageImageRefs failed: %v", err)
	}
	return reader, refs
}

func refNames(refs []ImageRef) []string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}

func TestPageImageRefs_NaturalOrder(t *testing.T) {
	b := pdftest.New()
	a := b.AddGrayImage(1, 1, []byte{0})
	c := b.AddGrayImage(1, 1, []byte{0})
	d := b.AddGrayImage(1, 1, []byte{0})
	root := b.Pages(pdftest.Page{"Im10": a, "Im2": c, "Im1": d})

	_, refs := firstPageRefs(t, b, root)

	got := fmt.Sprint(refNames(refs))
	if want := "[Im1 Im2 Im10]"; got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
	if refs[0].SourceRef() != fmt.Sprintf("%d 0 R", d) {
		t.Errorf("SourceRef = %q, want %d 0 R", refs[0].SourceRef(), d)
	}
}

func TestPageImageRefs_NoXObjects(t *testing.T) {
	b := pdftest.New()
	root := b.Pages(pdftest.Page{})

	_, refs := firstPageRefs(t, b, root)
	if len(refs) != 0 {
		t.Errorf("expected no images, got %v", refNames(refs))
	}
}

func TestPageImageRefs_DuplicateObject(t *testing.T) {
	b := pdftest.New()
	img := b.AddGrayImage(1, 1, []byte{0})
	root := b.Pages(pdftest.Page{"ImA": img, "ImB": img})

	_, refs := firstPageRefs(t, b, root)
	if len(refs) != 1 || refs[0].Name != "ImA" {
		t.Errorf("expected a single ImA entry, got %v", refNames(refs))
	}
}

func TestPageImageRefs_FormDescent(t *testing.T) {
	b := pdftest.New()
	inner := b.AddGrayImage(1, 1, []byte{0})
	outer := b.AddGrayImage(1, 1, []byte{0})
	form := b.AddStream("/Type /XObject /Subtype /Form /BBox [0 0 10 10] /Resources << /XObject "+
		pdftest.XObjectDict(pdftest.Page{"Im5": inner})+" >>", []byte("q Q"))
	root := b.Pages(pdftest.Page{"Fm1": form, "Im1": outer})

	_, refs := firstPageRefs(t, b, root)

	got := fmt.Sprint(refNames(refs))
	if want := "[Fm1/Im5 Im1]"; got != want {
		t.Errorf("entries = %s, want %s", got, want)
	}
}

func TestPageImageRefs_SelfReferencingForm(t *testing.T) {
	b := pdftest.New()
	img := b.AddGrayImage(1, 1, []byte{0})
	form := b.Reserve()
	b.SetStream(form, fmt.Sprintf("/Type /XObject /Subtype /Form /BBox [0 0 1 1] /Resources << /XObject << /Fm1 %d 0 R /Im1 %d 0 R >> >>", form, img), []byte("q Q"))
	root := b.Pages(pdftest.Page{"Fm1": form})

	_, refs := firstPageRefs(t, b, root)
	if len(refs) != 1 || refs[0].Name != "Fm1/Im1" {
		t.Errorf("expected a single Fm1/Im1 entry, got %v", refNames(refs))
	}
}

func TestPageImageRefs_UnresolvableEntry(t *testing.T) {
	b := pdftest.New()
	img := b.AddGrayImage(1, 1, []byte{0})
	root := b.Pages(pdftest.Page{"Im1": img, "Im2": 99})

	reader, refs := firstPageRefs(t, b, root)
	if len(refs) != 2 {
		t.Fatalf("expected 2 entries, got %v", refNames(refs))
	}
	if refs[0].Err() != nil {
		t.Errorf("Im1 should resolve, got %v", refs[0].Err())
	}
	if refs[1].Err() == nil {
		t.Error("Im2 should report a resolution error")
	}
	if _, err := reader.RawImage(refs[1]); err == nil {
		t.Error("RawImage should fail for an unresolvable entry")
	}
}

func TestImageRef_SourceRef(t *testing.T) {
	direct := ImageRef{Name: "Im3"}
	if !direct.Direct() || direct.SourceRef() != "Im3" {
		t.Errorf("direct SourceRef = %q", direct.SourceRef())
	}

	indirect := ImageRef{Name: "Im3", Ref: core.IndirectRef{Number: 12, Generation: 1}}
	if indirect.Direct() || indirect.SourceRef() != "12 1 R" {
		t.Errorf("indirect SourceRef = %q", indirect.SourceRef())
	}
}

func TestRawImage_JPEGPassthrough(t *testing.T) {
	jpegData := testJPEG(t, 8, 8)

	b := pdftest.New()
	img := b.AddJPEGImage(8, 8, jpegData)
	root := b.Pages(pdftest.Page{"Im1": img})

	reader, refs := firstPageRefs(t, b, root)
	raw, err := reader.RawImage(refs[0])
	if err != nil {
		t.Fatalf("RawImage failed: %v", err)
	}

	if !bytes.Equal(raw.Data, jpegData) {
		t.Error("JPEG bytes should be returned as stored")
	}
	if raw.Format != format.JPEG || raw.Ext() != "jpeg" {
		t.Errorf("format = %s ext = %s, want JPEG jpeg", raw.Format, raw.Ext())
	}
	if raw.Width != 8 || raw.Height != 8 || raw.ColorSpace != "DeviceRGB" {
		t.Errorf("attributes = %dx%d %s", raw.Width, raw.Height, raw.ColorSpace)
	}
}

func TestRawImage_FlateThenDCT(t *testing.T) {
	jpegData := testJPEG(t, 4, 4)

	b := pdftest.New()
	img := b.AddImage(4, 4, "/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter [/FlateDecode /DCTDecode]", pdftest.Deflate(jpegData))
	root := b.Pages(pdftest.Page{"Im1": img})

	reader, refs := firstPageRefs(t, b, root)
	raw, err := reader.RawImage(refs[0])
	if err != nil {
		t.Fatalf("RawImage failed: %v", err)
	}
	if !bytes.Equal(raw.Data, jpegData) {
		t.Error("expected the JPEG payload beneath the Flate layer")
	}
}

func TestRawImage_CodecFormats(t *testing.T) {
	tests := []struct {
		filter string
		want   format.Format
		ext    string
	}{
		{"JPXDecode", format.JPX, "jpx"},
		{"JBIG2Decode", format.JBIG2, "jb2"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			payload := []byte("opaque codec payload")

			b := pdftest.New()
			img := b.AddImage(10, 10, "/BitsPerComponent 1 /Filter /"+tt.filter, payload)
			root := b.Pages(pdftest.Page{"Im1": img})

			reader, refs := firstPageRefs(t, b, root)
			raw, err := reader.RawImage(refs[0])
			if err != nil {
				t.Fatalf("RawImage failed: %v", err)
			}
			if raw.Format != tt.want || raw.Ext() != tt.ext {
				t.Errorf("format = %s ext = %s, want %s %s", raw.Format, raw.Ext(), tt.want, tt.ext)
			}
			if !bytes.Equal(raw.Data, payload) {
				t.Error("codec payload should be returned unchanged")
			}
		})
	}
}

func TestRawImage_FlateGrayToPNG(t *testing.T) {
	b := pdftest.New()
	img := b.AddGrayImage(3, 2, []byte{0, 128, 255, 255, 128, 0})
	root := b.Pages(pdftest.Page{"Im1": img})

	reader, refs := firstPageRefs(t, b, root)
	raw, err := reader.RawImage(refs[0])
	if err != nil {
		t.Fatalf("RawImage failed: %v", err)
	}
	if raw.Format != format.PNG || raw.Ext() != "png" {
		t.Fatalf("format = %s, want PNG", raw.Format)
	}

	decoded, err := png.Decode(bytes.NewReader(raw.Data))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	gray := decoded.(*image.Gray)
	if gray.Bounds().Dx() != 3 || gray.Bounds().Dy() != 2 {
		t.Errorf("dimensions = %v, want 3x2", gray.Bounds())
	}
	if gray.GrayAt(1, 0).Y != 128 || gray.GrayAt(0, 1).Y != 255 {
		t.Error("pixel values changed in conversion")
	}
}

func TestRawImage_Indexed(t *testing.T) {
	b := pdftest.New()
	img := b.AddImage(2, 1, "/ColorSpace [/Indexed /DeviceRGB 1 <FF000000FF00>] /BitsPerComponent 8", []byte{0, 1})
	root := b.Pages(pdftest.Page{"Im1": img})

	reader, refs := firstPageRefs(t, b, root)
	raw, err := reader.RawImage(refs[0])
	if err != nil {
		t.Fatalf("RawImage failed: %v", err)
	}
	if raw.ColorSpace != "Indexed" {
		t.Errorf("ColorSpace = %q, want Indexed", raw.ColorSpace)
	}

	decoded, err := png.Decode(bytes.NewReader(raw.Data))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	red := color.RGBAModel.Convert(decoded.At(0, 0)).(color.RGBA)
	green := color.RGBAModel.Convert(decoded.At(1, 0)).(color.RGBA)
	if red != (color.RGBA{R: 255, A: 255}) || green != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("palette colors = %v %v, want red green", red, green)
	}
}

func TestRawImage_ICCBased(t *testing.T) {
	b := pdftest.New()
	profile := b.AddStream("/N 3", []byte("profile"))
	img := b.AddImage(1, 1, fmt.Sprintf("/ColorSpace [/ICCBased %d 0 R] /BitsPerComponent 8", profile), []byte{10, 20, 30})
	root := b.Pages(pdftest.Page{"Im1": img})

	reader, refs := firstPageRefs(t, b, root)
	decoded, err := reader.DecodePageImage(refs[0])
	if err != nil {
		t.Fatalf("DecodePageImage failed: %v", err)
	}
	if decoded.ColorSpace != "ICCBased" || decoded.Components != 3 {
		t.Errorf("got %s with %d components, want ICCBased with 3", decoded.ColorSpace, decoded.Components)
	}
}

func TestRawImage_NamedColorSpace(t *testing.T) {
	b := pdftest.New()
	img := b.AddImage(1, 1, "/ColorSpace /CS0 /BitsPerComponent 8", []byte{0})
	form := b.AddStream(fmt.Sprintf("/Subtype /Form /BBox [0 0 1 1] /Resources << /ColorSpace << /CS0 [/Indexed /DeviceGray 0 <80>] >> /XObject << /Im1 %d 0 R >> >>", img), []byte("q Q"))
	root := b.Pages(pdftest.Page{"Fm0": form})

	reader, refs := firstPageRefs(t, b, root)
	decoded, err := reader.DecodePageImage(refs[0])
	if err != nil {
		t.Fatalf("DecodePageImage failed: %v", err)
	}
	if len(decoded.Palette) != 1 {
		t.Fatalf("expected a 1-entry palette, got %d", len(decoded.Palette))
	}
	if got := decoded.Palette[0].(color.RGBA); got != (color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 255}) {
		t.Errorf("palette[0] = %v", got)
	}
}

func TestRawImage_ImageMaskDecode(t *testing.T) {
	b := pdftest.New()
	img := b.AddImage(2, 1, "/ImageMask true /Decode [1 0]", []byte{0b10000000})
	root := b.Pages(pdftest.Page{"Im1": img})

	reader, refs := firstPageRefs(t, b, root)
	decoded, err := reader.DecodePageImage(refs[0])
	if err != nil {
		t.Fatalf("DecodePageImage failed: %v", err)
	}
	goImg, err := decoded.Image()
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	gray := goImg.(*image.Gray)
	if gray.GrayAt(0, 0).Y != 0 || gray.GrayAt(1, 0).Y != 255 {
		t.Errorf("mask pixels = %d,%d, want 0,255", gray.GrayAt(0, 0).Y, gray.GrayAt(1, 0).Y)
	}
}

func TestRawImage_Failures(t *testing.T) {
	tests := []struct {
		name string
		dict string
		data []byte
	}{
		{"corrupt flate", "/ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode", []byte("not zlib data")},
		{"short samples", "/ColorSpace /DeviceRGB /BitsPerComponent 8", []byte{1, 2}},
		{"pattern space", "/ColorSpace [/Pattern] /BitsPerComponent 8", make([]byte, 64)},
		{"empty jpeg", "/Filter /DCTDecode", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pdftest.New()
			img := b.AddImage(4, 4, tt.dict, tt.data)
			root := b.Pages(pdftest.Page{"Im1": img})

			reader, refs := firstPageRefs(t, b, root)
			if _, err := reader.RawImage(refs[0]); err == nil {
				t.Error("expected RawImage to fail")
			}
		})
	}
}

func TestDecodePageImage_CodecRejected(t *testing.T) {
	b := pdftest.New()
	img := b.AddJPEGImage(8, 8, testJPEG(t, 8, 8))
	root := b.Pages(pdftest.Page{"Im1": img})

	reader, refs := firstPageRefs(t, b, root)
	_, err := reader.DecodePageImage(refs[0])
	if !errors.Is(err, format.ErrUnsupported) {
		t.Errorf("expected format.ErrUnsupported, got %v", err)
	}
}

func TestNaturalLess(t *testing.T) {
	names := []string{"Im10", "Im2", "Im1", "Fm1", "Im02", "X", "Im2a", "Im"}
	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })

	got := fmt.Sprint(names)
	want := "[Fm1 Im Im1 Im2 Im2a Im02 Im10 X]"
	if got != want {
		t.Errorf("sorted = %s, want %s", got, want)
	}
}
