package reader

import (
	"fmt"
	"image/color"

	"github.com/tsawler/pdfimages/core"
)

// maxColorSpaceDepth bounds resolution of named and nested color spaces.
const maxColorSpaceDepth = 4

// imageColorSpace is a color space reduced to what sample conversion needs.
type imageColorSpace struct {
	name        string
	components  int
	palette     color.Palette // Indexed only
	subtractive bool          // single tint component where 1 means full ink
}

// colorSpace resolves an image /ColorSpace entry. Names that are not device
// families are looked up in the /ColorSpace resources. A missing entry is
// treated as DeviceGray.
func (r *Reader) colorSpace(obj core.Object, resources core.Dict, depth int) (imageColorSpace, error) {
	if obj == nil {
		return imageColorSpace{name: "DeviceGray", components: 1}, nil
	}
	if depth > maxColorSpaceDepth {
		return imageColorSpace{}, fmt.Errorf("color space nested too deeply")
	}

	resolved, err := r.Resolve(obj)
	if err != nil {
		return imageColorSpace{}, fmt.Errorf("failed to resolve color space: %w", err)
	}

	switch v := resolved.(type) {
	case core.Name:
		if cs, ok := deviceColorSpace(string(v)); ok {
			return cs, nil
		}
		return r.namedColorSpace(string(v), resources, depth)

	case core.Array:
		if len(v) == 0 {
			return imageColorSpace{}, fmt.Errorf("empty color space array")
		}
		family, ok := v[0].(core.Name)
		if !ok {
			return imageColorSpace{}, fmt.Errorf("invalid color space family: %T", v[0])
		}
		return r.arrayColorSpace(string(family), v, resources, depth)

	default:
		return imageColorSpace{}, fmt.Errorf("invalid color space type: %T", resolved)
	}
}

// deviceColorSpace maps device and CIE family names, including the
// abbreviations allowed in inline images.
func deviceColorSpace(name string) (imageColorSpace, bool) {
	switch name {
	case "DeviceGray", "G", "CalGray":
		return imageColorSpace{name: canonicalFamily(name), components: 1}, true
	case "DeviceRGB", "RGB", "CalRGB", "Lab":
		return imageColorSpace{name: canonicalFamily(name), components: 3}, true
	case "DeviceCMYK", "CMYK":
		return imageColorSpace{name: canonicalFamily(name), components: 4}, true
	}
	return imageColorSpace{}, false
}

func canonicalFamily(name string) string {
	switch name {
	case "G":
		return "DeviceGray"
	case "RGB":
		return "DeviceRGB"
	case "CMYK":
		return "DeviceCMYK"
	case "I":
		return "Indexed"
	}
	return name
}

func (r *Reader) namedColorSpace(name string, resources core.Dict, depth int) (imageColorSpace, error) {
	if resources != nil {
		if csObj := resources.Get("ColorSpace"); csObj != nil {
			if csResolved, err := r.Resolve(csObj); err == nil {
				if csDict, ok := csResolved.(core.Dict); ok {
					if entry := csDict.Get(name); entry != nil {
						return r.colorSpace(entry, resources, depth+1)
					}
				}
			}
		}
	}
	return imageColorSpace{}, fmt.Errorf("unknown color space: %s", name)
}

func (r *Reader) arrayColorSpace(family string, arr core.Array, resources core.Dict, depth int) (imageColorSpace, error) {
	switch family {
	case "ICCBased":
		return r.iccColorSpace(arr, resources, depth)

	case "Indexed", "I":
		return r.indexedColorSpace(arr, resources, depth)

	case "Separation":
		return imageColorSpace{name: "Separation", components: 1, subtractive: true}, nil

	case "DeviceN":
		if len(arr) > 1 {
			if names, err := r.Resolve(arr[1]); err == nil {
				if n, ok := names.(core.Array); ok && len(n) == 1 {
					return imageColorSpace{name: "DeviceN", components: 1, subtractive: true}, nil
				}
			}
		}
		return imageColorSpace{}, fmt.Errorf("unsupported color space: DeviceN")

	case "Pattern":
		return imageColorSpace{}, fmt.Errorf("unsupported color space: Pattern")

	default:
		if cs, ok := deviceColorSpace(family); ok {
			return cs, nil
		}
		return imageColorSpace{}, fmt.Errorf("unknown color space: %s", family)
	}
}

// iccColorSpace reads the component count /N from the profile stream,
// falling back to its /Alternate space.
func (r *Reader) iccColorSpace(arr core.Array, resources core.Dict, depth int) (imageColorSpace, error) {
	if len(arr) < 2 {
		return imageColorSpace{}, fmt.Errorf("ICCBased color space missing profile")
	}
	profileObj, err := r.Resolve(arr[1])
	if err != nil {
		return imageColorSpace{}, fmt.Errorf("failed to resolve ICC profile: %w", err)
	}
	profile, ok := profileObj.(*core.Stream)
	if !ok {
		return imageColorSpace{}, fmt.Errorf("invalid ICC profile type: %T", profileObj)
	}

	if n, err := r.intEntry(profile.Dict, "N"); err == nil {
		switch n {
		case 1, 3, 4:
			return imageColorSpace{name: "ICCBased", components: n}, nil
		}
	}
	if alt := profile.Dict.Get("Alternate"); alt != nil {
		cs, err := r.colorSpace(alt, resources, depth+1)
		if err != nil {
			return imageColorSpace{}, err
		}
		cs.name = "ICCBased"
		return cs, nil
	}
	return imageColorSpace{}, fmt.Errorf("ICC profile has no usable /N")
}

// indexedColorSpace builds the palette of [/Indexed base hival lookup].
func (r *Reader) indexedColorSpace(arr core.Array, resources core.Dict, depth int) (imageColorSpace, error) {
	if len(arr) < 4 {
		return imageColorSpace{}, fmt.Errorf("Indexed color space needs 4 elements, got %d", len(arr))
	}

	base, err := r.colorSpace(arr[1], resources, depth+1)
	if err != nil {
		return imageColorSpace{}, fmt.Errorf("Indexed base: %w", err)
	}
	if base.palette != nil {
		return imageColorSpace{}, fmt.Errorf("Indexed base cannot be Indexed")
	}

	hivalObj, err := r.Resolve(arr[2])
	if err != nil {
		return imageColorSpace{}, fmt.Errorf("failed to resolve hival: %w", err)
	}
	hival := int(number(hivalObj))
	if hival < 0 || hival > 255 {
		return imageColorSpace{}, fmt.Errorf("Indexed hival out of range: %d", hival)
	}

	lookupObj, err := r.Resolve(arr[3])
	if err != nil {
		return imageColorSpace{}, fmt.Errorf("failed to resolve lookup table: %w", err)
	}
	var lookup []byte
	switch v := lookupObj.(type) {
	case core.String:
		lookup = []byte(v)
	case *core.Stream:
		lookup, err = v.Decoded()
		if err != nil {
			return imageColorSpace{}, fmt.Errorf("failed to decode lookup table: %w", err)
		}
	default:
		return imageColorSpace{}, fmt.Errorf("invalid lookup table type: %T", lookupObj)
	}

	return imageColorSpace{
		name:       "Indexed",
		components: 1,
		palette:    buildPalette(base, hival, lookup),
	}, nil
}

// buildPalette converts hival+1 lookup entries of the base space to RGB.
// Entries missing from a short table are black.
func buildPalette(base imageColorSpace, hival int, lookup []byte) color.Palette {
	n := base.components
	palette := make(color.Palette, hival+1)
	for i := range palette {
		off := i * n
		if off+n > len(lookup) {
			palette[i] = color.RGBA{A: 255}
			continue
		}
		entry := lookup[off : off+n]

		switch n {
		case 1:
			g := entry[0]
			if base.subtractive {
				g = 255 - g
			}
			palette[i] = color.RGBA{R: g, G: g, B: g, A: 255}
		case 3:
			palette[i] = color.RGBA{R: entry[0], G: entry[1], B: entry[2], A: 255}
		case 4:
			cr, cg, cb := color.CMYKToRGB(entry[0], entry[1], entry[2], entry[3])
			palette[i] = color.RGBA{R: cr, G: cg, B: cb, A: 255}
		default:
			palette[i] = color.RGBA{A: 255}
		}
	}
	return palette
}
