package analyze

import (
	"errors"
	"fmt"
)

// Default heuristic thresholds.
const (
	DefaultSmallArea       = 50_000
	DefaultMediumArea      = 500_000
	DefaultLandscapeRatio  = 1.3
	DefaultPortraitRatio   = 0.7
	DefaultPaletteCap      = 256
	DefaultChartGrayLevels = 10
	DefaultContrastRatio   = 0.7
	DefaultDarkLimit       = 85
	DefaultLightStart      = 170
)

// Thresholds tunes the description and classification heuristics.
//
// In a Thresholds literal zero fields take their default value, so a
// partially filled literal only overrides what it sets. To set a field to
// zero, start from DefaultThresholds and change it there; every field of a
// value derived from DefaultThresholds or WithDefaults is used as is.
type Thresholds struct {
	// SmallArea and MediumArea are pixel counts: images below SmallArea
	// are "small", below MediumArea "medium", otherwise "large".
	SmallArea  int
	MediumArea int

	// Width/height above LandscapeRatio is landscape, below PortraitRatio
	// portrait, otherwise square.
	LandscapeRatio float64
	PortraitRatio  float64

	// PaletteCap is the most distinct colors counted before a palette is
	// reported as complex.
	PaletteCap int

	// ChartGrayLevels: fewer distinct gray levels than this hints at a
	// chart, diagram or logo.
	ChartGrayLevels int

	// ContrastRatio is the share of dark plus light pixels above which an
	// image is classified as chart/diagram/text.
	ContrastRatio float64

	// DarkLimit is the first gray level that is not dark; LightStart the
	// first level counted as light.
	DarkLimit  int
	LightStart int

	// complete marks a value whose zero fields are meant as zero.
	complete bool
}

// DefaultThresholds returns the default heuristic thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SmallArea:       DefaultSmallArea,
		MediumArea:      DefaultMediumArea,
		LandscapeRatio:  DefaultLandscapeRatio,
		PortraitRatio:   DefaultPortraitRatio,
		PaletteCap:      DefaultPaletteCap,
		ChartGrayLevels: DefaultChartGrayLevels,
		ContrastRatio:   DefaultContrastRatio,
		DarkLimit:       DefaultDarkLimit,
		LightStart:      DefaultLightStart,
		complete:        true,
	}
}

// WithDefaults returns t with every zero field replaced by its default. A
// value obtained from DefaultThresholds or WithDefaults is returned
// unchanged.
func (t Thresholds) WithDefaults() Thresholds {
	if t.complete {
		return t
	}
	d := DefaultThresholds()
	if t.SmallArea == 0 {
		t.SmallArea = d.SmallArea
	}
	if t.MediumArea == 0 {
		t.MediumArea = d.MediumArea
	}
	if t.LandscapeRatio == 0 {
		t.LandscapeRatio = d.LandscapeRatio
	}
	if t.PortraitRatio == 0 {
		t.PortraitRatio = d.PortraitRatio
	}
	if t.PaletteCap == 0 {
		t.PaletteCap = d.PaletteCap
	}
	if t.ChartGrayLevels == 0 {
		t.ChartGrayLevels = d.ChartGrayLevels
	}
	if t.ContrastRatio == 0 {
		t.ContrastRatio = d.ContrastRatio
	}
	if t.DarkLimit == 0 {
		t.DarkLimit = d.DarkLimit
	}
	if t.LightStart == 0 {
		t.LightStart = d.LightStart
	}
	t.complete = true
	return t
}

// Validate reports thresholds that cannot produce a sensible result, after
// defaults are applied.
func (t Thresholds) Validate() error {
	t = t.WithDefaults()

	var errs []error
	if t.SmallArea < 0 || t.MediumArea < 0 {
		errs = append(errs, fmt.Errorf("areas must not be negative"))
	}
	if t.SmallArea > t.MediumArea {
		errs = append(errs, fmt.Errorf("small area %d exceeds medium area %d", t.SmallArea, t.MediumArea))
	}
	if t.PortraitRatio < 0 || t.LandscapeRatio < 0 {
		errs = append(errs, fmt.Errorf("aspect ratios must not be negative"))
	}
	if t.PortraitRatio > t.LandscapeRatio {
		errs = append(errs, fmt.Errorf("portrait ratio %g exceeds landscape ratio %g", t.PortraitRatio, t.LandscapeRatio))
	}
	if t.PaletteCap < 1 {
		errs = append(errs, fmt.Errorf("palette cap must be at least 1, got %d", t.PaletteCap))
	}
	if t.ChartGrayLevels < 0 {
		errs = append(errs, fmt.Errorf("chart gray levels must not be negative, got %d", t.ChartGrayLevels))
	}
	if t.ContrastRatio < 0 || t.ContrastRatio > 1 {
		errs = append(errs, fmt.Errorf("contrast ratio must be within [0, 1], got %g", t.ContrastRatio))
	}
	if t.DarkLimit < 0 || t.DarkLimit > 256 || t.LightStart < 0 || t.LightStart > 256 {
		errs = append(errs, fmt.Errorf("gray bands must be within [0, 256]"))
	}
	if t.DarkLimit > t.LightStart {
		errs = append(errs, fmt.Errorf("dark limit %d overlaps light start %d", t.DarkLimit, t.LightStart))
	}
	return errors.Join(errs...)
}
