// Package style defines the rendering options shared by every QR code in a
// generation run.
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidStyle is returned (wrapped) by Validate and the Parse helpers.
const ErrInvalidStyle = constError("invalid style")

// DotShape is the shape of the data modules.
type DotShape string

// Dot shapes.
const (
	DotSquare  DotShape = "square"
	DotRounded DotShape = "rounded"
	DotDots    DotShape = "dots"
)

// MarkerBorder is the shape of the outer ring of the three finder patterns.
type MarkerBorder string

// Marker border shapes.
const (
	BorderSquare       MarkerBorder = "square"
	BorderExtraRounded MarkerBorder = "extra-rounded"
	BorderDot          MarkerBorder = "dot"
)

// MarkerCenter is the shape of the 3x3 center of the finder patterns.
type MarkerCenter string

// Marker center shapes.
const (
	CenterSquare MarkerCenter = "square"
	CenterDot    MarkerCenter = "dot"
)

// Format is the output image encoding.
type Format string

// Output formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
)

// ErrorCorrection is the QR error-correction level.
type ErrorCorrection string

// Error-correction levels. High corresponds to QR level Q.
const (
	ECLow     ErrorCorrection = "low"
	ECMedium  ErrorCorrection = "medium"
	ECHigh    ErrorCorrection = "high"
	ECHighest ErrorCorrection = "highest"
)

// Sizes used by the renderers.
const (
	// BatchSize is the pixel size of every image rendered in a bulk run.
	BatchSize = 1000
	// PreviewSize is the default size of a single generated image.
	PreviewSize = 300
	// DefaultLogoRatio is the fraction of the symbol the logo may cover.
	DefaultLogoRatio = 0.4
	// MaxLogoRatio caps LogoRatio so the symbol stays decodable.
	MaxLogoRatio = 0.5
)

// PresetColors are the quick-pick foreground colors.
//
//nolint:gochecknoglobals // read-only lookup table
var PresetColors = []string{"#000000", "#1A4D8F", "#ED6A33", "#ED2B2A", "#2A7432"}

// Config is a snapshot of rendering options. One Config applies to every
// record of a run; callers must not mutate it while a run is in progress.
type Config struct {
	Color           string          `yaml:"color" json:"color"`
	Background      string          `yaml:"background" json:"background"`
	Dots            DotShape        `yaml:"dots" json:"dots"`
	MarkerBorder    MarkerBorder    `yaml:"marker_border" json:"marker_border"`
	MarkerCenter    MarkerCenter    `yaml:"marker_center" json:"marker_center"`
	Format          Format          `yaml:"format" json:"format"`
	ErrorCorrection ErrorCorrection `yaml:"error_correction" json:"error_correction"`
	LogoRatio       float64         `yaml:"logo_ratio" json:"logo_ratio"`
	LogoMargin      int             `yaml:"logo_margin" json:"logo_margin"`
	Width           int             `yaml:"width,omitempty" json:"width,omitempty"`
	Height          int             `yaml:"height,omitempty" json:"height,omitempty"`

	// Logo holds raw image bytes. It is never persisted.
	Logo []byte `yaml:"-" json:"-"`
}

// Default returns the style used when nothing else is configured.
func Default() Config {
	return Config{
		Color:           PresetColors[0],
		Background:      "#ffffff",
		Dots:            DotSquare,
		MarkerBorder:    BorderSquare,
		MarkerCenter:    CenterSquare,
		Format:          FormatPNG,
		ErrorCorrection: ECHigh,
		LogoRatio:       DefaultLogoRatio,
		Width:           PreviewSize,
		Height:          PreviewSize,
	}
}

// WithDefaults fills zero-valued fields from Default.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.Color == "" {
		c.Color = d.Color
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	if c.Dots == "" {
		c.Dots = d.Dots
	}
	if c.MarkerBorder == "" {
		c.MarkerBorder = d.MarkerBorder
	}
	if c.MarkerCenter == "" {
		c.MarkerCenter = d.MarkerCenter
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.ErrorCorrection == "" {
		c.ErrorCorrection = d.ErrorCorrection
	}
	if c.LogoRatio == 0 {
		c.LogoRatio = d.LogoRatio
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	return c
}

// Validate checks every enum and color in c.
func (c Config) Validate() error {
	if _, err := ParseColor(c.Color); err != nil {
		return err
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	if _, err := ParseDotShape(string(c.Dots)); err != nil {
		return err
	}
	if _, err := ParseMarkerBorder(string(c.MarkerBorder)); err != nil {
		return err
	}
	if _, err := ParseMarkerCenter(string(c.MarkerCenter)); err != nil {
		return err
	}
	if _, err := ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if _, err := ParseErrorCorrection(string(c.ErrorCorrection)); err != nil {
		return err
	}
	if c.LogoRatio <= 0 || c.LogoRatio > MaxLogoRatio {
		return fmt.Errorf("%w: logo ratio must be in (0, %.1f], got %g", ErrInvalidStyle, MaxLogoRatio, c.LogoRatio)
	}
	if c.LogoMargin < 0 {
		return fmt.Errorf("%w: logo margin must be >= 0, got %d", ErrInvalidStyle, c.LogoMargin)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidStyle, c.Width, c.Height)
	}
	return nil
}

// Extension returns the file extension for the configured format.
func (c Config) Extension() string {
	return string(c.Format)
}

// ContentType returns the MIME type for the configured format.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// ParseColor parses a "#rrggbb" or "#rgb" hex color.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %w", ErrInvalidStyle, s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// ParseDotShape validates a dot shape name.
func ParseDotShape(s string) (DotShape, error) {
	switch v := DotShape(strings.ToLower(s)); v {
	case DotSquare, DotRounded, DotDots:
		return v, nil
	}
	return "", fmt.Errorf("%w: dot shape %q (want square, rounded or dots)", ErrInvalidStyle, s)
}

// ParseMarkerBorder validates a marker border name.
func ParseMarkerBorder(s string) (MarkerBorder, error) {
	switch v := MarkerBorder(strings.ToLower(s)); v {
	case BorderSquare, BorderExtraRounded, BorderDot:
		return v, nil
	}
	return "", fmt.Errorf("%w: marker border %q (want square, extra-rounded or dot)", ErrInvalidStyle, s)
}

// ParseMarkerCenter validates a marker center name.
func ParseMarkerCenter(s string) (MarkerCenter, error) {
	switch v := MarkerCenter(strings.ToLower(s)); v {
	case CenterSquare, CenterDot:
		return v, nil
	}
	return "", fmt.Errorf("%w: marker center %q (want square or dot)", ErrInvalidStyle, s)
}

// ParseFormat validates an output format name. "jpg" is accepted as jpeg.
func ParseFormat(s string) (Format, error) {
	v := Format(strings.ToLower(s))
	if v == "jpg" {
		v = FormatJPEG
	}
	switch v {
	case FormatPNG, FormatJPEG, FormatSVG:
		return v, nil
	}
	return "", fmt.Errorf("%w: format %q (want png, jpeg or svg)", ErrInvalidStyle, s)
}

// ParseErrorCorrection validates an error-correction level name.
func ParseErrorCorrection(s string) (ErrorCorrection, error) {
	switch v := ErrorCorrection(strings.ToLower(s)); v {
	case ECLow, ECMedium, ECHigh, ECHighest:
		return v, nil
	}
	return "", fmt.Errorf("%w: error correction %q (want low, medium, high or highest)", ErrInvalidStyle, s)
}

// Field names accepted by Set, in the order they are usually presented.
//
//nolint:gochecknoglobals // read-only table
var Fields = []string{
	"color", "background", "dots", "marker_border", "marker_center",
	"format", "error_correction", "logo_ratio", "logo_margin",
}

// Set parses value and assigns it to the named field. It is the shared path
// for command-line flags and form fields. On error c is left unchanged.
func (c *Config) Set(field, value string) error {
	next := *c
	var err error
	switch field {
	case "color":
		_, err = ParseColor(value)
		next.Color = value
	case "background":
		_, err = ParseColor(value)
		next.Background = value
	case "dots":
		next.Dots, err = ParseDotShape(value)
	case "marker_border":
		next.MarkerBorder, err = ParseMarkerBorder(value)
	case "marker_center":
		next.MarkerCenter, err = ParseMarkerCenter(value)
	case "format":
		next.Format, err = ParseFormat(value)
	case "error_correction":
		next.ErrorCorrection, err = ParseErrorCorrection(value)
	case "logo_ratio":
		if next.LogoRatio, err = strconv.ParseFloat(value, 64); err != nil {
			err = fmt.Errorf("%w: logo_ratio %q: %w", ErrInvalidStyle, value, err)
		}
	case "logo_margin":
		if next.LogoMargin, err = strconv.Atoi(value); err != nil {
			err = fmt.Errorf("%w: logo_margin %q: %w", ErrInvalidStyle, value, err)
		}
	default:
		err = fmt.Errorf("%w: unknown field %q", ErrInvalidStyle, field)
	}
	if err != nil {
		return err
	}
	*c = next
	return nil
}
