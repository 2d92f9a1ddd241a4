package style

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Equal(t, "png", Default().Extension())
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	c := Config{Color: "#1A4D8F", Format: FormatSVG}.WithDefaults()

	assert.Equal(t, "#1A4D8F", c.Color)
	assert.Equal(t, FormatSVG, c.Format)
	assert.Equal(t, DotSquare, c.Dots)
	assert.Equal(t, ECHigh, c.ErrorCorrection)
	assert.Equal(t, PreviewSize, c.Width)
	require.NoError(t, c.Validate())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#000000", want: color.RGBA{A: 0xff}},
		{in: "#ED6A33", want: color.RGBA{R: 0xED, G: 0x6A, B: 0x33, A: 0xff}},
		{in: "2a7432", want: color.RGBA{R: 0x2A, G: 0x74, B: 0x32, A: 0xff}},
		{in: "#fff", want: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{in: "#12345", wantErr: true},
		{in: "blue", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidStyle)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPresetColors_Parse(t *testing.T) {
	for _, c := range PresetColors {
		_, err := ParseColor(c)
		assert.NoError(t, err, c)
	}
}

func TestParseEnums(t *testing.T) {
	d, err := ParseDotShape("Rounded")
	require.NoError(t, err)
	assert.Equal(t, DotRounded, d)

	b, err := ParseMarkerBorder("extra-rounded")
	require.NoError(t, err)
	assert.Equal(t, BorderExtraRounded, b)

	c, err := ParseMarkerCenter("dot")
	require.NoError(t, err)
	assert.Equal(t, CenterDot, c)

	f, err := ParseFormat("jpg")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)

	_, err = ParseDotShape("stars")
	assert.ErrorIs(t, err, ErrInvalidStyle)
	_, err = ParseMarkerBorder("rounded")
	assert.ErrorIs(t, err, ErrInvalidStyle)
	_, err = ParseMarkerCenter("extra-rounded")
	assert.ErrorIs(t, err, ErrInvalidStyle)
	_, err = ParseFormat("gif")
	assert.ErrorIs(t, err, ErrInvalidStyle)
	_, err = ParseErrorCorrection("max")
	assert.ErrorIs(t, err, ErrInvalidStyle)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad color", func(c *Config) { c.Color = "#zzzzzz" }},
		{"bad background", func(c *Config) { c.Background = "white" }},
		{"bad dots", func(c *Config) { c.Dots = "hearts" }},
		{"bad format", func(c *Config) { c.Format = "bmp" }},
		{"logo too big", func(c *Config) { c.LogoRatio = 0.9 }},
		{"negative margin", func(c *Config) { c.LogoMargin = -1 }},
		{"negative size", func(c *Config) { c.Width = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidStyle)
		})
	}
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, "image/jpeg", FormatJPEG.ContentType())
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
}

func TestConfig_Set(t *testing.T) {
	c := Default()

	require.NoError(t, c.Set("color", "#ED6A33"))
	require.NoError(t, c.Set("background", "fff"))
	require.NoError(t, c.Set("dots", "Rounded"))
	require.NoError(t, c.Set("marker_border", "extra-rounded"))
	require.NoError(t, c.Set("marker_center", "dot"))
	require.NoError(t, c.Set("format", "jpg"))
	require.NoError(t, c.Set("error_correction", "low"))
	require.NoError(t, c.Set("logo_ratio", "0.3"))
	require.NoError(t, c.Set("logo_margin", "2"))

	assert.Equal(t, "#ED6A33", c.Color)
	assert.Equal(t, "fff", c.Background)
	assert.Equal(t, DotRounded, c.Dots)
	assert.Equal(t, BorderExtraRounded, c.MarkerBorder)
	assert.Equal(t, CenterDot, c.MarkerCenter)
	assert.Equal(t, FormatJPEG, c.Format)
	assert.Equal(t, ECLow, c.ErrorCorrection)
	assert.InDelta(t, 0.3, c.LogoRatio, 1e-9)
	assert.Equal(t, 2, c.LogoMargin)
	require.NoError(t, c.Validate())

	for _, bad := range [][2]string{
		{"color", "nope"},
		{"dots", "hearts"},
		{"logo_ratio", "big"},
		{"logo_margin", "1.5"},
		{"sparkle", "yes"},
	} {
		err := c.Set(bad[0], bad[1])
		assert.ErrorIs(t, err, ErrInvalidStyle, bad[0])
	}
	assert.Equal(t, "#ED6A33", c.Color, "failed Set leaves the field unchanged")
}
