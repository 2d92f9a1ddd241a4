// Package render projects a (data, style) pair to an encoded QR image.
//
// Every call builds its own symbol and canvas; nothing is shared between
// calls, so a Renderer may be used from several goroutines at once.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/rshade/qrbatch/internal/style"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Render errors. Compare with errors.Is.
var (
	// ErrEncode wraps symbol encoding failures, most often a payload that
	// exceeds the capacity of the chosen error-correction level.
	ErrEncode = constError("qr encoding failed")

	// ErrCanvasTooSmall means the requested size cannot fit one pixel per module.
	ErrCanvasTooSmall = constError("canvas too small for qr symbol")

	// ErrLogo means the logo bytes could not be decoded.
	ErrLogo = constError("invalid logo image")
)

// jpegQuality is used for jpeg output.
const jpegQuality = 92

// Request is a single render invocation.
type Request struct {
	Data   string
	Style  style.Config
	Width  int
	Height int
}

// Renderer produces image bytes in the request's format.
type Renderer interface {
	Render(ctx context.Context, req Request) ([]byte, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, req Request) ([]byte, error)

// Render calls f(ctx, req).
func (f RendererFunc) Render(ctx context.Context, req Request) ([]byte, error) { return f(ctx, req) }

// QR renders styled QR codes with go-qrcode as the symbol encoder.
type QR struct{}

// New returns a QR renderer.
func New() QR { return QR{} }

// Render implements Renderer.
func (QR) Render(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := req.Style.WithDefaults()
	if err := st.Validate(); err != nil {
		return nil, err
	}

	width, height := req.Width, req.Height
	if width == 0 {
		width = st.Width
	}
	if height == 0 {
		height = st.Height
	}

	modules, err := Modules(req.Data, st.ErrorCorrection)
	if err != nil {
		return nil, err
	}

	l, err := newLayout(modules, width, height)
	if err != nil {
		return nil, err
	}

	var logo image.Image
	if len(st.Logo) > 0 {
		logo, err = decodeLogo(st.Logo)
		if err != nil {
			return nil, err
		}
		b := logo.Bounds()
		l.reserveLogo(float64(b.Dx())/float64(b.Dy()), st.LogoRatio, st.LogoMargin)
	}

	fg, _ := style.ParseColor(st.Color)
	bg, _ := style.ParseColor(st.Background)

	if st.Format == style.FormatSVG {
		return renderSVG(l, st, fg, bg)
	}

	img := rasterize(l, st, fg, bg, logo)

	var buf bytes.Buffer
	switch st.Format {
	case style.FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", st.Format, err)
	}
	return buf.Bytes(), nil
}

// Modules encodes data and returns the module matrix without a quiet zone.
func Modules(data string, ec style.ErrorCorrection) ([][]bool, error) {
	q, err := qrcode.New(data, recoveryLevel(ec))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

func recoveryLevel(ec style.ErrorCorrection) qrcode.RecoveryLevel {
	switch ec {
	case style.ECLow:
		return qrcode.Low
	case style.ECMedium:
		return qrcode.Medium
	case style.ECHighest:
		return qrcode.Highest
	default:
		return qrcode.High
	}
}

func rasterize(l *layout, st style.Config, fg, bg color.RGBA, logo image.Image) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	fill(img, rect{0, 0, float64(l.width), float64(l.height)}, bg)

	for _, s := range l.dataShapes(st.Dots) {
		fill(img, s, fg)
	}
	rings, centers := l.finderShapes(st.MarkerBorder, st.MarkerCenter)
	for _, s := range rings {
		fill(img, s, fg)
	}
	for _, s := range centers {
		fill(img, s, fg)
	}

	if logo != nil && l.hasHidden {
		drawLogo(img, l.logoBox, logo)
	}
	return img
}
