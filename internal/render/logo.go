package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"net/http"

	// Logo decoders. png and jpeg are registered by render.go's encoders.
	_ "image/gif"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

func decodeLogo(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogo, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrLogo)
	}
	return img, nil
}

// fitBox returns the largest rectangle with the logo's aspect ratio centered
// inside box.
func fitBox(box rect, logo image.Rectangle) image.Rectangle {
	bw, bh := box.x1-box.x0, box.y1-box.y0
	scale := math.Min(bw/float64(logo.Dx()), bh/float64(logo.Dy()))
	w := float64(logo.Dx()) * scale
	h := float64(logo.Dy()) * scale
	x0 := box.x0 + (bw-w)/2
	y0 := box.y0 + (bh-h)/2
	return image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x0+w)), int(math.Round(y0+h)))
}

func drawLogo(dst *image.RGBA, box rect, logo image.Image) {
	dr := fitBox(box, logo.Bounds())
	xdraw.CatmullRom.Scale(dst, dr, logo, logo.Bounds(), xdraw.Over, nil)
}

// logoDataURI embeds the raw logo bytes for SVG output.
func logoDataURI(data []byte) string {
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
