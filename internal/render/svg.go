package render

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/rshade/qrbatch/internal/style"
)

func renderSVG(l *layout, st style.Config, fg, bg color.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(l.width, l.height)
	canvas.Rect(0, 0, l.width, l.height, "fill:"+hex(bg))

	fgFill := "fill:" + hex(fg)

	var data strings.Builder
	for _, s := range l.dataShapes(st.Dots) {
		data.WriteString(s.path())
	}
	if data.Len() > 0 {
		canvas.Path(data.String(), fgFill)
	}

	rings, centers := l.finderShapes(st.MarkerBorder, st.MarkerCenter)
	var markers strings.Builder
	for _, s := range rings {
		markers.WriteString(s.path())
	}
	canvas.Path(markers.String(), fgFill+";fill-rule:evenodd")

	markers.Reset()
	for _, s := range centers {
		markers.WriteString(s.path())
	}
	canvas.Path(markers.String(), fgFill)

	if len(st.Logo) > 0 && l.hasHidden {
		logo, err := decodeLogo(st.Logo)
		if err != nil {
			return nil, err
		}
		dr := fitBox(l.logoBox, logo.Bounds())
		canvas.Image(dr.Min.X, dr.Min.Y, dr.Dx(), dr.Dy(), logoDataURI(st.Logo))
	}

	canvas.End()
	return buf.Bytes(), nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
