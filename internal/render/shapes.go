package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
)

// shape is a filled region in pixel space. Every shape can both rasterize
// itself (contains) and describe itself as an SVG path.
type shape interface {
	bounds() image.Rectangle
	contains(x, y float64) bool
	path() string
}

type rect struct{ x0, y0, x1, y1 float64 }

func (r rect) bounds() image.Rectangle { return pixelBounds(r.x0, r.y0, r.x1, r.y1) }

func (r rect) contains(x, y float64) bool {
	return x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1
}

func (r rect) path() string {
	return fmt.Sprintf("M%s %sH%sV%sH%sZ", num(r.x0), num(r.y0), num(r.x1), num(r.y1), num(r.x0))
}

type circle struct{ cx, cy, r float64 }

func (c circle) bounds() image.Rectangle {
	return pixelBounds(c.cx-c.r, c.cy-c.r, c.cx+c.r, c.cy+c.r)
}

func (c circle) contains(x, y float64) bool {
	dx, dy := x-c.cx, y-c.cy
	return dx*dx+dy*dy <= c.r*c.r
}

func (c circle) path() string {
	return fmt.Sprintf("M%s %sa%s %s 0 1 0 %s 0a%s %s 0 1 0 %s 0Z",
		num(c.cx-c.r), num(c.cy), num(c.r), num(c.r), num(2*c.r), num(c.r), num(c.r), num(-2*c.r))
}

// Corner flags for roundRect, clockwise from top-left.
const (
	cornerTL = 1 << iota
	cornerTR
	cornerBR
	cornerBL

	allCorners = cornerTL | cornerTR | cornerBR | cornerBL
)

// roundRect is a rectangle whose flagged corners are rounded with radius r.
type roundRect struct {
	rect
	r       float64
	corners int
}

func (rr roundRect) radius(corner int) float64 {
	if rr.corners&corner != 0 {
		return rr.r
	}
	return 0
}

func (rr roundRect) contains(x, y float64) bool {
	if !rr.rect.contains(x, y) {
		return false
	}
	var corner int
	var cx, cy float64
	switch {
	case x < rr.x0+rr.r && y < rr.y0+rr.r:
		corner, cx, cy = cornerTL, rr.x0+rr.r, rr.y0+rr.r
	case x >= rr.x1-rr.r && y < rr.y0+rr.r:
		corner, cx, cy = cornerTR, rr.x1-rr.r, rr.y0+rr.r
	case x >= rr.x1-rr.r && y >= rr.y1-rr.r:
		corner, cx, cy = cornerBR, rr.x1-rr.r, rr.y1-rr.r
	case x < rr.x0+rr.r && y >= rr.y1-rr.r:
		corner, cx, cy = cornerBL, rr.x0+rr.r, rr.y1-rr.r
	default:
		return true
	}
	if rr.corners&corner == 0 {
		return true
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= rr.r*rr.r
}

func (rr roundRect) path() string {
	tl, tr, br, bl := rr.radius(cornerTL), rr.radius(cornerTR), rr.radius(cornerBR), rr.radius(cornerBL)

	var b strings.Builder
	fmt.Fprintf(&b, "M%s %sH%s", num(rr.x0+tl), num(rr.y0), num(rr.x1-tr))
	if tr > 0 {
		fmt.Fprintf(&b, "A%s %s 0 0 1 %s %s", num(tr), num(tr), num(rr.x1), num(rr.y0+tr))
	}
	fmt.Fprintf(&b, "V%s", num(rr.y1-br))
	if br > 0 {
		fmt.Fprintf(&b, "A%s %s 0 0 1 %s %s", num(br), num(br), num(rr.x1-br), num(rr.y1))
	}
	fmt.Fprintf(&b, "H%s", num(rr.x0+bl))
	if bl > 0 {
		fmt.Fprintf(&b, "A%s %s 0 0 1 %s %s", num(bl), num(bl), num(rr.x0), num(rr.y1-bl))
	}
	fmt.Fprintf(&b, "V%s", num(rr.y0+tl))
	if tl > 0 {
		fmt.Fprintf(&b, "A%s %s 0 0 1 %s %s", num(tl), num(tl), num(rr.x0+tl), num(rr.y0))
	}
	b.WriteString("Z")
	return b.String()
}

// ring is outer minus inner. Its path relies on fill-rule="evenodd".
type ring struct{ outer, inner shape }

func (r ring) bounds() image.Rectangle { return r.outer.bounds() }

func (r ring) contains(x, y float64) bool {
	return r.outer.contains(x, y) && !r.inner.contains(x, y)
}

func (r ring) path() string { return r.outer.path() + r.inner.path() }

// fill paints every pixel of img whose center lies inside s.
func fill(img *image.RGBA, s shape, c color.RGBA) {
	b := s.bounds().Intersect(img.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if s.contains(float64(x)+0.5, float64(y)+0.5) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func pixelBounds(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
}

// num formats a coordinate without trailing zeros.
func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
