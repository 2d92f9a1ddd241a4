package render

import (
	"github.com/rshade/qrbatch/internal/style"
)

// finderSize is the side of a finder pattern in modules.
const finderSize = 7

// layout places a module matrix on a canvas and decides, module by module,
// which shape to draw. It holds no renderer state and is built per call.
type layout struct {
	modules [][]bool
	n       int
	dot     float64
	offX    float64
	offY    float64
	width   int
	height  int

	// hidden is the module rectangle cleared for the logo, [x0,x1) x [y0,y1).
	hidden    [4]int
	hasHidden bool
	// logoBox is the pixel rectangle the logo is drawn into.
	logoBox rect
}

func newLayout(modules [][]bool, width, height int) (*layout, error) {
	n := len(modules)
	side := width
	if height < side {
		side = height
	}
	if n == 0 || side < n {
		return nil, ErrCanvasTooSmall
	}
	dot := side / n
	return &layout{
		modules: modules,
		n:       n,
		dot:     float64(dot),
		offX:    float64((width - n*dot) / 2),
		offY:    float64((height - n*dot) / 2),
		width:   width,
		height:  height,
	}, nil
}

// reserveLogo clears a centered area sized for a logo with the given aspect
// ratio (w/h). ratio is the fraction of the symbol side the logo may span.
func (l *layout) reserveLogo(aspect, ratio float64, margin int) {
	maxSide := ratio * float64(l.n)
	lw, lh := maxSide, maxSide
	if aspect >= 1 {
		lh = maxSide / aspect
	} else {
		lw = maxSide * aspect
	}

	mw := oddFloor(lw)
	mh := oddFloor(lh)
	if mw < 1 || mh < 1 {
		return
	}

	x0 := (l.n - mw) / 2
	y0 := (l.n - mh) / 2
	l.logoBox = rect{
		x0: l.offX + float64(x0)*l.dot,
		y0: l.offY + float64(y0)*l.dot,
		x1: l.offX + float64(x0+mw)*l.dot,
		y1: l.offY + float64(y0+mh)*l.dot,
	}
	l.hidden = [4]int{x0 - margin, y0 - margin, x0 + mw + margin, y0 + mh + margin}
	l.hasHidden = true
}

// oddFloor returns the largest odd integer <= f, so an odd-sized symbol can
// center it exactly.
func oddFloor(f float64) int {
	v := int(f)
	if v%2 == 0 {
		v--
	}
	return v
}

func (l *layout) dark(x, y int) bool {
	if x < 0 || y < 0 || x >= l.n || y >= l.n {
		return false
	}
	return l.modules[y][x]
}

func (l *layout) inFinder(x, y int) bool {
	inTop := y < finderSize
	inLeft := x < finderSize
	inRight := x >= l.n-finderSize
	inBottom := y >= l.n-finderSize
	return (inTop && inLeft) || (inTop && inRight) || (inBottom && inLeft)
}

func (l *layout) isHidden(x, y int) bool {
	return l.hasHidden && x >= l.hidden[0] && x < l.hidden[2] && y >= l.hidden[1] && y < l.hidden[3]
}

// dataShapes returns the shapes of every dark data module.
func (l *layout) dataShapes(dots style.DotShape) []shape {
	var out []shape
	for y := 0; y < l.n; y++ {
		for x := 0; x < l.n; x++ {
			if !l.dark(x, y) || l.inFinder(x, y) || l.isHidden(x, y) {
				continue
			}
			out = append(out, l.moduleShape(x, y, dots))
		}
	}
	return out
}

func (l *layout) moduleShape(x, y int, dots style.DotShape) shape {
	px := l.offX + float64(x)*l.dot
	py := l.offY + float64(y)*l.dot
	box := rect{px, py, px + l.dot, py + l.dot}

	switch dots {
	case style.DotDots:
		return circle{cx: px + l.dot/2, cy: py + l.dot/2, r: l.dot / 2}
	case style.DotRounded:
		// A corner is rounded when neither neighbor touching it is dark.
		up, down := l.neighbor(x, y-1), l.neighbor(x, y+1)
		left, right := l.neighbor(x-1, y), l.neighbor(x+1, y)
		corners := 0
		if !up && !left {
			corners |= cornerTL
		}
		if !up && !right {
			corners |= cornerTR
		}
		if !down && !right {
			corners |= cornerBR
		}
		if !down && !left {
			corners |= cornerBL
		}
		if corners == 0 {
			return box
		}
		return roundRect{rect: box, r: l.dot / 2, corners: corners}
	default:
		return box
	}
}

func (l *layout) neighbor(x, y int) bool {
	return l.dark(x, y) && !l.inFinder(x, y) && !l.isHidden(x, y)
}

// finderShapes returns the outer rings and the centers of the three finder
// patterns.
func (l *layout) finderShapes(border style.MarkerBorder, center style.MarkerCenter) (rings, centers []shape) {
	origins := [][2]int{{0, 0}, {l.n - finderSize, 0}, {0, l.n - finderSize}}
	d := l.dot

	for _, o := range origins {
		x0 := l.offX + float64(o[0])*d
		y0 := l.offY + float64(o[1])*d
		side := finderSize * d
		outer := rect{x0, y0, x0 + side, y0 + side}
		inner := rect{x0 + d, y0 + d, x0 + side - d, y0 + side - d}

		switch border {
		case style.BorderExtraRounded:
			rings = append(rings, ring{
				outer: roundRect{rect: outer, r: 2.5 * d, corners: allCorners},
				inner: roundRect{rect: inner, r: 1.5 * d, corners: allCorners},
			})
		case style.BorderDot:
			rings = append(rings, ring{
				outer: circle{cx: x0 + side/2, cy: y0 + side/2, r: side / 2},
				inner: circle{cx: x0 + side/2, cy: y0 + side/2, r: side/2 - d},
			})
		default:
			rings = append(rings, ring{outer: outer, inner: inner})
		}

		cx0, cy0 := x0+2*d, y0+2*d
		switch center {
		case style.CenterDot:
			centers = append(centers, circle{cx: cx0 + 1.5*d, cy: cy0 + 1.5*d, r: 1.5 * d})
		default:
			centers = append(centers, rect{cx0, cy0, cx0 + 3*d, cy0 + 3*d})
		}
	}
	return rings, centers
}
