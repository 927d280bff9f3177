package render

import (
	"image"
	"math"
)

type point struct {
	x, y float64
}

func (p point) sub(q point) point     { return point{p.x - q.x, p.y - q.y} }
func (p point) add(q point) point     { return point{p.x + q.x, p.y + q.y} }
func (p point) scale(k float64) point { return point{p.x * k, p.y * k} }
func (p point) len() float64          { return math.Hypot(p.x, p.y) }
func (p point) cross(q point) float64 { return p.x*q.y - p.y*q.x }
func (p point) equal(q point) bool    { return p.x == q.x && p.y == q.y }
func (p point) unit() point           { return p.scale(1 / p.len()) }

const curveSegments = 16

type subpath struct {
	pts    []point
	closed bool
}

// Path is the canvas current path: a list of flattened subpaths.
type Path struct {
	subs []subpath
}

func (p *Path) reset() {
	p.subs = p.subs[:0]
}

func (p *Path) current() (point, bool) {
	if len(p.subs) == 0 {
		return point{}, false
	}
	s := p.subs[len(p.subs)-1]
	return s.pts[len(s.pts)-1], true
}

func (p *Path) moveTo(x, y float64) {
	p.subs = append(p.subs, subpath{pts: []point{{x, y}}})
}

// lineTo behaves as moveTo when there is no current point.
func (p *Path) lineTo(x, y float64) {
	if len(p.subs) == 0 {
		p.moveTo(x, y)
		return
	}
	s := &p.subs[len(p.subs)-1]
	s.pts = append(s.pts, point{x, y})
}

// closePath marks the subpath closed and starts a new one at its first point.
func (p *Path) closePath() {
	if len(p.subs) == 0 {
		return
	}
	s := &p.subs[len(p.subs)-1]
	if s.closed {
		return
	}
	s.closed = true
	start := s.pts[0]
	p.moveTo(start.x, start.y)
}

func (p *Path) ensureStart(x, y float64) point {
	cur, ok := p.current()
	if !ok {
		p.moveTo(x, y)
		return point{x, y}
	}
	return cur
}

func (p *Path) quadTo(cx, cy, x, y float64) {
	p0 := p.ensureStart(cx, cy)
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		p.lineTo(
			u*u*p0.x+2*u*t*cx+t*t*x,
			u*u*p0.y+2*u*t*cy+t*t*y,
		)
	}
}

func (p *Path) cubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	p0 := p.ensureStart(c1x, c1y)
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		p.lineTo(
			u*u*u*p0.x+3*u*u*t*c1x+3*u*t*t*c2x+t*t*t*x,
			u*u*u*p0.y+3*u*u*t*c1y+3*u*t*t*c2y+t*t*t*y,
		)
	}
}

func (p *Path) rect(x, y, w, h float64) {
	p.moveTo(x, y)
	p.lineTo(x+w, y)
	p.lineTo(x+w, y+h)
	p.lineTo(x, y+h)
	p.closePath()
}

// arc follows canvas semantics: angles in radians, a line from the current
// point to the arc start, sweeps of 2*pi or more drawn as full circles.
func (p *Path) arc(cx, cy, r, start, end float64, anticlockwise bool) {
	if r < 0 {
		r = 0
	}
	const tau = 2 * math.Pi
	var sweep float64
	if !anticlockwise {
		if end-start >= tau {
			sweep = tau
		} else {
			sweep = math.Mod(end-start, tau)
			if sweep < 0 {
				sweep += tau
			}
		}
	} else {
		if start-end >= tau {
			sweep = -tau
		} else {
			sweep = math.Mod(start-end, tau)
			if sweep < 0 {
				sweep += tau
			}
			sweep = -sweep
		}
	}
	p.arcPoints(point{cx, cy}, r, start, sweep, true)
}

func (p *Path) arcPoints(c point, r, start, sweep float64, connect bool) {
	n := int(math.Ceil(math.Abs(sweep) * math.Max(r, 1) / 3))
	n = max(8, min(n, 256))
	first := point{c.x + r*math.Cos(start), c.y + r*math.Sin(start)}
	if _, ok := p.current(); ok && connect {
		p.lineTo(first.x, first.y)
	} else {
		p.moveTo(first.x, first.y)
	}
	for i := 1; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		p.lineTo(c.x+r*math.Cos(a), c.y+r*math.Sin(a))
	}
}

// arcTo adds a line to the tangent point and the short arc of radius r
// tangent to both lines (p0,p1) and (p1,p2).
func (p *Path) arcTo(x1, y1, x2, y2, r float64) {
	p0 := p.ensureStart(x1, y1)
	p1, p2 := point{x1, y1}, point{x2, y2}
	if r <= 0 || p0.equal(p1) || p1.equal(p2) {
		p.lineTo(x1, y1)
		return
	}
	v1 := p0.sub(p1).unit()
	v2 := p2.sub(p1).unit()
	if math.Abs(v1.cross(v2)) < 1e-9 {
		p.lineTo(x1, y1)
		return
	}
	theta := math.Acos(math.Max(-1, math.Min(1, v1.x*v2.x+v1.y*v2.y)))
	dist := r / math.Tan(theta/2)
	t1 := p1.add(v1.scale(dist))
	t2 := p1.add(v2.scale(dist))
	c := p1.add(v1.add(v2).unit().scale(r / math.Sin(theta/2)))

	a1 := math.Atan2(t1.y-c.y, t1.x-c.x)
	a2 := math.Atan2(t2.y-c.y, t2.x-c.x)
	sweep := a2 - a1
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep <= -math.Pi {
		sweep += 2 * math.Pi
	}
	p.lineTo(t1.x, t1.y)
	p.arcPoints(c, r, a1, sweep, true)
}

// contains reports whether (x, y) is inside the path under the nonzero
// winding rule, treating every subpath as closed.
func (p *Path) contains(x, y float64) bool {
	winding := 0
	for _, s := range p.subs {
		n := len(s.pts)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			a, b := s.pts[i], s.pts[(i+1)%n]
			if a.y <= y {
				if b.y > y && b.sub(a).cross(point{x, y}.sub(a)) > 0 {
					winding++
				}
			} else if b.y <= y && b.sub(a).cross(point{x, y}.sub(a)) < 0 {
				winding--
			}
		}
	}
	return winding != 0
}

// bounds returns the pixel rectangle covering every point, grown by pad.
func (p *Path) bounds(pad float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range p.subs {
		for _, pt := range s.pts {
			minX, maxX = math.Min(minX, pt.x), math.Max(maxX, pt.x)
			minY, maxY = math.Min(minY, pt.y), math.Max(maxY, pt.y)
		}
	}
	for _, v := range []float64{minX, minY, maxX, maxY} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return image.Rectangle{}
		}
	}
	return image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad))+1, int(math.Ceil(maxY+pad))+1,
	)
}

// strokeOutline converts each segment of p into a quad of width w, plus a
// polygonal join at interior vertices, all with the same orientation so
// nonzero filling yields their union.
func strokeOutline(p *Path, w float64) Path {
	var out Path
	h := w / 2
	for _, s := range p.subs {
		pts := s.pts
		if s.closed && len(pts) > 1 && !pts[0].equal(pts[len(pts)-1]) {
			pts = append(append([]point(nil), pts...), pts[0])
		}
		for i := 0; i+1 < len(pts); i++ {
			a, b := pts[i], pts[i+1]
			d := b.sub(a)
			if d.len() == 0 {
				continue
			}
			n := point{-d.y, d.x}.unit().scale(h)
			out.moveTo(a.x+n.x, a.y+n.y)
			out.lineTo(b.x+n.x, b.y+n.y)
			out.lineTo(b.x-n.x, b.y-n.y)
			out.lineTo(a.x-n.x, a.y-n.y)
			out.closePath()
			if w > 1.5 && (i > 0 || s.closed) {
				joinDisc(&out, a, h)
			}
		}
	}
	return out
}

// joinDisc adds a polygonal disc wound the same way as the segment quads.
func joinDisc(out *Path, c point, r float64) {
	const n = 12
	for i := 0; i < n; i++ {
		a := -2 * math.Pi * float64(i) / n
		x, y := c.x+r*math.Cos(a), c.y+r*math.Sin(a)
		if i == 0 {
			out.moveTo(x, y)
		} else {
			out.lineTo(x, y)
		}
	}
	out.closePath()
}
