package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/vector"
)

// drawState is the part of a Surface saved and restored by Save/Restore.
type drawState struct {
	fill        color.NRGBA
	stroke      color.NRGBA
	fillStyle   string
	strokeStyle string
	lineWidth   float64
	clip        *image.Alpha // nil means unclipped; never mutated once set
}

func defaultState() drawState {
	return drawState{
		fill:        color.NRGBA{A: 0xff},
		stroke:      color.NRGBA{A: 0xff},
		fillStyle:   "#000000",
		strokeStyle: "#000000",
		lineWidth:   1,
	}
}

// Surface is an RGBA raster with canvas-2D drawing semantics: a current
// path, fill and stroke styles, line width, clipping and a state stack.
// There are no transforms.
type Surface struct {
	img   *image.RGBA
	state drawState
	stack []drawState
	path  Path
	rast  *vector.Rasterizer
}

// NewSurface creates a transparent surface of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		state: defaultState(),
		rast:  vector.NewRasterizer(1, 1),
	}
}

// Bounds returns the surface rectangle.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA { return s.img }

// At returns the pixel at (x, y), transparent outside the surface.
func (s *Surface) At(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(s.img.Bounds()) {
		return color.RGBA{}
	}
	return s.img.RGBAAt(x, y)
}

// Reset clears every pixel and discards the path, state stack and clip.
func (s *Surface) Reset() {
	clear(s.img.Pix)
	s.state = defaultState()
	s.stack = s.stack[:0]
	s.path.reset()
}

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

// Save pushes the drawing state.
func (s *Surface) Save() {
	s.stack = append(s.stack, s.state)
}

// Restore pops the drawing state. Restoring with an empty stack is a no-op.
func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.state = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// SetFillStyle sets the fill color. Unparseable values are ignored.
func (s *Surface) SetFillStyle(style string) {
	if c, ok := ParseStyle(style); ok {
		s.state.fill = c
		s.state.fillStyle = style
	}
}

// SetStrokeStyle sets the stroke color. Unparseable values are ignored.
func (s *Surface) SetStrokeStyle(style string) {
	if c, ok := ParseStyle(style); ok {
		s.state.stroke = c
		s.state.strokeStyle = style
	}
}

// SetLineWidth sets the stroke width. Non-positive values are ignored.
func (s *Surface) SetLineWidth(w float64) {
	if w > 0 {
		s.state.lineWidth = w
	}
}

// FillStyle returns the last accepted fill style string.
func (s *Surface) FillStyle() string { return s.state.fillStyle }

// StrokeStyle returns the last accepted stroke style string.
func (s *Surface) StrokeStyle() string { return s.state.strokeStyle }

// LineWidth returns the stroke width.
func (s *Surface) LineWidth() float64 { return s.state.lineWidth }

// setSolid sets both fill and stroke to c without touching the style
// strings the program can read back.
func (s *Surface) setSolid(c color.NRGBA) {
	s.state.fill = c
	s.state.stroke = c
}

// withColor runs fn with fill and stroke temporarily set to c.
func (s *Surface) withColor(c color.NRGBA, fn func()) {
	fill, stroke := s.state.fill, s.state.stroke
	s.setSolid(c)
	fn()
	s.state.fill, s.state.stroke = fill, stroke
}

// Path construction.

func (s *Surface) BeginPath()                            { s.path.reset() }
func (s *Surface) ClosePath()                            { s.path.closePath() }
func (s *Surface) MoveTo(x, y float64)                   { s.path.moveTo(x, y) }
func (s *Surface) LineTo(x, y float64)                   { s.path.lineTo(x, y) }
func (s *Surface) QuadraticCurveTo(cx, cy, x, y float64) { s.path.quadTo(cx, cy, x, y) }
func (s *Surface) Rect(x, y, w, h float64)               { s.path.rect(x, y, w, h) }

func (s *Surface) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	s.path.cubeTo(c1x, c1y, c2x, c2y, x, y)
}

func (s *Surface) ArcTo(x1, y1, x2, y2, r float64) {
	s.path.arcTo(x1, y1, x2, y2, r)
}

func (s *Surface) Arc(x, y, r, start, end float64, anticlockwise bool) {
	s.path.arc(x, y, r, start, end, anticlockwise)
}

// IsPointInPath tests (x, y) against the current path, nonzero rule.
func (s *Surface) IsPointInPath(x, y float64) bool {
	return s.path.contains(x, y)
}

// Fill fills the current path with the fill color.
func (s *Surface) Fill() {
	s.paint(&s.path, s.state.fill)
}

// Stroke strokes the current path with the stroke color and line width.
func (s *Surface) Stroke() {
	outline := strokeOutline(&s.path, s.state.lineWidth)
	s.paint(&outline, s.state.stroke)
}

// Clip intersects the clip region with the current path.
func (s *Surface) Clip() {
	b := s.img.Bounds()
	clip := image.NewAlpha(b)
	if m := s.mask(&s.path); m != nil {
		draw.Draw(clip, m.Rect, m, m.Rect.Min, draw.Src)
	}
	if prev := s.state.clip; prev != nil {
		for i := range clip.Pix {
			clip.Pix[i] = mulAlpha(clip.Pix[i], prev.Pix[i])
		}
	}
	s.state.clip = clip
}

// FillRect fills a rectangle without touching the current path.
func (s *Surface) FillRect(x, y, w, h float64) {
	var p Path
	p.rect(x, y, w, h)
	s.paint(&p, s.state.fill)
}

// StrokeRect strokes a rectangle without touching the current path.
func (s *Surface) StrokeRect(x, y, w, h float64) {
	var p Path
	p.rect(x, y, w, h)
	outline := strokeOutline(&p, s.state.lineWidth)
	s.paint(&outline, s.state.stroke)
}

// ClearRect makes a rectangle transparent, respecting the clip region.
// Partially covered pixels are attenuated by their coverage.
func (s *Surface) ClearRect(x, y, w, h float64) {
	var p Path
	p.rect(x, y, w, h)
	m := s.clippedMask(&p)
	if m == nil {
		return
	}
	for py := m.Rect.Min.Y; py < m.Rect.Max.Y; py++ {
		for px := m.Rect.Min.X; px < m.Rect.Max.X; px++ {
			keep := 0xff - m.Pix[m.PixOffset(px, py)]
			if keep == 0xff {
				continue
			}
			i := s.img.PixOffset(px, py)
			for c := 0; c < 4; c++ {
				s.img.Pix[i+c] = mulAlpha(s.img.Pix[i+c], keep)
			}
		}
	}
}

// paint composites c through the coverage mask of p and the clip.
func (s *Surface) paint(p *Path, c color.NRGBA) {
	m := s.clippedMask(p)
	if m == nil {
		return
	}
	draw.DrawMask(s.img, m.Rect, image.NewUniform(c), image.Point{}, m, m.Rect.Min, draw.Over)
}

func (s *Surface) clippedMask(p *Path) *image.Alpha {
	m := s.mask(p)
	if m == nil {
		return nil
	}
	if clip := s.state.clip; clip != nil {
		for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
			for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
				i := m.PixOffset(x, y)
				m.Pix[i] = mulAlpha(m.Pix[i], clip.AlphaAt(x, y).A)
			}
		}
	}
	return m
}

// mask rasterizes p with the nonzero rule into an alpha mask covering the
// intersection of its bounding box with the surface. It returns nil when
// that intersection is empty.
func (s *Surface) mask(p *Path) *image.Alpha {
	r := p.bounds(1).Intersect(s.img.Bounds())
	if r.Empty() {
		return nil
	}
	s.rast.Reset(r.Dx(), r.Dy())
	s.rast.DrawOp = draw.Src
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	for _, sp := range p.subs {
		if len(sp.pts) < 2 {
			continue
		}
		s.rast.MoveTo(float32(sp.pts[0].x-ox), float32(sp.pts[0].y-oy))
		for _, pt := range sp.pts[1:] {
			s.rast.LineTo(float32(pt.x-ox), float32(pt.y-oy))
		}
		s.rast.ClosePath()
	}
	m := image.NewAlpha(r)
	s.rast.Draw(m, r, image.Opaque, image.Point{})
	return m
}

func mulAlpha(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}
