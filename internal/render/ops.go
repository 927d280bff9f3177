package render

import (
	"math"

	"github.com/leonelquinteros/gotext"
)

// Op describes one drawing method the program may call.
type Op struct {
	Name    string
	MinArgs int
	MaxArgs int
	Example string

	// Draws marks geometry-producing calls: they advance the call index and
	// can be highlighted.
	Draws bool

	// Mirror marks calls replayed on the shadow surface.
	Mirror bool

	apply func(s *Surface, a []float64) any
}

// Attribute describes a style property the program may read and assign.
// Attributes are neither counted nor mirrored, except lineWidth which
// changes stroke geometry and is mirrored so strokes stay pickable.
type Attribute struct {
	Name    string
	Example string
	Mirror  bool
}

var ops = map[string]Op{}

var attributes = map[string]Attribute{
	"fillStyle":   {Name: "fillStyle", Example: `fillStyle = "#a00"`},
	"strokeStyle": {Name: "strokeStyle", Example: `strokeStyle = "#a00"`},
	"lineWidth":   {Name: "lineWidth", Example: "lineWidth = 3", Mirror: true},
}

func init() {
	for _, op := range []Op{
		{Name: "clearRect", MinArgs: 4, MaxArgs: 4, Example: "clearRect(100, 100, 100, 100)", Draws: true, Mirror: true,
			apply: func(s *Surface, a []float64) any { s.ClearRect(a[0], a[1], a[2], a[3]); return nil }},
		{Name: "fillRect", MinArgs: 4, MaxArgs: 4, Example: "fillRect(100, 100, 100, 100)", Draws: true, Mirror: true,
			apply: func(s *Surface, a []float64) any { s.FillRect(a[0], a[1], a[2], a[3]); return nil }},
		{Name: "strokeRect", MinArgs: 4, MaxArgs: 4, Example: "strokeRect(100, 100, 100, 100)", Draws: true, Mirror: true,
			apply: func(s *Surface, a []float64) any { s.StrokeRect(a[0], a[1], a[2], a[3]); return nil }},
		{Name: "beginPath", Example: "beginPath()", Mirror: true,
			apply: func(s *Surface, _ []float64) any { s.BeginPath(); return nil }},
		{Name: "closePath", Example: "closePath()", Mirror: true,
			apply: func(s *Surface, _ []float64) any { s.ClosePath(); return nil }},
		{Name: "fill", Example: "fill()", Draws: true, Mirror: true,
			apply: func(s *Surface, _ []float64) any { s.Fill(); return nil }},
		{Name: "stroke", Example: "stroke()", Draws: true, Mirror: true,
			apply: func(s *Surface, _ []float64) any { s.Stroke(); return nil }},
		{Name: "clip", Example: "clip()", Mirror: true,
			apply: func(s *Surface, _ []float64) any { s.Clip(); return nil }},
		{Name: "save", Example: "save()", Mirror: true,
			apply: func(s *Surface, _ []float64) any { s.Save(); return nil }},
		{Name: "restore", Example: "restore()", Mirror: true,
			apply: func(s *Surface, _ []float64) any { s.Restore(); return nil }},
		{Name: "moveTo", MinArgs: 2, MaxArgs: 2, Example: "moveTo(100, 100)", Mirror: true,
			apply: func(s *Surface, a []float64) any { s.MoveTo(a[0], a[1]); return nil }},
		{Name: "lineTo", MinArgs: 2, MaxArgs: 2, Example: "lineTo(100, 100)", Mirror: true,
			apply: func(s *Surface, a []float64) any { s.LineTo(a[0], a[1]); return nil }},
		{Name: "quadraticCurveTo", MinArgs: 4, MaxArgs: 4, Example: "quadraticCurveTo(30, 80, 100, 100)", Mirror: true,
			apply: func(s *Surface, a []float64) any { s.QuadraticCurveTo(a[0], a[1], a[2], a[3]); return nil }},
		{Name: "bezierCurveTo", MinArgs: 6, MaxArgs: 6, Example: "bezierCurveTo(30, 80, 60, 40, 100, 100)", Mirror: true,
			apply: func(s *Surface, a []float64) any { s.BezierCurveTo(a[0], a[1], a[2], a[3], a[4], a[5]); return nil }},
		{Name: "arcTo", MinArgs: 5, MaxArgs: 5, Example: "arcTo(20, 20, 100, 100, 60)", Mirror: true,
			apply: func(s *Surface, a []float64) any { s.ArcTo(a[0], a[1], a[2], a[3], a[4]); return nil }},
		{Name: "arc", MinArgs: 5, MaxArgs: 6, Example: "arc(100, 100, 30, 0, 2*math.pi)", Mirror: true,
			apply: func(s *Surface, a []float64) any {
				s.Arc(a[0], a[1], a[2], a[3], a[4], len(a) > 5 && a[5] != 0)
				return nil
			}},
		{Name: "rect", MinArgs: 4, MaxArgs: 4, Example: "rect(100, 100, 100, 100)", Mirror: true,
			apply: func(s *Surface, a []float64) any { s.Rect(a[0], a[1], a[2], a[3]); return nil }},
		{Name: "isPointInPath", MinArgs: 2, MaxArgs: 2, Example: "isPointInPath(150, 150)", Mirror: true,
			apply: func(s *Surface, a []float64) any { return s.IsPointInPath(a[0], a[1]) }},
	} {
		ops[op.Name] = op
	}
}

// LookupOp returns the named drawing method.
func LookupOp(name string) (Op, bool) {
	op, ok := ops[name]
	return op, ok
}

// numericArgs validates arity and converts the runtime's values. Booleans
// are accepted as 0/1 for arc's anticlockwise flag.
func (op Op) numericArgs(args []any) ([]float64, error) {
	if len(args) < op.MinArgs || len(args) > op.MaxArgs {
		return nil, arityError(op, len(args))
	}
	out := make([]float64, len(args))
	for i, v := range args {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		case int64:
			out[i] = float64(n)
		case bool:
			if n {
				out[i] = 1
			}
		default:
			return nil, &CallError{
				Op:      op.Name,
				Message: gotext.Get("Argument %d of %s must be a number", i+1, op.Name),
			}
		}
	}
	return out, nil
}

// finite reports whether every argument is a finite number. Calls with
// non-finite arguments are silently ignored, as canvas does.
func finite(a []float64) bool {
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
