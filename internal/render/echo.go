package render

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/stjordanis/jsdares/internal/augment"
)

// Editor is the source-mapping collaborator notified by highlighting.
type Editor interface {
	// HighlightNode flags the call site of the call matching the target.
	HighlightNode(site augment.Site)

	// OutputRequestsRerun asks for a fresh full run of the program.
	OutputRequestsRerun()
}

// DrawCall records one intercepted drawing call of the current run.
// Index is 0 for calls that do not draw.
type DrawCall struct {
	Index       int
	Op          string
	Args        []float64
	ProducesInk bool
	Site        augment.Site
}

// EchoRenderer executes every drawing call twice: on the visible surface
// with the program's styles, and on a shadow surface colored by the call's
// index. Sampling the shadow maps a pixel back to the call that drew it.
//
// Two highlight modes are mutually exclusive:
//   - highlight-all recolors every geometry call on the visible surface
//   - single-target recolors only the call whose index equals the target and
//     reports its site to the Editor
//
// The shadow is mirrored on every run so a pick is possible at any time.
type EchoRenderer struct {
	visible *Surface
	shadow  *Surface
	indexer *Indexer
	editor  Editor

	highlightAll bool
	target       int
	calls        []DrawCall
}

// NewEchoRenderer creates a renderer with width x height surfaces.
func NewEchoRenderer(width, height int, editor Editor) *EchoRenderer {
	r := &EchoRenderer{
		visible: NewSurface(width, height),
		shadow:  NewSurface(width, height),
		indexer: NewIndexer(),
		editor:  editor,
	}
	r.StartRun()
	return r
}

// Visible returns the surface the program sees.
func (r *EchoRenderer) Visible() *Surface { return r.visible }

// Shadow returns the index-colored surface.
func (r *EchoRenderer) Shadow() *Surface { return r.shadow }

// Calls returns the calls recorded since the last StartRun.
func (r *EchoRenderer) Calls() []DrawCall {
	out := make([]DrawCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// Target returns the single-target index, 0 when none.
func (r *EchoRenderer) Target() int { return r.target }

// SetTarget selects the call to highlight on the next run. It leaves
// highlight-all mode.
func (r *EchoRenderer) SetTarget(idx int) {
	r.target = idx
	if idx != 0 {
		r.highlightAll = false
	}
}

// HighlightingAll reports whether highlight-all mode is active.
func (r *EchoRenderer) HighlightingAll() bool { return r.highlightAll }

// StartHighlighting enters highlight-all mode and requests a re-run.
func (r *EchoRenderer) StartHighlighting() {
	if r.highlightAll {
		return
	}
	r.highlightAll = true
	r.target = 0
	r.editor.OutputRequestsRerun()
}

// StopHighlighting leaves highlight-all mode and requests a re-run.
func (r *EchoRenderer) StopHighlighting() {
	if !r.highlightAll {
		return
	}
	r.highlightAll = false
	r.editor.OutputRequestsRerun()
}

// StartRun clears both surfaces, resets their drawing state and rewinds the
// call index.
func (r *EchoRenderer) StartRun() {
	r.visible.Reset()
	r.shadow.Reset()
	r.indexer.Reset()
	r.calls = r.calls[:0]
}

// IndexAt decodes the shadow pixel at (x, y). Outside the surface or on an
// unpainted pixel it returns 0.
func (r *EchoRenderer) IndexAt(x, y int) int {
	return DecodeColor(r.shadow.At(x, y))
}

// Call performs the drawing method name with args on behalf of the call at
// site.
func (r *EchoRenderer) Call(site augment.Site, name string, args []any) (any, error) {
	op, ok := LookupOp(name)
	if !ok {
		return nil, unknownOpError(name)
	}
	a, err := op.numericArgs(args)
	if err != nil {
		return nil, err
	}
	if !finite(a) {
		if name == "isPointInPath" {
			return false, nil
		}
		return nil, nil
	}

	result := op.apply(r.visible, a)

	idx := 0
	if op.Draws {
		idx = r.indexer.Advance()
		r.shadow.setSolid(toNRGBA(EncodeIndex(idx)))
	}
	if op.Mirror {
		op.apply(r.shadow, a)
	}
	if op.Draws && r.matches(idx) {
		r.highlight(op, a)
		if r.target > 0 && idx == r.target {
			slog.Debug("highlight target matched", "index", idx, "op", name, "site", site)
			r.editor.HighlightNode(site)
		}
	}

	r.calls = append(r.calls, DrawCall{
		Index:       idx,
		Op:          name,
		Args:        a,
		ProducesInk: op.Draws,
		Site:        site,
	})
	return result, nil
}

func (r *EchoRenderer) matches(idx int) bool {
	return r.highlightAll || (r.target > 0 && idx == r.target)
}

// highlight re-executes a geometry call on the visible surface in the
// highlight color. A highlighted clearRect is shown as the area it cleared.
func (r *EchoRenderer) highlight(op Op, a []float64) {
	r.visible.withColor(HighlightColor, func() {
		if op.Name == "clearRect" {
			r.visible.FillRect(a[0], a[1], a[2], a[3])
			return
		}
		op.apply(r.visible, a)
	})
}

// GetAttribute reads a style attribute of the visible surface.
func (r *EchoRenderer) GetAttribute(name string) any {
	switch name {
	case "fillStyle":
		return r.visible.FillStyle()
	case "strokeStyle":
		return r.visible.StrokeStyle()
	case "lineWidth":
		return r.visible.LineWidth()
	}
	return nil
}

// SetAttribute assigns a style attribute. Values of the wrong type are
// ignored, as canvas ignores them.
func (r *EchoRenderer) SetAttribute(name string, value any) {
	switch name {
	case "fillStyle":
		if s, ok := value.(string); ok {
			r.visible.SetFillStyle(s)
		}
	case "strokeStyle":
		if s, ok := value.(string); ok {
			r.visible.SetStrokeStyle(s)
		}
	case "lineWidth":
		if w, ok := value.(float64); ok && finite([]float64{w}) {
			r.visible.SetLineWidth(w)
			if attributes[name].Mirror {
				r.shadow.SetLineWidth(w)
			}
		}
	}
}

// Object returns the augmented drawing-context object exposing every
// method and attribute.
func (r *EchoRenderer) Object() *augment.Object {
	obj := augment.NewObject("context", "[object context]")
	for _, name := range OpNames() {
		op, _ := LookupOp(name)
		obj.Add(augment.Method(name, "canvas."+name, op.Example,
			func(site augment.Site, args []any) (any, error) {
				return r.Call(site, name, args)
			},
		))
	}
	for name, attr := range attributes {
		name := name
		obj.Add(augment.Variable(name, "canvas."+name, attr.Example,
			func(augment.Site) any { return r.GetAttribute(name) },
			func(_ augment.Site, value any) error {
				r.SetAttribute(name, value)
				return nil
			},
		))
	}
	return obj
}

// OpNames returns every drawing method name, sorted.
func OpNames() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c DrawCall) String() string {
	return fmt.Sprintf("#%d %s%v @%s", c.Index, c.Op, c.Args, c.Site)
}
