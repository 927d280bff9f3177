package render

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stjordanis/jsdares/internal/augment"
)

type fakeEditor struct {
	sites  []augment.Site
	reruns int
}

func (e *fakeEditor) HighlightNode(site augment.Site) { e.sites = append(e.sites, site) }
func (e *fakeEditor) OutputRequestsRerun()            { e.reruns++ }

// drawScene issues the same calls a small program would: two rectangles and
// a circle, with style changes in between.
func drawScene(t *testing.T, r *EchoRenderer) {
	t.Helper()
	obj := r.Object()
	call := func(site, name string, args ...any) any {
		prop, ok := obj.Lookup(name)
		require.True(t, ok, name)
		res, err := prop.Invoke(augment.Site(site), args)
		require.NoError(t, err)
		return res
	}
	set := func(name string, value any) {
		prop, ok := obj.Lookup(name)
		require.True(t, ok, name)
		require.NoError(t, prop.Set("main.lua:0", value))
	}

	set("fillStyle", "#a00")
	call("main.lua:1", "fillRect", 10.0, 10.0, 20.0, 20.0)
	set("fillStyle", "blue")
	call("main.lua:2", "fillRect", 50.0, 10.0, 20.0, 20.0)
	call("main.lua:3", "beginPath")
	call("main.lua:4", "arc", 50.0, 70.0, 15.0, 0.0, 2*math.Pi)
	call("main.lua:5", "fill")
}

func TestEchoRenderer_PixelRoundTrip(t *testing.T) {
	r := NewEchoRenderer(100, 100, &fakeEditor{})
	drawScene(t, r)

	var draws []DrawCall
	for _, c := range r.Calls() {
		if c.ProducesInk {
			draws = append(draws, c)
		}
	}
	require.Len(t, draws, 3)

	assert.Equal(t, draws[0].Index, r.IndexAt(20, 20))
	assert.Equal(t, draws[1].Index, r.IndexAt(60, 20))
	assert.Equal(t, draws[2].Index, r.IndexAt(50, 70))
	assert.Equal(t, 0, r.IndexAt(90, 90))
	assert.Equal(t, 0, r.IndexAt(-5, 20))
	assert.Equal(t, 0, r.IndexAt(20, 1000))
}

func TestEchoRenderer_OnlyDrawingCallsAdvance(t *testing.T) {
	r := NewEchoRenderer(100, 100, &fakeEditor{})
	drawScene(t, r)

	calls := r.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, 1+Stride, calls[0].Index)
	assert.Equal(t, 1+2*Stride, calls[1].Index)
	assert.Equal(t, 0, calls[2].Index) // beginPath
	assert.Equal(t, 0, calls[3].Index) // arc
	assert.Equal(t, 1+3*Stride, calls[4].Index)
	assert.Equal(t, augment.Site("main.lua:5"), calls[4].Site)
}

func TestEchoRenderer_DeterministicAcrossRuns(t *testing.T) {
	r := NewEchoRenderer(100, 100, &fakeEditor{})
	drawScene(t, r)
	first := r.Calls()

	r.StartRun()
	assert.Empty(t, r.Calls())
	drawScene(t, r)
	assert.Equal(t, first, r.Calls())
}

func TestEchoRenderer_VisibleUsesProgramStyle(t *testing.T) {
	r := NewEchoRenderer(100, 100, &fakeEditor{})
	drawScene(t, r)

	assert.Equal(t, uint8(170), r.Visible().At(20, 20).R)
	assert.Equal(t, uint8(255), r.Visible().At(60, 20).B)
	assert.Equal(t, "blue", r.GetAttribute("fillStyle"))
}

func TestEchoRenderer_SingleTargetHighlight(t *testing.T) {
	ed := &fakeEditor{}
	r := NewEchoRenderer(100, 100, ed)
	drawScene(t, r)
	target := r.IndexAt(60, 20)

	r.SetTarget(target)
	r.StartRun()
	drawScene(t, r)

	assert.Equal(t, []augment.Site{"main.lua:2"}, ed.sites)
	highlighted := r.Visible().At(60, 20)
	assert.Greater(t, highlighted.G, uint8(100))
	// Other shapes keep their own color.
	assert.Equal(t, uint8(170), r.Visible().At(20, 20).R)
	// The shadow is unaffected by highlighting.
	assert.Equal(t, target, r.IndexAt(60, 20))
}

func TestEchoRenderer_HighlightAll(t *testing.T) {
	ed := &fakeEditor{}
	r := NewEchoRenderer(100, 100, ed)

	r.StartHighlighting()
	r.StartHighlighting()
	assert.Equal(t, 1, ed.reruns)
	assert.True(t, r.HighlightingAll())

	drawScene(t, r)
	assert.Empty(t, ed.sites)
	for _, p := range [][2]int{{20, 20}, {60, 20}, {50, 70}} {
		assert.Greater(t, r.Visible().At(p[0], p[1]).G, uint8(100), "pixel %v", p)
	}

	r.StopHighlighting()
	assert.Equal(t, 2, ed.reruns)
	assert.False(t, r.HighlightingAll())
}

func TestEchoRenderer_CallErrors(t *testing.T) {
	r := NewEchoRenderer(10, 10, &fakeEditor{})

	_, err := r.Call("main.lua:1", "fillRect", []any{1.0})
	require.Error(t, err)
	assert.True(t, IsCallError(err))
	assert.Contains(t, err.Error(), "fillRect takes exactly 4 arguments, not 1")

	_, err = r.Call("main.lua:1", "arc", []any{1.0, 2.0})
	assert.Contains(t, err.Error(), "arc takes 5 to 6 arguments, not 2")

	_, err = r.Call("main.lua:1", "lineTo", []any{1.0, "x"})
	assert.Contains(t, err.Error(), "Argument 2 of lineTo must be a number")

	_, err = r.Call("main.lua:1", "drawImage", nil)
	assert.True(t, IsCallError(err))

	assert.Empty(t, r.Calls())
}

func TestEchoRenderer_NonFiniteArgsIgnored(t *testing.T) {
	r := NewEchoRenderer(10, 10, &fakeEditor{})
	res, err := r.Call("main.lua:1", "fillRect", []any{math.NaN(), 0.0, 5.0, 5.0})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, r.Calls())
}

func TestEchoRenderer_IsPointInPathResult(t *testing.T) {
	r := NewEchoRenderer(100, 100, &fakeEditor{})
	_, err := r.Call("main.lua:1", "rect", []any{0.0, 0.0, 10.0, 10.0})
	require.NoError(t, err)

	in, err := r.Call("main.lua:2", "isPointInPath", []any{5.0, 5.0})
	require.NoError(t, err)
	assert.Equal(t, true, in)

	out, err := r.Call("main.lua:3", "isPointInPath", []any{50.0, 50.0})
	require.NoError(t, err)
	assert.Equal(t, false, out)
}

func TestEchoRenderer_ObjectDescriptors(t *testing.T) {
	r := NewEchoRenderer(10, 10, &fakeEditor{})
	obj := r.Object()

	for _, name := range OpNames() {
		prop, ok := obj.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, augment.KindMethod, prop.Kind, name)
	}
	for _, name := range []string{"fillStyle", "strokeStyle", "lineWidth"} {
		prop, ok := obj.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, augment.KindVariable, prop.Kind, name)
	}
}

func TestLookupOp(t *testing.T) {
	op, ok := LookupOp("arc")
	require.True(t, ok)
	assert.Equal(t, "arc", op.Name)
	assert.True(t, op.MaxArgs > op.MinArgs)

	_, ok = LookupOp("drawImage")
	assert.False(t, ok)

	names := OpNames()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "fillRect")
}

func TestHighlightCoordinator_Hover(t *testing.T) {
	ed := &fakeEditor{}
	r := NewEchoRenderer(100, 100, ed)
	c := NewHighlightCoordinator(r, ed)
	drawScene(t, r)

	// Disabled: hovering does nothing.
	assert.Equal(t, 0, c.Hover(20, 20))
	assert.Equal(t, 0, ed.reruns)

	c.Enable()
	assert.Equal(t, 1, ed.reruns)

	want := r.IndexAt(20, 20)
	assert.Equal(t, want, c.Hover(20, 20))
	assert.Equal(t, want, r.Target())
	assert.Equal(t, 2, ed.reruns)

	// Same call under the pointer: no re-run.
	c.Hover(21, 21)
	assert.Equal(t, 2, ed.reruns)

	// Off the surface resolves to no target.
	assert.Equal(t, 0, c.Hover(500, 500))
	assert.Equal(t, 3, ed.reruns)

	c.Hover(20, 20)
	c.Disable()
	assert.Equal(t, 0, r.Target())
	assert.Equal(t, 5, ed.reruns)
	assert.False(t, c.Enabled())
}
