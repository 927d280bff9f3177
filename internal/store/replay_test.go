package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/luahost"
	"github.com/stjordanis/jsdares/internal/testutil"
)

const recordedProgram = `
x = 0
function down(e)
  x = x + e.keyCode
  context.fillRect(x % 90, 10, 5, 5)
end
function move(e)
  context.fillRect(e.layerX, e.layerY, 2, 2)
end
function tick()
  context.fillRect(0, 0, 1, 1)
end
document.onkeydown = down
canvas.onmousemove = move
window.setInterval(tick, 25)
`

func manualScheduler() input.Scheduler { return testutil.NewManualScheduler() }

func TestRecorder_CapturesLiveSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, Session{Name: "live", Source: recordedProgram, Width: 100, Height: 100})
	require.NoError(t, err)

	sched := testutil.NewManualScheduler()
	h := host.New(luahost.Factory(luahost.Options{}), host.Config{
		Width: 100, Height: 100, Scheduler: sched, Recorder: s.Recorder(ctx, sess.ID),
	})
	defer h.Close()
	require.NoError(t, h.Load(recordedProgram))

	h.KeyDown(5)
	h.PointerMove(30, 40)
	sched.Advance(30 * time.Millisecond)
	h.KeyDown(7)
	require.NoError(t, h.Edit(recordedProgram, 3))

	_, entries, err := s.ReadSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Virtualizer().Log().Entries(), entries)
	require.Len(t, entries, 3)
	assert.Equal(t, input.EventInterval, entries[2].Event.Kind)

	res, err := s.ReplaySession(ctx, sess.ID, ReplayOptions{
		Factory:   luahost.Factory(luahost.Options{}),
		Scheduler: manualScheduler,
	})
	require.NoError(t, err)
	assert.True(t, res.Deterministic())
	assert.Equal(t, 3, res.Events)
	assert.Equal(t, host.TraceHash(h.Trace()), res.Hashes[0])
}

// brokenDown fails inside the key handler, so every keydown traces an error.
const brokenDown = `
x = 0
function down(e)
  local field = nil
  x = x + field.size
end
document.onkeydown = down
`

func TestRecorder_EditStoresNewSource(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, Session{Name: "edited", Source: recordedProgram, Width: 100, Height: 100})
	require.NoError(t, err)

	h := host.New(luahost.Factory(luahost.Options{}), host.Config{
		Width: 100, Height: 100, Scheduler: testutil.NewManualScheduler(), Recorder: s.Recorder(ctx, sess.ID),
	})
	defer h.Close()
	require.NoError(t, h.Load(recordedProgram))

	h.KeyDown(5)
	require.NoError(t, h.Edit(brokenDown, 1))
	h.KeyDown(7)

	trace := h.Trace()
	require.Len(t, trace, 2)
	assert.Contains(t, trace[0].Err, "field")

	stored, entries, err := s.ReadSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, brokenDown, stored.Source)
	assert.Len(t, entries, 2)

	res, err := s.ReplaySession(ctx, sess.ID, ReplayOptions{
		Factory:   luahost.Factory(luahost.Options{}),
		Scheduler: manualScheduler,
	})
	require.NoError(t, err)
	assert.True(t, res.Deterministic())
	assert.Equal(t, host.TraceHash(trace), res.Hashes[0])
}

func TestUpdateSessionSource_UnknownSession(t *testing.T) {
	s := createTestStore(t)
	err := s.UpdateSessionSource(context.Background(), "nope", "x = 1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReplaySession_UnknownSession(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReplaySession(context.Background(), "nope", ReplayOptions{
		Factory: luahost.Factory(luahost.Options{}),
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRestore_BadSource(t *testing.T) {
	_, err := Restore(Session{ID: "bad", Source: "function ("}, nil, ReplayOptions{
		Factory:   luahost.Factory(luahost.Options{}),
		Scheduler: manualScheduler,
	})
	require.Error(t, err)
	assert.True(t, luahost.IsCompileError(err))
}
