// Package harness runs input-script scenarios against Lua programs.
//
// A scenario names a program and scripts host input: key presses, pointer
// events, virtual time, hovering, highlighting, edits and checkpoints. The
// resulting addEvent trace is checked by assertions and can be compared with
// a golden file.
//
// # Scenario Format
//
//	name: keyboard_echo
//	description: "Key presses reach the declared handlers"
//	program: programs/keyboard.lua
//	size: 100
//	steps:
//	  - key_down: 65
//	  - pointer: {type: move, x: 10, y: 20}
//	  - advance: 50ms
//	  - hover: {x: 15, y: 15}
//	  - edit: {program: programs/keyboard2.lua, keep: 1}
//	assertions:
//	  - type: trace_count
//	    handler: down
//	    count: 1
//	  - type: pick
//	    x: 15
//	    y: 15
//	    site: "main:5"
//
// Files are validated against an embedded CUE schema before they are
// decoded, so unknown keys and malformed steps are rejected with a path.
//
// # Determinism
//
// Timers run on testutil.ManualScheduler. Time moves only on advance steps,
// so the same scenario always produces the same trace and golden snapshot.
package harness
